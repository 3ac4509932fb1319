package fibonacci

import (
	"context"

	"github.com/agbru/fibdrv/internal/bignum"
)

// IterativeCalculator computes F(n) with the linear recurrence
// F(i) = F(i-1) + F(i-2). It needs n decimal additions and serves as the
// reference the doubling engine is checked against.
type IterativeCalculator struct{}

// Name returns the name of the algorithm.
func (c *IterativeCalculator) Name() string {
	return "Iterative"
}

// CalculateCore runs Iterative under the capacity configured in opts.
func (c *IterativeCalculator) CalculateCore(_ context.Context, n uint64, opts Options) (bignum.Decimal, error) {
	return Iterative(opts.arithmetic(), n)
}

// Iterative returns F(n) by repeated addition.
func Iterative(c bignum.Context, n uint64) (bignum.Decimal, error) {
	if n < 2 {
		return c.New(int64(n))
	}

	a := arith{c: c}
	prev, cur := a.parse("0"), a.parse("1")
	for i := uint64(2); i <= n && a.err == nil; i++ {
		prev, cur = cur, a.add(prev, cur)
	}
	if a.err != nil {
		return bignum.Decimal{}, a.err
	}
	return cur, nil
}
