package fibonacci

import (
	"context"
	"math/bits"

	"github.com/agbru/fibdrv/internal/bignum"
)

// DoublingCalculator is the fast-doubling engine. It scans the bits of n from
// the most significant set bit down and needs O(log n) decimal
// multiplications.
type DoublingCalculator struct{}

// Name returns the name of the algorithm.
func (c *DoublingCalculator) Name() string {
	return "Fast Doubling"
}

// CalculateCore runs FastDoubling under the capacity configured in opts.
// The context is not consulted: once started, a calculation runs to
// completion.
func (c *DoublingCalculator) CalculateCore(_ context.Context, n uint64, opts Options) (bignum.Decimal, error) {
	return FastDoubling(opts.arithmetic(), n)
}

// FastDoubling returns F(n) computed with the doubling identities
//
//	F(2k)   = 2·F(k)·F(k+1) - F(k)²
//	F(2k+1) = F(k)² + F(k+1)²
//
// Starting from the pair (F(0), F(1)), each bit of n doubles the index and a
// set bit advances it by one more.
//
// Parameters:
//   - c: The decimal context, which fixes the digit capacity.
//   - n: The index of the Fibonacci number to calculate.
//
// Returns:
//   - bignum.Decimal: F(n).
//   - error: An overflow error if F(n) or F(n+1) does not fit the capacity.
func FastDoubling(c bignum.Context, n uint64) (bignum.Decimal, error) {
	if n < 2 {
		return c.New(int64(n))
	}

	a := arith{c: c}
	fk, fk1 := a.parse("0"), a.parse("1")

	for mask := uint64(1) << (63 - bits.LeadingZeros64(n)); mask != 0; mask >>= 1 {
		t0 := a.mul(fk, fk)
		t1 := a.mul(fk1, fk1)
		t2 := a.mul(fk, fk1)
		t2 = a.add(t2, t2)

		if n&mask != 0 {
			fk, fk1 = a.add(t0, t1), a.add(t2, t1)
		} else {
			fk, fk1 = a.sub(t2, t0), a.add(t0, t1)
		}
		if a.err != nil {
			return bignum.Decimal{}, a.err
		}
	}
	return fk, nil
}

// Compute returns F(n) as a decimal digit string under the default capacity.
// The string never carries a sign and has no leading zero unless it is "0".
func Compute(n uint64) (string, error) {
	f, err := FastDoubling(Options{}.arithmetic(), n)
	if err != nil {
		return "", err
	}
	return f.Magnitude().String(), nil
}

// arith chains decimal operations and keeps the first error. Once an error
// is recorded every further operation is a no-op.
type arith struct {
	c   bignum.Context
	err error
}

func (a *arith) do(op func(x, y bignum.Decimal) (bignum.Decimal, error), x, y bignum.Decimal) bignum.Decimal {
	if a.err != nil {
		return bignum.Decimal{}
	}
	r, err := op(x, y)
	a.err = err
	return r
}

func (a *arith) add(x, y bignum.Decimal) bignum.Decimal { return a.do(a.c.Add, x, y) }
func (a *arith) sub(x, y bignum.Decimal) bignum.Decimal { return a.do(a.c.Sub, x, y) }
func (a *arith) mul(x, y bignum.Decimal) bignum.Decimal { return a.do(a.c.Mul, x, y) }

func (a *arith) parse(s string) bignum.Decimal {
	if a.err != nil {
		return bignum.Decimal{}
	}
	d, err := a.c.Parse(s)
	a.err = err
	return d
}
