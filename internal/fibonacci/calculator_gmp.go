//go:build gmp

// This file provides a GMP-backed reference calculator, compiled only with
// the "gmp" build tag (go build -tags=gmp) and libgmp installed. Its result
// is converted into a capacity-checked decimal so that it can be compared
// digit for digit with the decimal engines.

package fibonacci

import (
	"context"
	"math/bits"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/ncw/gmp"
)

// AlgorithmGMP is the registry name of the GMP reference calculator.
const AlgorithmGMP = "gmp"

func init() {
	_ = RegisterCalculator(AlgorithmGMP, func() coreCalculator { return &GMPCalculator{} })
}

// GMPCalculator runs the fast-doubling recurrence on GMP integers.
type GMPCalculator struct{}

// Name returns the name of the algorithm.
func (c *GMPCalculator) Name() string {
	return "GMP (Fast Doubling)"
}

// CalculateCore computes F(n) with GMP and parses the decimal text back
// under the configured capacity.
func (c *GMPCalculator) CalculateCore(_ context.Context, n uint64, opts Options) (bignum.Decimal, error) {
	arith := opts.arithmetic()
	if n < 2 {
		return arith.New(int64(n))
	}

	a, b := gmp.NewInt(0), gmp.NewInt(1)
	t0, t1, t2 := gmp.NewInt(0), gmp.NewInt(0), gmp.NewInt(0)

	for mask := uint64(1) << (63 - bits.LeadingZeros64(n)); mask != 0; mask >>= 1 {
		t0.Mul(a, a)
		t1.Mul(b, b)
		t2.Mul(a, b)
		t2.Add(t2, t2)
		if n&mask != 0 {
			a.Add(t0, t1)
			b.Add(t2, t1)
		} else {
			a.Sub(t2, t0)
			b.Add(t0, t1)
		}
	}
	return arith.Parse(a.String())
}
