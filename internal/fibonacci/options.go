// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains configuration options for Fibonacci calculations.
package fibonacci

import "github.com/agbru/fibdrv/internal/bignum"

// Options configures the Fibonacci calculation.
type Options struct {
	// DigitCapacity bounds the number of digits of every value the engine
	// produces. If 0, DefaultDigitCapacity is used. A calculation whose
	// result or intermediates need more digits fails with a bignum
	// overflow error.
	DigitCapacity int
}

// normalizeOptions returns a copy of opts with default values filled in for zero values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.DigitCapacity <= 0 {
		normalized.DigitCapacity = DefaultDigitCapacity
	}
	return normalized
}

// arithmetic returns the decimal context described by opts.
func (o Options) arithmetic() bignum.Context {
	return bignum.Context{Capacity: normalizeOptions(o).DigitCapacity}
}
