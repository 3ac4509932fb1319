// Package fibonacci provides implementations for calculating Fibonacci numbers.
package fibonacci

import "github.com/agbru/fibdrv/internal/bignum"

// ─────────────────────────────────────────────────────────────────────────────
// Engine Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultDigitCapacity is the digit capacity applied to every value an
	// engine produces, intermediates included, when Options leaves it unset.
	//
	// With this capacity every index up to 1220 is computable. F(1222) is
	// the first Fibonacci number with more than 255 digits, and fast
	// doubling also materializes F(n+1).
	DefaultDigitCapacity = bignum.DefaultCapacity
)

// ─────────────────────────────────────────────────────────────────────────────
// Registry Names
// ─────────────────────────────────────────────────────────────────────────────

const (
	// AlgorithmDoubling is the registry name of the fast-doubling engine,
	// the one a device session reads through.
	AlgorithmDoubling = "doubling"

	// AlgorithmIterative is the registry name of the linear-recurrence
	// engine. It is the reference for cross-checks and the second
	// measurement mode.
	AlgorithmIterative = "iterative"
)
