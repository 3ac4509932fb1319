package bignum

import "github.com/zeebo/errs"

var (
	// Error is the class of every error returned by this package.
	Error = errs.Class("bignum")

	// OverflowError marks results whose normalized digit count exceeds the
	// capacity of the operands or of the Context.
	OverflowError = errs.Class("overflow")

	// InvalidOperandError marks operands that violate a precondition, such
	// as a subtrahend larger than the minuend or a non-digit byte.
	InvalidOperandError = errs.Class("invalid operand")
)

// IsOverflow reports whether err was caused by a capacity overflow.
func IsOverflow(err error) bool {
	return OverflowError.Has(err)
}

// IsInvalidOperand reports whether err was caused by an operand that violates
// a precondition.
func IsInvalidOperand(err error) bool {
	return InvalidOperandError.Has(err)
}

func overflow(digits, capacity int) error {
	return Error.Wrap(OverflowError.New("%d digits exceed capacity %d", digits, capacity))
}

func invalidOperand(format string, args ...interface{}) error {
	return Error.Wrap(InvalidOperandError.New(format, args...))
}
