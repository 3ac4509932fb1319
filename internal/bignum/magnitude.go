package bignum

import "bytes"

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to
// or greater than b. Both operands must be normalized: the longer sequence is
// the larger one, and equal lengths compare digit by digit.
func Compare(a, b Digits) int {
	x, y := a.raw(), b.raw()
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}
	return bytes.Compare(x, y)
}

// AddMagnitude returns a + b. The operands may be passed in any order; the
// longer one is routed to the low-level adder first. The result inherits the
// smaller capacity of the two operands.
func AddMagnitude(a, b Digits) (Digits, error) {
	return addMagnitude(a.raw(), b.raw(), minCapacity(a, b))
}

// SubMagnitude returns a - b. It fails with an InvalidOperandError when b is
// larger than a.
func SubMagnitude(a, b Digits) (Digits, error) {
	if Compare(a, b) < 0 {
		return Digits{}, invalidOperand("subtrahend %d digits larger than minuend", b.Len())
	}
	return fromBytes(subDigits(a.raw(), b.raw()), minCapacity(a, b))
}

// MulMagnitude returns a * b.
func MulMagnitude(a, b Digits) (Digits, error) {
	return fromBytes(mulDigits(a.raw(), b.raw()), minCapacity(a, b))
}

func addMagnitude(a, b []byte, capacity int) (Digits, error) {
	if len(a) < len(b) {
		a, b = b, a
	}
	return fromBytes(addDigits(a, b), capacity)
}

func minCapacity(a, b Digits) int {
	return min(a.Cap(), b.Cap())
}

// addDigits is schoolbook addition. It requires len(a) >= len(b).
func addDigits(a, b []byte) []byte {
	out := make([]byte, len(a)+1)
	var carry byte
	j := len(b) - 1
	for i := len(a) - 1; i >= 0; i-- {
		s := a[i] - '0' + carry
		if j >= 0 {
			s += b[j] - '0'
			j--
		}
		out[i+1] = s%10 + '0'
		carry = s / 10
	}
	if carry == 0 {
		return out[1:]
	}
	out[0] = '1'
	return out
}

// subDigits is schoolbook subtraction with borrow. It requires a >= b and
// strips leading zeros from the result.
func subDigits(a, b []byte) []byte {
	out := make([]byte, len(a))
	borrow := 0
	j := len(b) - 1
	for i := len(a) - 1; i >= 0; i-- {
		d := int(a[i]-'0') - borrow
		if j >= 0 {
			d -= int(b[j] - '0')
			j--
		}
		borrow = 0
		if d < 0 {
			d += 10
			borrow = 1
		}
		out[i] = byte(d) + '0'
	}
	return stripZeros(out)
}

// mulDigits is long multiplication over an accumulator of len(a)+len(b)
// positions. A zero operand short-circuits to "0".
func mulDigits(a, b []byte) []byte {
	if isZero(a) || isZero(b) {
		return []byte{'0'}
	}
	acc := make([]int, len(a)+len(b))
	for i := len(a) - 1; i >= 0; i-- {
		carry := 0
		x := int(a[i] - '0')
		for j := len(b) - 1; j >= 0; j-- {
			p := acc[i+j+1] + x*int(b[j]-'0') + carry
			acc[i+j+1] = p % 10
			carry = p / 10
		}
		acc[i] += carry
	}
	out := make([]byte, len(acc))
	for i, v := range acc {
		out[i] = byte(v) + '0'
	}
	return stripZeros(out)
}
