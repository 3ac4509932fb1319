// Package bignum implements fixed-capacity, sign-magnitude decimal integers.
//
// Values are stored as ASCII digit sequences, most significant digit first.
// Every value carries a capacity: the maximum number of digits it may hold
// once normalized. Operations never write through their operands; each one
// returns a fresh value, so a destination can never alias an operand.
//
// Capacity overflow and precondition violations are reported as errors of
// the OverflowError and InvalidOperandError classes. Results are never
// silently truncated.
package bignum

import "bytes"

// DefaultCapacity is the digit capacity used when none is configured. It
// matches a 256-byte text buffer once the terminator is accounted for.
const DefaultCapacity = 255

// Digits is a capacity-bounded sequence of ASCII decimal digits, most
// significant first.
//
// A Digits obtained from ParseDigits or from an arithmetic operation is
// normalized: it has no leading zero unless it is exactly "0". A Digits built
// with NewDigits and Append is normalized by calling StripLeadingZeros.
type Digits struct {
	buf      []byte
	capacity int
}

// NewDigits returns an empty digit sequence able to hold capacity digits.
// A non-positive capacity selects DefaultCapacity.
func NewDigits(capacity int) Digits {
	capacity = normalizeCapacity(capacity)
	return Digits{buf: make([]byte, 0, min(capacity, 64)), capacity: capacity}
}

// ParseDigits builds a normalized digit sequence from s, which must consist
// of ASCII decimal digits only. Leading zeros do not count against capacity.
func ParseDigits(s string, capacity int) (Digits, error) {
	if s == "" {
		return Digits{}, invalidOperand("empty digit string")
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return Digits{}, invalidOperand("non-digit %q at position %d", s[i], i)
		}
	}
	return fromBytes([]byte(s), normalizeCapacity(capacity))
}

// Append adds one ASCII digit at the least significant end.
func (d *Digits) Append(c byte) error {
	d.capacity = normalizeCapacity(d.capacity)
	if !isDigit(c) {
		return invalidOperand("non-digit %q", c)
	}
	if len(d.buf) >= d.capacity {
		return overflow(len(d.buf)+1, d.capacity)
	}
	d.buf = append(d.buf, c)
	return nil
}

// StripLeadingZeros removes leading zero digits. An empty or all-zero
// sequence collapses to "0".
func (d *Digits) StripLeadingZeros() {
	d.buf = stripZeros(d.buf)
}

// Len returns the number of digits.
func (d Digits) Len() int {
	if len(d.buf) == 0 {
		return 1
	}
	return len(d.buf)
}

// Cap returns the maximum number of digits d may hold.
func (d Digits) Cap() int {
	return normalizeCapacity(d.capacity)
}

// IsZero reports whether d is exactly zero.
func (d Digits) IsZero() bool {
	return isZero(d.buf)
}

// String returns the digits as text.
func (d Digits) String() string {
	if len(d.buf) == 0 {
		return "0"
	}
	return string(d.buf)
}

// Bytes returns a copy of the digits.
func (d Digits) Bytes() []byte {
	if len(d.buf) == 0 {
		return []byte{'0'}
	}
	return bytes.Clone(d.buf)
}

func (d Digits) raw() []byte {
	if len(d.buf) == 0 {
		return zeroDigits
	}
	return d.buf
}

var zeroDigits = []byte{'0'}

func normalizeCapacity(capacity int) int {
	if capacity <= 0 {
		return DefaultCapacity
	}
	return capacity
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isZero(b []byte) bool {
	for _, c := range b {
		if c != '0' {
			return false
		}
	}
	return true
}

func stripZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == '0' {
		i++
	}
	if i == len(b) {
		return []byte{'0'}
	}
	return b[i:]
}

// fromBytes normalizes buf and checks it against capacity. buf is owned by
// the returned value.
func fromBytes(buf []byte, capacity int) (Digits, error) {
	buf = stripZeros(buf)
	if len(buf) > capacity {
		return Digits{}, overflow(len(buf), capacity)
	}
	return Digits{buf: buf, capacity: capacity}, nil
}
