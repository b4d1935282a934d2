package utils

import (
	"errors"

	sdkmath "cosmossdk.io/math"
)

var ErrOverflow = errors.New("arithmetic overflow")

// CheckedAdd returns a + b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SaturatingSub returns a - b, or 0 when b > a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// MulDiv returns floor(a * b / c). The product is computed at 256 bits, so
// only a quotient that does not fit in uint64 overflows. c must not be zero.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, errors.New("division by zero")
	}

	q := sdkmath.NewUint(a).Mul(sdkmath.NewUint(b)).QuoUint64(c)
	if !q.BigInt().IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}

// Percent returns floor(amount * pct / 100).
func Percent(amount uint64, pct uint64) (uint64, error) {
	return MulDiv(amount, pct, 100)
}
