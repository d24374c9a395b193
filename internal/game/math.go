package game

import "math"

// Checked arithmetic helpers. Every counter and amount mutation in this
// package goes through one of these; silent wraparound is never acceptable
// when the numbers are money or lives.

func addU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmetic
	}
	return a + b, nil
}

func subU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrArithmetic
	}
	return a - b, nil
}

func mulU64(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, ErrArithmetic
	}
	return a * b, nil
}

func addU16(a, b uint16) (uint16, error) {
	if a > math.MaxUint16-b {
		return 0, ErrArithmetic
	}
	return a + b, nil
}

// CheckedAddU64 and CheckedMulU64 expose the overflow-checked forms for
// payout computation, which scales kill counts by the bet amount.
func CheckedAddU64(a, b uint64) (uint64, error) { return addU64(a, b) }

func CheckedMulU64(a, b uint64) (uint64, error) { return mulU64(a, b) }

func addI64(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrArithmetic
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrArithmetic
	}
	return a + b, nil
}
