package fixedpoint

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// All ledger amounts are int64 minor units at 10^-6 scale. Binary floating
// point never touches an amount: repeated aggregation would drift.
const (
	// Decimals is the settlement asset's on-chain decimal count.
	Decimals = 6
	// UnitsPerWhole is one nominal unit expressed in minor units.
	UnitsPerWhole = 1_000_000
	// PPMDenominator is the fee-rate denominator (parts per million).
	PPMDenominator = 1_000_000
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.New("amount has more than 6 decimal places")
	ErrOutOfRange     = errors.New("amount does not fit in 64 bits of minor units")
)

// ToMinor parses a UI decimal string ("1234.5") into minor units (1234500000).
func ToMinor(ui string) (int64, error) {
	d, err := decimal.NewFromString(ui)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", ui, err)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if d.Exponent() < -Decimals {
		return 0, ErrTooPrecise
	}
	shifted := d.Shift(Decimals)
	if !shifted.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return shifted.IntPart(), nil
}

// FromMinor formats minor units back into a UI decimal string.
// Trailing zeros are trimmed, so ToMinor(FromMinor(v)) == v.
func FromMinor(minor int64) string {
	return decimal.New(minor, -Decimals).String()
}

// Fee returns floor(amount * ratePPM / 1e6), clamped to [0, amount].
// The floor means dust amounts can carry a zero fee; a fee never exceeds
// the gross it is taken from.
func Fee(amount int64, ratePPM int64) int64 {
	if amount <= 0 || ratePPM <= 0 {
		return 0
	}
	fee := decimal.NewFromInt(amount).
		Mul(decimal.New(ratePPM, 0)).
		Div(decimal.New(PPMDenominator, 0)).
		Floor().
		IntPart()
	if fee > amount {
		return amount
	}
	return fee
}
