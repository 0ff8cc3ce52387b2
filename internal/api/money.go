package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	errAmountNotPositive = errors.New("amount must be a positive number")
	errAmountPrecision   = errors.New("amount supports up to 2 decimals")
	errAmountTooLarge    = errors.New("amount too large")
)

// maxAmountMinor caps every bet and deposit amount: 1,000,000.00.
const maxAmountMinor = 100_000_000

var maxMinor = decimal.NewFromInt(maxAmountMinor)

// parseMinor converts a JSON number in major units into minor units (cents).
// Amounts above maxAmountMinor are rejected.
func parseMinor(n json.Number) (int64, error) {
	if n == "" {
		return 0, errAmountNotPositive
	}

	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errAmountNotPositive, n)
	}
	if !d.IsPositive() {
		return 0, errAmountNotPositive
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, errAmountPrecision
	}
	if cents.GreaterThan(maxMinor) {
		return 0, errAmountTooLarge
	}

	return cents.IntPart(), nil
}

// money renders minor units as a JSON number with two decimals.
func money(minor int64) json.Number {
	return json.Number(decimal.New(minor, -2).StringFixed(2))
}
