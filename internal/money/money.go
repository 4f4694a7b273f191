package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNegative      = errors.New("amount must not be negative")
	ErrTooPrecise    = errors.New("amount has more than two decimal places")
)

// Parse parses a monetary amount string into a decimal. It accepts both
// dot and comma decimal separators. Amounts are non-negative with at most
// two decimal places.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Validate checks that an amount is usable as a ledger value.
func Validate(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegative
	}
	if d.Exponent() < -2 {
		return ErrTooPrecise
	}
	return nil
}

// String formats an amount with exactly two decimal places for storage
// and API responses.
func String(d decimal.Decimal) string {
	return d.StringFixed(2)
}
