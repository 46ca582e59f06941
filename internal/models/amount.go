package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a signed monetary value. Debits (charges, withdrawals) are
// negative; credits (payments, deposits, refunds) are positive. It always
// marshals to a JSON number with exactly two fraction digits.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount rounded to two decimal places.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d.Round(2)}
}

// ParseAmount converts a string like "1,234.56" or "$45.67" to an Amount.
// Currency symbols, thousands separators and surrounding whitespace are
// stripped. The sign is taken verbatim; callers apply debit/credit rules.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("bad amount %q: %w", s, err)
	}
	return NewAmount(d), nil
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{a.Decimal.Neg()}
}

// MarshalJSON emits an unquoted number with two fraction digits,
// e.g. -45.67 or 120.00.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// UnmarshalJSON accepts both bare numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	a.Decimal = d.Round(2)
	return nil
}
