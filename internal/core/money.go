// Package core provides the domain model and the pure derivation engine.
//
// This file contains monetary parsing and JSON encoding. Amounts are stored
// as integer cents; the wire format is a plain JSON number with two-decimal
// semantics, decoded through shopspring/decimal so values never pass through
// a float64.
package core

import (
	"bytes"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a decimal string to non-negative cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Zero is a valid
// amount; negative values and non-numeric input return ErrInvalidAmount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseTargetToCents is ParseDecimalToCents with the goal-target rule:
// a target must be strictly positive.
func ParseTargetToCents(s string) (int64, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return 0, ErrInvalidTarget
	}
	if cents <= 0 {
		return 0, ErrInvalidTarget
	}
	return cents, nil
}

// Units returns the amount in currency units for display-only math.
// Cents stay the source of truth for anything summed or compared.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// MarshalJSON encodes the amount as a JSON number ("12.34", "0", "-3.5").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(m.Cents, -2).String()), nil
}

// UnmarshalJSON accepts a JSON number (or its string form) and converts it
// to cents, rounding half-up past two decimals.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
