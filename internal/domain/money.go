package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. On the wire it is a decimal number of whole
// currency units, e.g. 1099 encodes as 10.99.
type Money int64

// Cents is a convenience constructor.
func Cents(c int64) Money { return Money(c) }

// ParseMoney parses a decimal amount in whole units ("10.99", "25") into cents.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("money %s has sub-cent precision", d.String())
	}
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("money %s out of range", d.String())
	}
	return Money(cents.IntPart()), nil
}

// Decimal returns the amount in whole units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as an unquoted JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	v, err := fromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
