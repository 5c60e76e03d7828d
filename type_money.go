package kinesiscount

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents an exact quantity of a currency or commodity.
//
// Currency codes are not restricted to ISO 4217: commodities like KAU or KAG
// are valid units of a Money.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M is a convenient factory for Money.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney reads a decimal string, grouping commas included, as Money. An
// empty string is zero.
func ParseMoney(s, currency string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return Money{value: decimal.Zero, cur: currency}, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: v, cur: currency}, nil
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// currency returns the money's currency metadata. Unknown codes (commodities)
// get go-money's default metadata.
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the money formatted for humans, with the currency's usual
// fraction digits for known currencies, and the exact number otherwise.
func (m Money) String() string {
	if money.GetCurrency(m.cur) == nil {
		return m.value.String() + " " + m.cur
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// Number returns the exact decimal quantity.
func (m Money) Number() decimal.Decimal { return m.value }

// Text returns the exact number with the digits it was written with, e.g.
// "8500.00".
func (m Money) Text() string { return m.value.StringFixed(m.Scale()) }

// Scale returns the number of digits after the decimal point as written.
func (m Money) Scale() int32 {
	if e := m.value.Exponent(); e < 0 {
		return -e
	}
	return 0
}

func (m Money) Currency() string            { return m.cur }
func (m Money) Equal(n Money) bool          { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                { return m.value.IsZero() }
func (m Money) Neg() Money                  { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                  { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Round(places int32) Money    { return Money{value: m.value.Round(places), cur: m.cur} }
func (m Money) Mul(n decimal.Decimal) Money { return Money{value: m.value.Mul(n), cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Per returns the price of one unit of n expressed in m's currency, that is
// m/n. The division is exact up to decimal.DivisionPrecision digits.
func (m Money) Per(n Money) Money {
	return Money{value: m.value.Div(n.value), cur: m.cur}
}

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// MarshalJSON writes the exact amount and the currency.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("amount", json.Number(m.Text()))
	w.Optional("currency", m.cur)
	return w.MarshalJSON()
}
