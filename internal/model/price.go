package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a decimal amount encoded as a bare JSON number.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal value.
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// MustPrice parses s and panics on failure. Intended for fixtures and tests.
func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePrice converts user-entered text into a Price. Blank or non-numeric
// text is rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, fmt.Errorf("price is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price{Decimal: d}, nil
}

// MarshalJSON encodes the price as a JSON number, e.g. 9.99.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (p *Price) UnmarshalJSON(data []byte) error {
	return p.Decimal.UnmarshalJSON(data)
}

// Stored prices are NUMERIC(12,2): at most 2 decimal places and 10 integer
// digits.
const (
	PriceScale         = 2
	PriceIntegerDigits = 10
)

// Check reports whether p fits the stored price range. It inspects digits
// and exponent only, so huge exponents are rejected without expanding them.
func (p Price) Check() error {
	if p.IsNegative() {
		return ErrInvalidPrice
	}
	if p.IsZero() {
		return nil
	}

	exp := int64(p.Exponent())
	digits := int64(p.NumDigits())
	if digits+exp > PriceIntegerDigits {
		return ErrPriceTooLarge
	}
	if exp < -PriceScale {
		// The coefficient must end in enough zeros to drop the extra places.
		if -exp-PriceScale >= digits || !p.Decimal.Equal(p.Truncate(PriceScale)) {
			return ErrPriceTooPrecise
		}
	}
	return nil
}
