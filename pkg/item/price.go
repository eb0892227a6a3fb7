package item

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyPrice    = errors.New("price is empty")
	ErrInvalidPrice  = errors.New("price is not a number")
	ErrNegativePrice = errors.New("price is negative")
)

// ParsePrice converts user-entered text into a price. Only a dot is accepted as the
// decimal separator; surrounding whitespace is not trimmed.
func ParsePrice(text string) (float64, error) {
	if text == "" {
		return 0, ErrEmptyPrice
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if d.IsNegative() {
		return 0, ErrNegativePrice
	}
	price, _ := d.Float64()
	return price, nil
}

// FormatPrice renders a price with two decimal places, the way edit forms show it.
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}
