// README: Common value objects used across modules.
package types

import "strconv"

type ID string

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// String renders the point as "lat,lng", the form the maps APIs accept.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

const CurrencyPHP = "PHP"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func PHP(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyPHP}
}

func (m Money) Add(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return Money{Amount: m.Amount + other.Amount, Currency: currency}
}
