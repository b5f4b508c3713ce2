// README: Common money value object used across modules.
package types

import "fmt"

// Money is an amount in minor units (cents for USD).
type Money struct {
	Amount   int64
	Currency string
}

// MoneyFromMajor converts a decimal amount such as 150.25 into minor units.
func MoneyFromMajor(v float64, currency string) Money {
	if v >= 0 {
		return Money{Amount: int64(v*100 + 0.5), Currency: currency}
	}
	return Money{Amount: int64(v*100 - 0.5), Currency: currency}
}

// Major returns the amount in major units.
func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	sign := ""
	amt := m.Amount
	if amt < 0 {
		sign = "-"
		amt = -amt
	}
	if m.Currency == "" || m.Currency == "USD" {
		return fmt.Sprintf("%s$%d.%02d", sign, amt/100, amt%100)
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amt/100, amt%100, m.Currency)
}
