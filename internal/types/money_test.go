package types

import "testing"

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Money{Amount: 15000, Currency: "USD"}, "$150.00"},
		{Money{Amount: 8505}, "$85.05"},
		{Money{Amount: -500, Currency: "USD"}, "-$5.00"},
		{Money{Amount: 12345, Currency: "EUR"}, "123.45 EUR"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("%+v.String() = %q, want %q", tc.m, got, tc.want)
		}
	}
}

func TestMoneyFromMajor(t *testing.T) {
	cases := []struct {
		v    float64
		want int64
	}{
		{150, 15000},
		{85.05, 8505},
		{0.1, 10},
		{-5, -500},
	}
	for _, tc := range cases {
		if got := MoneyFromMajor(tc.v, "USD"); got.Amount != tc.want {
			t.Errorf("MoneyFromMajor(%v) = %d, want %d", tc.v, got.Amount, tc.want)
		}
	}
}
