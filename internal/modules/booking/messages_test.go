package booking

import (
	"testing"
	"time"

	"limo/internal/types"
)

func TestTripDetails(t *testing.T) {
	cases := []struct {
		name string
		b    *Booking
		want string
	}{
		{
			name: "hourly",
			b:    &Booking{Itinerary: Hourly{DurationHours: 4}},
			want: "Hourly service for 4 hours.",
		},
		{
			name: "no stops",
			b:    &Booking{Itinerary: PointToPoint{Dropoff: "Fenway Park"}},
			want: "Stops: None. Dropoff: Fenway Park.",
		},
		{
			name: "stops and flight",
			b: &Booking{
				Itinerary:     PointToPoint{Stops: []string{"A", "B"}, Dropoff: "C"},
				AirportPickup: true,
				FlightNumber:  "UA123",
				Airline:       "United Airlines",
			},
			want: "Stops: A -> B. Dropoff: C. Airport pickup for flight United Airlines UA123.",
		},
	}
	for _, tc := range cases {
		if got := tripDetails(tc.b); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMessagesUseBrandAndLayout(t *testing.T) {
	m := messages{brand: "WAYNE LIMO", payBaseURL: "https://pay.example.com/b", layout: "Jan 2, 2006 3:04 PM"}
	b := &Booking{
		ID:         "42",
		Pickup:     "South Station",
		PickupTime: time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC),
		Itinerary:  PointToPoint{Dropoff: "Harvard"},
	}
	want := "WAYNE LIMO: Your booking request #42 for Mar 14, 2026 3:30 PM has been received. We'll send a confirmation once a driver is assigned."
	if got := m.requested(b); got != want {
		t.Fatalf("got %q", got)
	}

	fare := types.Money{Amount: 8500, Currency: "USD"}
	b.TotalFare = &fare
	want = "WAYNE LIMO: Payment reminder for booking #42 (Total: $85.00). Please pay securely here: https://pay.example.com/b/42"
	if got := m.paymentLink(b); got != want {
		t.Fatalf("got %q", got)
	}
}
