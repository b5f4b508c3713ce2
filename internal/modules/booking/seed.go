// README: Demo fleet loaded into an empty store at start-up.
package booking

import (
	"context"
	"fmt"
	"time"

	"limo/internal/types"
)

// Seed loads two clients, three drivers around Boston and six bookings covering
// every lifecycle stage. Pickup times are laid out relative to now.
func Seed(ctx context.Context, store Store, now time.Time) error {
	clients := []*Client{
		{ID: "1", Name: "John Doe", Phone: "555-1234"},
		{ID: "2", Name: "Jane Smith", Phone: "555-5678"},
	}
	for _, c := range clients {
		if err := store.CreateClient(ctx, c); err != nil {
			return fmt.Errorf("seed client %s: %w", c.ID, err)
		}
	}

	drivers := []*Driver{
		{ID: "1", Name: "Mike Johnson", Phone: "555-1111", Position: &types.Point{Lat: 42.3601, Lng: -71.0589}},
		{ID: "2", Name: "Sarah Chen", Phone: "555-2222", Position: &types.Point{Lat: 42.3584, Lng: -71.0637}},
		{ID: "3", Name: "David Lee", Phone: "555-3333", Position: &types.Point{Lat: 42.3656, Lng: -71.0694}},
	}
	for _, d := range drivers {
		if err := store.CreateDriver(ctx, d); err != nil {
			return fmt.Errorf("seed driver %s: %w", d.ID, err)
		}
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	at := func(dayOffset, hour, min int) time.Time {
		return day.AddDate(0, 0, dayOffset).Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	}
	driver := func(id types.ID) *types.ID { return &id }
	fare := func(v float64) *types.Money {
		m := types.MoneyFromMajor(v, "USD")
		return &m
	}
	stamp := func(t time.Time) *time.Time { return &t }

	bookings := []*Booking{
		{
			ID: "1", ClientID: "1", DriverID: driver("1"),
			Pickup:          "123 Beacon St, Boston, MA",
			Itinerary:       PointToPoint{Stops: []string{"Faneuil Hall Marketplace"}, Dropoff: "Logan International Airport"},
			PickupTime:      at(1, 14, 30),
			Passengers:      2,
			SpecialRequests: "Child seat required",
			TotalFare:       fare(150),
			PaymentStatus:   PaymentPaid,
			Status:          StatusConfirmed,
			ConfirmedAt:     stamp(now),
			PaidAt:          stamp(now),
		},
		{
			ID: "2", ClientID: "2", DriverID: driver("2"),
			Pickup:        "The Ritz-Carlton, Boston",
			Itinerary:     PointToPoint{Dropoff: "Fenway Park"},
			PickupTime:    at(0, 18, 0),
			Passengers:    4,
			TotalFare:     fare(85),
			PaymentStatus: PaymentPaid,
			Status:        StatusInProgress,
			ConfirmedAt:   stamp(now),
			StartedAt:     stamp(now),
			PaidAt:        stamp(now),
		},
		{
			ID: "3", ClientID: "1",
			Pickup:          "South Station",
			Itinerary:       PointToPoint{Dropoff: "Harvard University"},
			PickupTime:      at(2, 9, 0),
			Passengers:      1,
			SpecialRequests: "Extra luggage space",
			PaymentStatus:   PaymentPending,
			Status:          StatusPending,
		},
		{
			ID: "4", ClientID: "2", DriverID: driver("1"),
			Pickup:        "TD Garden",
			Itinerary:     PointToPoint{Dropoff: "Encore Boston Harbor"},
			PickupTime:    at(-1, 20, 0),
			Passengers:    3,
			TotalFare:     fare(95),
			PaymentStatus: PaymentPaid,
			Status:        StatusCompleted,
			ConfirmedAt:   stamp(now),
			StartedAt:     stamp(now),
			CompletedAt:   stamp(now),
			PaidAt:        stamp(now),
		},
		{
			ID: "5", ClientID: "2", DriverID: driver("3"),
			Pickup:        "Museum of Fine Arts, Boston",
			Itinerary:     Hourly{DurationHours: 4},
			PickupTime:    at(3, 11, 0),
			Passengers:    2,
			TotalFare:     fare(480),
			PaymentStatus: PaymentPaid,
			Status:        StatusConfirmed,
			ConfirmedAt:   stamp(now),
			PaidAt:        stamp(now),
		},
		{
			ID: "6", ClientID: "1", DriverID: driver("2"),
			Pickup:        "Logan International Airport",
			Itinerary:     PointToPoint{Dropoff: "Four Seasons Hotel Boston"},
			PickupTime:    at(1, 16, 45),
			Passengers:    1,
			AirportPickup: true,
			FlightNumber:  "UA123",
			Airline:       "United Airlines",
			Flight: &FlightInfo{
				FlightNumber:     "UA123",
				Airline:          "United Airlines",
				Status:           FlightOnTime,
				ScheduledArrival: at(1, 16, 30),
				EstimatedArrival: at(1, 16, 30),
				Terminal:         "B",
			},
			TotalFare:     fare(120),
			PaymentStatus: PaymentPaid,
			Status:        StatusConfirmed,
			ConfirmedAt:   stamp(now),
			PaidAt:        stamp(now),
		},
	}
	for _, b := range bookings {
		b.CreatedAt = now
		b.UpdatedAt = now
		if err := store.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("seed booking %s: %w", b.ID, err)
		}
	}
	return nil
}
