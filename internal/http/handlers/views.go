// README: JSON views of domain records.
package handlers

import (
	"time"

	"limo/internal/modules/booking"
	"limo/internal/modules/location"
	"limo/internal/modules/notify"
	"limo/internal/modules/pricing"
	"limo/internal/types"
)

type pointView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type moneyView struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

func newMoneyView(m *types.Money) *moneyView {
	if m == nil {
		return nil
	}
	return &moneyView{Amount: m.Major(), Currency: m.Currency, Formatted: m.String()}
}

type flightView struct {
	FlightNumber     string    `json:"flight_number"`
	Airline          string    `json:"airline"`
	Status           string    `json:"status"`
	ScheduledArrival time.Time `json:"scheduled_arrival"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	Terminal         string    `json:"terminal"`
}

type bookingView struct {
	ID              string      `json:"id"`
	ClientID        string      `json:"client_id"`
	DriverID        *string     `json:"driver_id"`
	Kind            string      `json:"kind"`
	Pickup          string      `json:"pickup"`
	Stops           []string    `json:"stops,omitempty"`
	Dropoff         string      `json:"dropoff"`
	DurationHours   int         `json:"duration_hours,omitempty"`
	PickupTime      time.Time   `json:"pickup_time"`
	Passengers      int         `json:"passengers"`
	SpecialRequests string      `json:"special_requests,omitempty"`
	AirportPickup   bool        `json:"airport_pickup"`
	Flight          *flightView `json:"flight,omitempty"`
	TotalFare       *moneyView  `json:"total_fare"`
	PaymentStatus   string      `json:"payment_status"`
	Status          string      `json:"status"`
	Version         int         `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	CancelReason    *string     `json:"cancel_reason,omitempty"`
}

func newBookingView(b *booking.Booking) bookingView {
	v := bookingView{
		ID:              string(b.ID),
		ClientID:        string(b.ClientID),
		Kind:            string(b.Kind()),
		Pickup:          b.Pickup,
		Dropoff:         b.Dropoff(),
		PickupTime:      b.PickupTime,
		Passengers:      b.Passengers,
		SpecialRequests: b.SpecialRequests,
		AirportPickup:   b.AirportPickup,
		TotalFare:       newMoneyView(b.TotalFare),
		PaymentStatus:   string(b.PaymentStatus),
		Status:          string(b.Status),
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		CancelReason:    b.CancelReason,
	}
	if b.DriverID != nil {
		id := string(*b.DriverID)
		v.DriverID = &id
	}
	switch it := b.Itinerary.(type) {
	case booking.PointToPoint:
		v.Stops = it.Stops
	case booking.Hourly:
		v.DurationHours = it.DurationHours
	}
	if f := b.Flight; f != nil {
		v.Flight = &flightView{
			FlightNumber:     f.FlightNumber,
			Airline:          f.Airline,
			Status:           string(f.Status),
			ScheduledArrival: f.ScheduledArrival,
			EstimatedArrival: f.EstimatedArrival,
			Terminal:         f.Terminal,
		}
	}
	return v
}

func newBookingViews(bs []*booking.Booking) []bookingView {
	out := make([]bookingView, len(bs))
	for i, b := range bs {
		out[i] = newBookingView(b)
	}
	return out
}

type driverView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Position *pointView `json:"position"`
}

func newDriverViews(ds []*booking.Driver) []driverView {
	out := make([]driverView, len(ds))
	for i, d := range ds {
		out[i] = driverView{ID: string(d.ID), Name: d.Name, Phone: d.Phone}
		if d.Position != nil {
			out[i].Position = &pointView{Lat: d.Position.Lat, Lng: d.Position.Lng}
		}
	}
	return out
}

type clientView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func newClientViews(cs []*booking.Client) []clientView {
	out := make([]clientView, len(cs))
	for i, c := range cs {
		out[i] = clientView{ID: string(c.ID), Name: c.Name, Phone: c.Phone}
	}
	return out
}

type nearbyView struct {
	DriverID   string    `json:"driver_id"`
	Name       string    `json:"name"`
	Position   pointView `json:"position"`
	DistanceKm float64   `json:"distance_km"`
}

func newNearbyViews(ls []location.DriverLocation) []nearbyView {
	out := make([]nearbyView, len(ls))
	for i, l := range ls {
		out[i] = nearbyView{
			DriverID:   string(l.DriverID),
			Name:       l.Name,
			Position:   pointView{Lat: l.Position.Lat, Lng: l.Position.Lng},
			DistanceKm: l.DistanceKm,
		}
	}
	return out
}

type noticeView struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	BookingID string    `json:"booking_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

func newNoticeViews(ns []notify.Notice) []noticeView {
	out := make([]noticeView, len(ns))
	for i, n := range ns {
		out[i] = noticeView{
			EventID:   n.EventID,
			Kind:      string(n.Kind),
			BookingID: string(n.BookingID),
			Level:     string(n.Level),
			Message:   n.Message,
			At:        n.At,
		}
	}
	return out
}

type quoteView struct {
	BookingID   string           `json:"booking_id"`
	Kind        string           `json:"kind"`
	Total       *moneyView       `json:"total"`
	Hours       int              `json:"hours,omitempty"`
	Miles       float64          `json:"miles,omitempty"`
	DurationMin float64          `json:"duration_min,omitempty"`
	Breakdown   map[string]int64 `json:"breakdown"`
}

func newQuoteView(q pricing.Quote) quoteView {
	total := q.Total
	return quoteView{
		BookingID:   string(q.BookingID),
		Kind:        string(q.Kind),
		Total:       newMoneyView(&total),
		Hours:       q.Hours,
		Miles:       q.Miles,
		DurationMin: q.Duration.Minutes(),
		Breakdown:   q.Breakdown,
	}
}
