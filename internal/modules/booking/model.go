// README: Booking aggregate, itinerary variants, flight tracking and status definitions.
package booking

import (
	"fmt"
	"time"

	"limo/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseStatus(v string) (Status, bool) {
	switch Status(v) {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(v), true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func ParsePaymentStatus(v string) (PaymentStatus, bool) {
	switch PaymentStatus(v) {
	case PaymentPending, PaymentPaid:
		return PaymentStatus(v), true
	default:
		return "", false
	}
}

type Kind string

const (
	KindPointToPoint Kind = "point_to_point"
	KindHourly       Kind = "hourly"
)

// Itinerary is either PointToPoint or Hourly.
type Itinerary interface {
	Kind() Kind
	DropoffLabel() string
	clone() Itinerary
}

type PointToPoint struct {
	Stops   []string
	Dropoff string
}

func (p PointToPoint) Kind() Kind           { return KindPointToPoint }
func (p PointToPoint) DropoffLabel() string { return p.Dropoff }

func (p PointToPoint) clone() Itinerary {
	out := PointToPoint{Dropoff: p.Dropoff}
	if len(p.Stops) > 0 {
		out.Stops = append([]string(nil), p.Stops...)
	}
	return out
}

type Hourly struct {
	DurationHours int
}

func (h Hourly) Kind() Kind { return KindHourly }

func (h Hourly) DropoffLabel() string {
	return fmt.Sprintf("As Directed for %d hours", h.DurationHours)
}

func (h Hourly) clone() Itinerary { return h }

type FlightStatus string

const (
	FlightScheduled FlightStatus = "scheduled"
	FlightOnTime    FlightStatus = "on_time"
	FlightEnRoute   FlightStatus = "en_route"
	FlightDelayed   FlightStatus = "delayed"
	FlightLanded    FlightStatus = "landed"
)

// TerminalTBD is the terminal of a flight not yet assigned a gate area.
const TerminalTBD = "TBD"

type FlightInfo struct {
	FlightNumber     string
	Airline          string
	Status           FlightStatus
	ScheduledArrival time.Time
	EstimatedArrival time.Time
	Terminal         string
}

type Client struct {
	ID    types.ID
	Name  string
	Phone string
}

type Driver struct {
	ID       types.ID
	Name     string
	Phone    string
	Position *types.Point
}

func (d *Driver) Clone() *Driver {
	cp := *d
	if d.Position != nil {
		p := *d.Position
		cp.Position = &p
	}
	return &cp
}

type Booking struct {
	ID              types.ID
	ClientID        types.ID
	DriverID        *types.ID
	Pickup          string
	Itinerary       Itinerary
	PickupTime      time.Time
	Passengers      int
	SpecialRequests string

	AirportPickup bool
	FlightNumber  string
	Airline       string
	Flight        *FlightInfo

	TotalFare     *types.Money
	PaymentStatus PaymentStatus

	Status            Status
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ConfirmedAt       *time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	PaidAt            *time.Time
	PaymentLinkSentAt *time.Time
	CancelReason      *string
}

// Kind reports the itinerary variant.
func (b *Booking) Kind() Kind {
	if b.Itinerary == nil {
		return ""
	}
	return b.Itinerary.Kind()
}

func (b *Booking) Dropoff() string {
	if b.Itinerary == nil {
		return ""
	}
	return b.Itinerary.DropoffLabel()
}

func (b *Booking) HasDriver(id types.ID) bool {
	return b.DriverID != nil && *b.DriverID == id
}

// Clone returns a deep copy that shares no memory with b.
func (b *Booking) Clone() *Booking {
	cp := *b
	if b.Itinerary != nil {
		cp.Itinerary = b.Itinerary.clone()
	}
	if b.DriverID != nil {
		d := *b.DriverID
		cp.DriverID = &d
	}
	if b.Flight != nil {
		f := *b.Flight
		cp.Flight = &f
	}
	if b.TotalFare != nil {
		m := *b.TotalFare
		cp.TotalFare = &m
	}
	cp.ConfirmedAt = cloneTime(b.ConfirmedAt)
	cp.StartedAt = cloneTime(b.StartedAt)
	cp.CompletedAt = cloneTime(b.CompletedAt)
	cp.CancelledAt = cloneTime(b.CancelledAt)
	cp.PaidAt = cloneTime(b.PaidAt)
	cp.PaymentLinkSentAt = cloneTime(b.PaymentLinkSentAt)
	if b.CancelReason != nil {
		r := *b.CancelReason
		cp.CancelReason = &r
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Transition is one audited status change.
type Transition struct {
	BookingID  types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	Note       string
	CreatedAt  time.Time
}

// AllowedTransitions represents the booking state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusPending, StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// advanceable lists the only edges AdvanceStatus may take.
var advanceable = map[Status]Status{
	StatusConfirmed:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}
