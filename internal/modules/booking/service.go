// README: Dispatch engine: validates and applies booking transitions and emits notification events.
package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"limo/internal/config"
	"limo/internal/modules/notify"
	"limo/internal/types"
)

// Notifier receives the events of a committed transition. It must not block.
type Notifier interface {
	Dispatch(events ...notify.Event)
}

type Service struct {
	store    Store
	notifier Notifier
	audit    AuditLog
	log      *slog.Logger
	msg      messages
	currency string
	now      func() time.Time
}

type Option func(*Service)

func WithAudit(a AuditLog) Option {
	return func(s *Service) { s.audit = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, notifier Notifier, cfg config.DispatchConfig, opts ...Option) *Service {
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}
	layout := cfg.TimeLayout
	if layout == "" {
		layout = "Jan 2, 2006 3:04 PM"
	}
	s := &Service{
		store:    store,
		notifier: notifier,
		log:      slog.Default(),
		msg: messages{
			brand:      cfg.Brand,
			payBaseURL: strings.TrimRight(cfg.PaymentBaseURL, "/"),
			layout:     layout,
		},
		currency: currency,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft is a client's booking request before validation.
type Draft struct {
	ClientID        types.ID
	Kind            Kind
	Pickup          string
	PickupTime      time.Time
	Stops           []string
	Dropoff         string
	DurationHours   int
	Passengers      int
	SpecialRequests string
	AirportPickup   bool
	FlightNumber    string
	Airline         string
}

type AssignCommand struct {
	BookingID types.ID
	// DriverID nil unassigns the current driver.
	DriverID *types.ID
}

type SetFareCommand struct {
	BookingID types.ID
	Amount    types.Money
}

type AdvanceCommand struct {
	BookingID types.ID
	Target    Status
}

type CancelCommand struct {
	BookingID types.ID
	Reason    string
}

func (s *Service) RequestBooking(ctx context.Context, d Draft) (*Booking, error) {
	itinerary, err := validateDraft(d)
	if err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(ctx, d.ClientID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &Booking{
		ID:              newID(),
		ClientID:        client.ID,
		Pickup:          strings.TrimSpace(d.Pickup),
		Itinerary:       itinerary,
		PickupTime:      d.PickupTime,
		Passengers:      d.Passengers,
		SpecialRequests: strings.TrimSpace(d.SpecialRequests),
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if d.AirportPickup {
		b.AirportPickup = true
		b.FlightNumber = strings.TrimSpace(d.FlightNumber)
		b.Airline = strings.TrimSpace(d.Airline)
		b.Flight = &FlightInfo{
			FlightNumber:     b.FlightNumber,
			Airline:          b.Airline,
			Status:           FlightScheduled,
			ScheduledArrival: d.PickupTime,
			EstimatedArrival: d.PickupTime,
			Terminal:         TerminalTBD,
		}
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(notify.NewEvent(notify.KindBookingRequested, b.ID, notify.AudienceClient,
		client.Phone, s.msg.requested(b)))
	s.record(ctx, Transition{
		BookingID:  b.ID,
		FromStatus: "",
		ToStatus:   StatusPending,
		ActorType:  "client",
		ActorID:    &client.ID,
		CreatedAt:  now,
	})
	return b.Clone(), nil
}

func validateDraft(d Draft) (Itinerary, error) {
	if d.ClientID == "" {
		return nil, invalid("client_id", "is required")
	}
	if strings.TrimSpace(d.Pickup) == "" {
		return nil, invalid("pickup", "is required")
	}
	if d.PickupTime.IsZero() {
		return nil, invalid("pickup_time", "is required")
	}
	if d.Passengers < 1 {
		return nil, invalid("passengers", "must be at least 1")
	}
	if d.AirportPickup {
		if strings.TrimSpace(d.FlightNumber) == "" {
			return nil, invalid("flight_number", "is required for airport pickup")
		}
		if strings.TrimSpace(d.Airline) == "" {
			return nil, invalid("airline", "is required for airport pickup")
		}
	}

	switch d.Kind {
	case KindPointToPoint:
		dropoff := strings.TrimSpace(d.Dropoff)
		if dropoff == "" {
			return nil, invalid("dropoff", "is required for point-to-point bookings")
		}
		var stops []string
		for _, stop := range d.Stops {
			if v := strings.TrimSpace(stop); v != "" {
				stops = append(stops, v)
			}
		}
		return PointToPoint{Stops: stops, Dropoff: dropoff}, nil
	case KindHourly:
		if d.DurationHours <= 0 {
			return nil, invalid("duration_hours", "must be positive")
		}
		return Hourly{DurationHours: d.DurationHours}, nil
	default:
		return nil, invalid("kind", "must be point_to_point or hourly")
	}
}

func (s *Service) AssignDriver(ctx context.Context, cmd AssignCommand) (*Booking, error) {
	current, err := s.store.GetBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if cmd.DriverID == nil {
		return s.unassign(ctx, current.ID)
	}

	driver, err := s.store.GetDriver(ctx, *cmd.DriverID)
	if err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(ctx, current.ClientID)
	if err != nil {
		s.log.Warn("client lookup failed", "booking_id", current.ID, "err", err)
		client = nil
	}

	now := s.now()
	var from Status
	b, err := s.store.UpdateBooking(ctx, cmd.BookingID, func(b *Booking) error {
		if !CanTransition(b.Status, StatusConfirmed) {
			return &TransitionError{From: b.Status, To: StatusConfirmed}
		}
		from = b.Status
		id := driver.ID
		b.DriverID = &id
		b.Status = StatusConfirmed
		b.ConfirmedAt = &now
		touch(b, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := []notify.Event{
		notify.NewEvent(notify.KindDriverAssigned, b.ID, notify.AudienceDriver,
			driver.Phone, s.msg.driverAssigned(b, client)),
	}
	if client != nil {
		events = append(events, notify.NewEvent(notify.KindBookingConfirmed, b.ID, notify.AudienceClient,
			client.Phone, s.msg.confirmed(b, driver)))
	}
	s.notifier.Dispatch(events...)
	s.record(ctx, Transition{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   StatusConfirmed,
		ActorType:  "owner",
		Note:       "driver " + string(driver.ID) + " assigned",
		CreatedAt:  now,
	})
	return b, nil
}

func (s *Service) unassign(ctx context.Context, id types.ID) (*Booking, error) {
	now := s.now()
	var former *types.ID
	b, err := s.store.UpdateBooking(ctx, id, func(b *Booking) error {
		former = nil
		switch b.Status {
		case StatusPending:
			return nil
		case StatusConfirmed:
			former = b.DriverID
			b.DriverID = nil
			b.ConfirmedAt = nil
			b.Status = StatusPending
			touch(b, now)
			return nil
		default:
			return &TransitionError{From: b.Status, To: StatusPending}
		}
	})
	if err != nil {
		return nil, err
	}
	if former == nil {
		return b, nil
	}

	s.notifier.Dispatch(notify.NewEvent(notify.KindDriverUnassigned, b.ID, notify.AudienceOperator,
		"", s.msg.unassigned(b, *former)))
	s.record(ctx, Transition{
		BookingID:  b.ID,
		FromStatus: StatusConfirmed,
		ToStatus:   StatusPending,
		ActorType:  "owner",
		Note:       "driver " + string(*former) + " unassigned",
		CreatedAt:  now,
	})
	return b, nil
}

func (s *Service) SetFare(ctx context.Context, cmd SetFareCommand) (*Booking, error) {
	if cmd.Amount.Amount <= 0 {
		return nil, invalid("amount", "must be greater than zero")
	}
	fare := cmd.Amount
	if fare.Currency == "" {
		fare.Currency = s.currency
	}
	now := s.now()
	return s.store.UpdateBooking(ctx, cmd.BookingID, func(b *Booking) error {
		f := fare
		b.TotalFare = &f
		touch(b, now)
		return nil
	})
}

func (s *Service) RequestPayment(ctx context.Context, id types.ID) (*Booking, error) {
	now := s.now()
	b, err := s.store.UpdateBooking(ctx, id, func(b *Booking) error {
		if b.TotalFare == nil {
			return preconditionFailed("fare has not been set")
		}
		if b.PaymentStatus == PaymentPaid {
			return preconditionFailed("booking is already paid")
		}
		b.PaymentLinkSentAt = &now
		touch(b, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	client, err := s.store.GetClient(ctx, b.ClientID)
	if err != nil {
		s.log.Warn("payment link not sent", "booking_id", b.ID, "err", err)
		return b, nil
	}
	s.notifier.Dispatch(notify.NewEvent(notify.KindPaymentLinkIssued, b.ID, notify.AudienceClient,
		client.Phone, s.msg.paymentLink(b)))
	return b, nil
}

// PaymentURL is the deterministic payment reference for a booking.
func (s *Service) PaymentURL(id types.ID) string {
	return s.msg.paymentURL(id)
}

func (s *Service) ConfirmPayment(ctx context.Context, id types.ID) (*Booking, error) {
	now := s.now()
	return s.store.UpdateBooking(ctx, id, func(b *Booking) error {
		if b.PaymentStatus == PaymentPaid {
			return nil
		}
		b.PaymentStatus = PaymentPaid
		b.PaidAt = &now
		touch(b, now)
		return nil
	})
}

func (s *Service) AdvanceStatus(ctx context.Context, cmd AdvanceCommand) (*Booking, error) {
	now := s.now()
	var from Status
	b, err := s.store.UpdateBooking(ctx, cmd.BookingID, func(b *Booking) error {
		next, ok := advanceable[b.Status]
		if !ok || next != cmd.Target {
			return &TransitionError{From: b.Status, To: cmd.Target}
		}
		from = b.Status
		b.Status = next
		switch next {
		case StatusInProgress:
			b.StartedAt = &now
		case StatusCompleted:
			b.CompletedAt = &now
		}
		touch(b, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, Transition{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   b.Status,
		ActorType:  "driver",
		ActorID:    b.DriverID,
		CreatedAt:  now,
	})
	return b, nil
}

// Cancel is the administrative override into the cancelled state.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Booking, error) {
	now := s.now()
	reason := strings.TrimSpace(cmd.Reason)
	var (
		from   Status
		former *types.ID
	)
	b, err := s.store.UpdateBooking(ctx, cmd.BookingID, func(b *Booking) error {
		if !CanTransition(b.Status, StatusCancelled) {
			return &TransitionError{From: b.Status, To: StatusCancelled}
		}
		from = b.Status
		former = b.DriverID
		b.DriverID = nil
		b.Status = StatusCancelled
		b.CancelledAt = &now
		if reason != "" {
			b.CancelReason = &reason
		}
		touch(b, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var events []notify.Event
	if client, err := s.store.GetClient(ctx, b.ClientID); err == nil {
		events = append(events, notify.NewEvent(notify.KindBookingCancelled, b.ID, notify.AudienceClient,
			client.Phone, s.msg.cancelled(b)))
	}
	if former != nil {
		if driver, err := s.store.GetDriver(ctx, *former); err == nil {
			events = append(events, notify.NewEvent(notify.KindTripCancelled, b.ID, notify.AudienceDriver,
				driver.Phone, s.msg.tripCancelled(b)))
		}
	}
	s.notifier.Dispatch(events...)
	s.record(ctx, Transition{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   StatusCancelled,
		ActorType:  "owner",
		Note:       reason,
		CreatedAt:  now,
	})
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// record hands t to the audit log after the transition's events are dispatched.
func (s *Service) record(ctx context.Context, t Transition) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, t); err != nil {
		s.log.Error("audit append failed", "booking_id", t.BookingID, "to", t.ToStatus, "err", err)
	}
}

func touch(b *Booking, now time.Time) {
	b.Version++
	b.UpdatedAt = now
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
