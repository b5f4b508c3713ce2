// README: Simulator applies feed observations to active trips on two independent tickers.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"limo/internal/config"
	"limo/internal/modules/booking"
	"limo/internal/types"
)

// PositionSink receives every position the simulator commits.
type PositionSink interface {
	PublishPosition(ctx context.Context, driverID types.ID, p types.Point) error
}

type Simulator struct {
	store     booking.Store
	positions PositionFeed
	flights   FlightFeed
	sinks     []PositionSink
	cfg       config.TelemetryConfig
	log       *slog.Logger
	now       func() time.Time
}

func NewSimulator(store booking.Store, positions PositionFeed, flights FlightFeed, cfg config.TelemetryConfig, log *slog.Logger, sinks ...PositionSink) *Simulator {
	if log == nil {
		log = slog.Default()
	}
	if cfg.PositionTick <= 0 {
		cfg.PositionTick = 3 * time.Second
	}
	if cfg.FlightTick <= 0 {
		cfg.FlightTick = 5 * time.Second
	}
	return &Simulator{
		store:     store,
		positions: positions,
		flights:   flights,
		sinks:     sinks,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// TickPositions moves the driver of every in-progress trip once and returns how many moved.
// Feeds are consulted outside any record lock; the result is committed only if the
// trip is still in progress under the booking lock, which is taken before the driver lock.
func (s *Simulator) TickPositions(ctx context.Context) int {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		s.log.Error("position tick: list bookings", "err", err)
		return 0
	}

	moved := 0
	seen := make(map[types.ID]bool)
	for _, b := range bookings {
		if b.Status != booking.StatusInProgress || b.DriverID == nil || seen[*b.DriverID] {
			continue
		}
		driverID := *b.DriverID
		seen[driverID] = true

		d, err := s.store.GetDriver(ctx, driverID)
		if err != nil || d.Position == nil {
			continue
		}
		next, err := s.positions.NextPosition(ctx, driverID, *d.Position)
		if err != nil {
			s.log.Warn("position tick: feed", "driver_id", driverID, "err", err)
			continue
		}

		changed := false
		_, err = s.store.UpdateBooking(ctx, b.ID, func(cur *booking.Booking) error {
			if cur.Status != booking.StatusInProgress || !cur.HasDriver(driverID) {
				return nil
			}
			_, err := s.store.UpdateDriver(ctx, driverID, func(d *booking.Driver) error {
				if d.Position == nil {
					return nil
				}
				d.Position = &next
				changed = true
				return nil
			})
			return err
		})
		if err != nil {
			s.log.Warn("position tick: update driver", "driver_id", driverID, "err", err)
			continue
		}
		if !changed {
			continue
		}
		moved++
		for _, sink := range s.sinks {
			if err := sink.PublishPosition(ctx, driverID, next); err != nil {
				s.log.Warn("position tick: publish", "driver_id", driverID, "err", err)
			}
		}
	}
	return moved
}

// TickFlights refreshes the flight of every airport pickup that has not completed.
func (s *Simulator) TickFlights(ctx context.Context) int {
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		s.log.Error("flight tick: list bookings", "err", err)
		return 0
	}

	updated := 0
	for _, b := range bookings {
		if !tracksFlight(b) {
			continue
		}
		u, err := s.flights.NextFlight(ctx, *b.Flight)
		if err != nil {
			s.log.Warn("flight tick: feed", "booking_id", b.ID, "err", err)
			continue
		}
		changed := false
		_, err = s.store.UpdateBooking(ctx, b.ID, func(b *booking.Booking) error {
			if !tracksFlight(b) {
				return nil
			}
			applyFlight(b.Flight, u)
			b.Version++
			b.UpdatedAt = s.now()
			changed = true
			return nil
		})
		if err != nil {
			s.log.Warn("flight tick: update booking", "booking_id", b.ID, "err", err)
			continue
		}
		if changed {
			updated++
		}
	}
	return updated
}

func tracksFlight(b *booking.Booking) bool {
	return b.AirportPickup && b.Flight != nil && b.Status != booking.StatusCompleted
}

// applyFlight keeps estimated arrival equal to scheduled unless the flight is delayed.
func applyFlight(f *booking.FlightInfo, u FlightUpdate) {
	f.Status = u.Status
	if u.Terminal != "" {
		f.Terminal = u.Terminal
	}
	delay := time.Duration(0)
	if u.Status == booking.FlightDelayed && u.Delay > 0 {
		delay = u.Delay
	}
	f.EstimatedArrival = f.ScheduledArrival.Add(delay)
}

// RunPositionTicker drifts positions every PositionTick until ctx is cancelled.
func (s *Simulator) RunPositionTicker(ctx context.Context) {
	s.run(ctx, s.cfg.PositionTick, func(ctx context.Context) { s.TickPositions(ctx) })
}

func (s *Simulator) RunFlightTicker(ctx context.Context) {
	s.run(ctx, s.cfg.FlightTick, func(ctx context.Context) { s.TickFlights(ctx) })
}

func (s *Simulator) run(ctx context.Context, every time.Duration, tick func(context.Context)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}
