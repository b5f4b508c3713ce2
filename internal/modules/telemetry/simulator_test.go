// README: Telemetry tests covering drift bounds, flight invariants, lock scope and ticker shutdown.
package telemetry

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"limo/internal/config"
	"limo/internal/modules/booking"
	"limo/internal/modules/notify"
	"limo/internal/types"
)

// maxDrift allows for float rounding at the jitter bound.
const maxDrift = 0.0025 + 1e-9

type recordingSink struct {
	mu  sync.Mutex
	got map[types.ID]types.Point
}

func (r *recordingSink) PublishPosition(_ context.Context, id types.ID, p types.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.got == nil {
		r.got = make(map[types.ID]types.Point)
	}
	r.got[id] = p
	return nil
}

type fixedFlights struct {
	u   FlightUpdate
	err error
}

func (f fixedFlights) NextFlight(context.Context, booking.FlightInfo) (FlightUpdate, error) {
	return f.u, f.err
}

func seededStore(t *testing.T) *booking.MemoryStore {
	t.Helper()
	store := booking.NewMemoryStore()
	if err := booking.Seed(context.Background(), store, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newTestSimulator(store booking.Store, flights FlightFeed, sinks ...PositionSink) *Simulator {
	cfg := config.TelemetryConfig{PositionTick: 10 * time.Millisecond, FlightTick: 10 * time.Millisecond}
	if flights == nil {
		flights = NewRandomFlights(60, 7)
	}
	return NewSimulator(store, NewRandomWalk(0.0025, 42), flights, cfg, nil, sinks...)
}

func TestTickPositionsMovesOnlyInProgressDrivers(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	before, _ := store.ListDrivers(ctx)
	sink := &recordingSink{}
	sim := newTestSimulator(store, nil, sink)

	if moved := sim.TickPositions(ctx); moved != 1 {
		t.Fatalf("expected exactly one in-progress driver to move, got %d", moved)
	}

	after, _ := store.ListDrivers(ctx)
	for i, d := range after {
		prev := before[i].Position
		dLat := math.Abs(d.Position.Lat - prev.Lat)
		dLng := math.Abs(d.Position.Lng - prev.Lng)
		if d.ID == "2" {
			if dLat > maxDrift || dLng > maxDrift {
				t.Fatalf("drift out of bounds: %f, %f", dLat, dLng)
			}
			if dLat == 0 && dLng == 0 {
				t.Fatal("in-progress driver did not move")
			}
			if sink.got["2"] != *d.Position {
				t.Fatalf("sink saw %+v, store has %+v", sink.got["2"], *d.Position)
			}
			continue
		}
		if dLat != 0 || dLng != 0 {
			t.Fatalf("driver %s moved without an in-progress trip", d.ID)
		}
	}
}

func TestTickPositionsSkipsUnknownPosition(t *testing.T) {
	ctx := context.Background()
	store := booking.NewMemoryStore()
	driverID := types.ID("d1")
	_ = store.CreateDriver(ctx, &booking.Driver{ID: driverID})
	_ = store.CreateBooking(ctx, &booking.Booking{
		ID: "b1", DriverID: &driverID, Status: booking.StatusInProgress,
		Itinerary: booking.PointToPoint{Dropoff: "x"},
	})
	sim := newTestSimulator(store, nil)

	if moved := sim.TickPositions(ctx); moved != 0 {
		t.Fatalf("expected no movement, got %d", moved)
	}
	d, _ := store.GetDriver(ctx, driverID)
	if d.Position != nil {
		t.Fatal("position should stay unknown")
	}
}

func TestTickFlightsScenario(t *testing.T) {
	ctx := context.Background()
	store := booking.NewMemoryStore()
	_ = store.CreateClient(ctx, &booking.Client{ID: "c1", Name: "Jane", Phone: "555-5678"})
	svc := booking.NewService(store, nopNotifier{}, config.DispatchConfig{Brand: "WAYNE LIMO"})
	b, err := svc.RequestBooking(ctx, booking.Draft{
		ClientID:      "c1",
		Kind:          booking.KindPointToPoint,
		Pickup:        "Logan International Airport",
		PickupTime:    time.Date(2026, 5, 1, 16, 30, 0, 0, time.UTC),
		Dropoff:       "Four Seasons",
		Passengers:    1,
		AirportPickup: true,
		FlightNumber:  "UA123",
		Airline:       "United",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if b.Flight.Status != booking.FlightScheduled || b.Flight.Terminal != booking.TerminalTBD {
		t.Fatalf("unexpected initial flight %+v", b.Flight)
	}

	sim := newTestSimulator(store, nil)
	for i := 0; i < 200; i++ {
		if n := sim.TickFlights(ctx); n != 1 {
			t.Fatalf("tick %d: expected one flight updated, got %d", i, n)
		}
		got, _ := store.GetBooking(ctx, b.ID)
		f := got.Flight
		switch f.Status {
		case booking.FlightOnTime, booking.FlightEnRoute, booking.FlightLanded:
			if !f.EstimatedArrival.Equal(f.ScheduledArrival) {
				t.Fatalf("tick %d: %s flight drifted: %v vs %v", i, f.Status, f.EstimatedArrival, f.ScheduledArrival)
			}
		case booking.FlightDelayed:
			delay := f.EstimatedArrival.Sub(f.ScheduledArrival)
			if delay <= 0 || delay >= 60*time.Minute {
				t.Fatalf("tick %d: delay out of range: %v", i, delay)
			}
		default:
			t.Fatalf("tick %d: unexpected status %s", i, f.Status)
		}
		switch f.Terminal {
		case "A", "B", "C", "E":
		default:
			t.Fatalf("tick %d: unexpected terminal %q", i, f.Terminal)
		}
	}
}

func TestTickFlightsSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	store := booking.NewMemoryStore()
	flight := &booking.FlightInfo{Status: booking.FlightScheduled, Terminal: booking.TerminalTBD}
	_ = store.CreateBooking(ctx, &booking.Booking{
		ID: "done", AirportPickup: true, Flight: flight, Status: booking.StatusCompleted,
		Itinerary: booking.PointToPoint{Dropoff: "x"},
	})
	_ = store.CreateBooking(ctx, &booking.Booking{
		ID: "ground", Status: booking.StatusConfirmed,
		Itinerary: booking.PointToPoint{Dropoff: "x"},
	})
	sim := newTestSimulator(store, fixedFlights{u: FlightUpdate{Status: booking.FlightLanded, Terminal: "A"}})

	if n := sim.TickFlights(ctx); n != 0 {
		t.Fatalf("expected no updates, got %d", n)
	}
	got, _ := store.GetBooking(ctx, "done")
	if got.Flight.Status != booking.FlightScheduled {
		t.Fatal("completed booking's flight changed")
	}
}

func TestApplyFlightIgnoresDelayUnlessDelayed(t *testing.T) {
	sched := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &booking.FlightInfo{ScheduledArrival: sched, EstimatedArrival: sched.Add(time.Hour)}

	applyFlight(f, FlightUpdate{Status: booking.FlightEnRoute, Terminal: "C", Delay: 30 * time.Minute})
	if !f.EstimatedArrival.Equal(sched) || f.Terminal != "C" {
		t.Fatalf("unexpected flight %+v", f)
	}
	applyFlight(f, FlightUpdate{Status: booking.FlightDelayed, Delay: 30 * time.Minute})
	if !f.EstimatedArrival.Equal(sched.Add(30*time.Minute)) || f.Terminal != "C" {
		t.Fatalf("unexpected flight %+v", f)
	}
}

func TestFeedErrorLeavesBookingUnchanged(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	before, _ := store.GetBooking(ctx, "6")
	sim := newTestSimulator(store, fixedFlights{err: errors.New("feed down")})

	if n := sim.TickFlights(ctx); n != 0 {
		t.Fatalf("expected no updates, got %d", n)
	}
	after, _ := store.GetBooking(ctx, "6")
	if after.Version != before.Version || after.Flight.Status != before.Flight.Status {
		t.Fatal("failed feed read mutated the booking")
	}
}

func TestRandomWalkBounds(t *testing.T) {
	w := NewRandomWalk(0.0025, 1)
	origin := types.Point{Lat: 42.36, Lng: -71.06}
	for i := 0; i < 1000; i++ {
		p, _ := w.NextPosition(context.Background(), "d", origin)
		if math.Abs(p.Lat-origin.Lat) > maxDrift || math.Abs(p.Lng-origin.Lng) > maxDrift {
			t.Fatalf("step %d out of bounds: %+v", i, p)
		}
	}
}

func TestTickersStopOnCancel(t *testing.T) {
	store := seededStore(t)
	sim := newTestSimulator(store, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); sim.RunPositionTicker(ctx) }()
	go func() { defer wg.Done(); sim.RunFlightTicker(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tickers did not stop after cancellation")
	}

	b, _ := store.GetBooking(context.Background(), "6")
	if b.Version == 0 {
		t.Fatal("flight ticker never ran")
	}
}

// Ticks running alongside dispatch operations must never undo a transition.
func TestTicksDoNotOverwriteTransitions(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := booking.NewService(store, nopNotifier{}, config.DispatchConfig{})
	sim := newTestSimulator(store, nil)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 50; i++ {
			sim.TickFlights(ctx)
			sim.TickPositions(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		<-start
		if _, err := svc.AdvanceStatus(ctx, booking.AdvanceCommand{BookingID: "6", Target: booking.StatusInProgress}); err != nil {
			t.Errorf("advance: %v", err)
		}
		if _, err := svc.SetFare(ctx, booking.SetFareCommand{BookingID: "6", Amount: types.Money{Amount: 13000}}); err != nil {
			t.Errorf("set fare: %v", err)
		}
	}()
	close(start)
	wg.Wait()

	got, _ := store.GetBooking(ctx, "6")
	if got.Status != booking.StatusInProgress || got.TotalFare.Amount != 13000 {
		t.Fatalf("transition lost: status %s fare %v", got.Status, got.TotalFare)
	}
}

// completingFeed finishes the trip while the next position is being computed.
type completingFeed struct {
	svc *booking.Service
}

func (f completingFeed) NextPosition(ctx context.Context, _ types.ID, p types.Point) (types.Point, error) {
	if _, err := f.svc.AdvanceStatus(ctx, booking.AdvanceCommand{BookingID: "2", Target: booking.StatusCompleted}); err != nil {
		return p, err
	}
	return types.Point{Lat: p.Lat + 0.001, Lng: p.Lng}, nil
}

func TestTickPositionsDropsMoveAfterTripEnds(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := booking.NewService(store, nopNotifier{}, config.DispatchConfig{})
	before, _ := store.GetDriver(ctx, "2")
	sink := &recordingSink{}
	sim := NewSimulator(store, completingFeed{svc: svc}, NewRandomFlights(60, 7), config.TelemetryConfig{}, nil, sink)

	if moved := sim.TickPositions(ctx); moved != 0 {
		t.Fatalf("expected no movement once the trip completed, got %d", moved)
	}
	after, _ := store.GetDriver(ctx, "2")
	if *after.Position != *before.Position {
		t.Fatalf("driver moved after completion: %+v -> %+v", *before.Position, *after.Position)
	}
	if _, ok := sink.got["2"]; ok {
		t.Fatal("sink received a position for a completed trip")
	}
	b, _ := store.GetBooking(ctx, "2")
	if b.Status != booking.StatusCompleted {
		t.Fatalf("expected completed, got %s", b.Status)
	}
}

// blockingFlights parks inside NextFlight until released.
type blockingFlights struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *blockingFlights) NextFlight(ctx context.Context, _ booking.FlightInfo) (FlightUpdate, error) {
	f.once.Do(func() { close(f.entered) })
	select {
	case <-f.release:
	case <-ctx.Done():
		return FlightUpdate{}, ctx.Err()
	}
	return FlightUpdate{Status: booking.FlightLanded, Terminal: "C"}, nil
}

func TestSlowFlightFeedDoesNotHoldBooking(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := booking.NewService(store, nopNotifier{}, config.DispatchConfig{})
	feed := &blockingFlights{entered: make(chan struct{}), release: make(chan struct{})}
	sim := newTestSimulator(store, feed)

	done := make(chan int)
	go func() { done <- sim.TickFlights(ctx) }()
	<-feed.entered

	fareSet := make(chan error, 1)
	go func() {
		_, err := svc.SetFare(ctx, booking.SetFareCommand{BookingID: "6", Amount: types.Money{Amount: 13000}})
		fareSet <- err
	}()
	select {
	case err := <-fareSet:
		if err != nil {
			t.Fatalf("set fare: %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		close(feed.release)
		t.Fatal("set fare blocked behind the flight feed")
	}

	close(feed.release)
	if n := <-done; n != 1 {
		t.Fatalf("expected one flight updated, got %d", n)
	}
	got, _ := store.GetBooking(ctx, "6")
	if got.TotalFare.Amount != 13000 || got.Flight.Status != booking.FlightLanded {
		t.Fatalf("expected fare and flight both applied, got fare %v flight %s", got.TotalFare, got.Flight.Status)
	}
}

type nopNotifier struct{}

func (nopNotifier) Dispatch(...notify.Event) {}
