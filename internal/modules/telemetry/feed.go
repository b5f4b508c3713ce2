// README: Position and flight feeds; the random implementations stand in for GPS and flight-data providers.
package telemetry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"limo/internal/modules/booking"
	"limo/internal/types"
)

// PositionFeed yields a driver's next known position.
type PositionFeed interface {
	NextPosition(ctx context.Context, driverID types.ID, current types.Point) (types.Point, error)
}

// FlightUpdate is one observation of a tracked flight.
type FlightUpdate struct {
	Status   booking.FlightStatus
	Terminal string
	Delay    time.Duration
}

type FlightFeed interface {
	NextFlight(ctx context.Context, f booking.FlightInfo) (FlightUpdate, error)
}

// RandomWalk drifts each coordinate by a uniform offset in [-Jitter, +Jitter].
// The walk is unbounded: positions never snap to a destination.
type RandomWalk struct {
	mu     sync.Mutex
	rng    *rand.Rand
	jitter float64
}

func NewRandomWalk(jitter float64, seed int64) *RandomWalk {
	return &RandomWalk{rng: newRand(seed), jitter: jitter}
}

func (w *RandomWalk) NextPosition(_ context.Context, _ types.ID, current types.Point) (types.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return types.Point{
		Lat: current.Lat + (w.rng.Float64()*2-1)*w.jitter,
		Lng: current.Lng + (w.rng.Float64()*2-1)*w.jitter,
	}, nil
}

var (
	flightStatuses = []booking.FlightStatus{
		booking.FlightOnTime,
		booking.FlightDelayed,
		booking.FlightEnRoute,
		booking.FlightLanded,
	}
	terminals = []string{"A", "B", "C", "E"}
)

// RandomFlights resamples status and terminal uniformly on every call. Delayed
// flights get a whole-minute delay in [1, MaxDelay).
type RandomFlights struct {
	mu       sync.Mutex
	rng      *rand.Rand
	maxDelay int
}

func NewRandomFlights(maxDelayMins int, seed int64) *RandomFlights {
	return &RandomFlights{rng: newRand(seed), maxDelay: maxDelayMins}
}

func (r *RandomFlights) NextFlight(_ context.Context, _ booking.FlightInfo) (FlightUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := FlightUpdate{
		Status:   flightStatuses[r.rng.Intn(len(flightStatuses))],
		Terminal: terminals[r.rng.Intn(len(terminals))],
	}
	if u.Status == booking.FlightDelayed {
		mins := 1
		if r.maxDelay > 1 {
			mins += r.rng.Intn(r.maxDelay - 1)
		}
		u.Delay = time.Duration(mins) * time.Minute
	}
	return u, nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
