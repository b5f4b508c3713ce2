// README: Booking repository contract and its in-memory implementation with per-record locks.
package booking

import (
	"context"
	"errors"
	"sync"

	"limo/internal/types"
)

var ErrDuplicateID = errors.New("duplicate id")

// Mutation merges fields into the stored record. Returning an error aborts the update
// and leaves the record untouched.
type Mutation func(b *Booking) error

type DriverMutation func(d *Driver) error

// Store owns all entity state. Reads return copies; writes go through the mutation
// callbacks, which run while the record is locked.
type Store interface {
	CreateBooking(ctx context.Context, b *Booking) error
	GetBooking(ctx context.Context, id types.ID) (*Booking, error)
	ListBookings(ctx context.Context) ([]*Booking, error)
	UpdateBooking(ctx context.Context, id types.ID, fn Mutation) (*Booking, error)

	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id types.ID) (*Client, error)
	ListClients(ctx context.Context) ([]*Client, error)

	CreateDriver(ctx context.Context, d *Driver) error
	GetDriver(ctx context.Context, id types.ID) (*Driver, error)
	ListDrivers(ctx context.Context) ([]*Driver, error)
	UpdateDriver(ctx context.Context, id types.ID, fn DriverMutation) (*Driver, error)
}

type bookingEntry struct {
	mu sync.Mutex
	b  *Booking
}

type driverEntry struct {
	mu sync.Mutex
	d  *Driver
}

// MemoryStore keeps records for the lifetime of the process. The store lock only guards
// the indexes; record contents are guarded by the record's own mutex, and no method
// holds more than one record lock at a time.
type MemoryStore struct {
	mu           sync.RWMutex
	bookings     map[types.ID]*bookingEntry
	bookingOrder []types.ID
	clients      map[types.ID]Client
	clientOrder  []types.ID
	drivers      map[types.ID]*driverEntry
	driverOrder  []types.ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[types.ID]*bookingEntry),
		clients:  make(map[types.ID]Client),
		drivers:  make(map[types.ID]*driverEntry),
	}
}

func (s *MemoryStore) CreateBooking(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return ErrDuplicateID
	}
	s.bookings[b.ID] = &bookingEntry{b: b.Clone()}
	s.bookingOrder = append(s.bookingOrder, b.ID)
	return nil
}

func (s *MemoryStore) lookupBooking(id types.ID) (*bookingEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.bookings[id]
	return e, ok
}

func (s *MemoryStore) GetBooking(_ context.Context, id types.ID) (*Booking, error) {
	e, ok := s.lookupBooking(id)
	if !ok {
		return nil, notFound("booking", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.b.Clone(), nil
}

func (s *MemoryStore) ListBookings(_ context.Context) ([]*Booking, error) {
	s.mu.RLock()
	entries := make([]*bookingEntry, 0, len(s.bookingOrder))
	for _, id := range s.bookingOrder {
		entries = append(entries, s.bookings[id])
	}
	s.mu.RUnlock()

	out := make([]*Booking, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.b.Clone())
		e.mu.Unlock()
	}
	return out, nil
}

func (s *MemoryStore) UpdateBooking(_ context.Context, id types.ID, fn Mutation) (*Booking, error) {
	e, ok := s.lookupBooking(id)
	if !ok {
		return nil, notFound("booking", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.b.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.b = next
	return next.Clone(), nil
}

func (s *MemoryStore) CreateClient(_ context.Context, c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; ok {
		return ErrDuplicateID
	}
	s.clients[c.ID] = *c
	s.clientOrder = append(s.clientOrder, c.ID)
	return nil
}

func (s *MemoryStore) GetClient(_ context.Context, id types.ID) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	return &c, nil
}

func (s *MemoryStore) ListClients(_ context.Context) ([]*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(s.clientOrder))
	for _, id := range s.clientOrder {
		c := s.clients[id]
		out = append(out, &c)
	}
	return out, nil
}

func (s *MemoryStore) CreateDriver(_ context.Context, d *Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[d.ID]; ok {
		return ErrDuplicateID
	}
	s.drivers[d.ID] = &driverEntry{d: d.Clone()}
	s.driverOrder = append(s.driverOrder, d.ID)
	return nil
}

func (s *MemoryStore) lookupDriver(id types.ID) (*driverEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.drivers[id]
	return e, ok
}

func (s *MemoryStore) GetDriver(_ context.Context, id types.ID) (*Driver, error) {
	e, ok := s.lookupDriver(id)
	if !ok {
		return nil, notFound("driver", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.d.Clone(), nil
}

func (s *MemoryStore) ListDrivers(_ context.Context) ([]*Driver, error) {
	s.mu.RLock()
	entries := make([]*driverEntry, 0, len(s.driverOrder))
	for _, id := range s.driverOrder {
		entries = append(entries, s.drivers[id])
	}
	s.mu.RUnlock()

	out := make([]*Driver, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.d.Clone())
		e.mu.Unlock()
	}
	return out, nil
}

func (s *MemoryStore) UpdateDriver(_ context.Context, id types.ID, fn DriverMutation) (*Driver, error) {
	e, ok := s.lookupDriver(id)
	if !ok {
		return nil, notFound("driver", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.d.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.d = next
	return next.Clone(), nil
}
