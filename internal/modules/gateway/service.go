// README: Read surface for dashboards: independent snapshots of bookings, drivers and clients.
package gateway

import (
	"context"
	"sort"
	"time"

	"limo/internal/modules/booking"
	"limo/internal/modules/location"
	"limo/internal/modules/notify"
	"limo/internal/types"
)

type Filter struct {
	// Date keeps bookings whose pickup falls on the same calendar day, in Date's location.
	Date          *time.Time
	DriverID      types.ID
	ClientID      types.ID
	Status        booking.Status
	PaymentStatus booking.PaymentStatus
}

func (f Filter) match(b *booking.Booking) bool {
	if f.Date != nil {
		y1, m1, d1 := f.Date.Date()
		y2, m2, d2 := b.PickupTime.In(f.Date.Location()).Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	if f.DriverID != "" && !b.HasDriver(f.DriverID) {
		return false
	}
	if f.ClientID != "" && b.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
		return false
	}
	return true
}

type Snapshot struct {
	Bookings []*booking.Booking
	Drivers  []*booking.Driver
	Clients  []*booking.Client
	TakenAt  time.Time
}

type NoticeSource interface {
	Notices(limit int) []notify.Notice
}

type Nearby interface {
	NearbyDrivers(ctx context.Context, p types.Point, radiusKm float64) ([]location.DriverLocation, error)
}

type Service struct {
	store   booking.Store
	notices NoticeSource
	nearby  Nearby
}

func NewService(store booking.Store, notices NoticeSource, nearby Nearby) *Service {
	return &Service{store: store, notices: notices, nearby: nearby}
}

// ListBookings returns matching bookings ordered by pickup time.
func (s *Service) ListBookings(ctx context.Context, f Filter) ([]*booking.Booking, error) {
	all, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*booking.Booking, 0, len(all))
	for _, b := range all {
		if f.match(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PickupTime.Before(out[j].PickupTime)
	})
	return out, nil
}

func (s *Service) ListDrivers(ctx context.Context) ([]*booking.Driver, error) {
	return s.store.ListDrivers(ctx)
}

func (s *Service) ListClients(ctx context.Context) ([]*booking.Client, error) {
	return s.store.ListClients(ctx)
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{TakenAt: time.Now()}
	var err error
	if snap.Bookings, err = s.ListBookings(ctx, Filter{}); err != nil {
		return Snapshot{}, err
	}
	if snap.Drivers, err = s.store.ListDrivers(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Clients, err = s.store.ListClients(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// DriverTrips lists a driver's trips with completed ones last.
func (s *Service) DriverTrips(ctx context.Context, driverID types.ID) ([]*booking.Booking, error) {
	if _, err := s.store.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	trips, err := s.ListBookings(ctx, Filter{DriverID: driverID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trips, func(i, j int) bool {
		ci := trips[i].Status == booking.StatusCompleted
		cj := trips[j].Status == booking.StatusCompleted
		return !ci && cj
	})
	return trips, nil
}

// ClientBookings lists a client's bookings, latest pickup first.
func (s *Service) ClientBookings(ctx context.Context, clientID types.ID) ([]*booking.Booking, error) {
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	bookings, err := s.ListBookings(ctx, Filter{ClientID: clientID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].PickupTime.After(bookings[j].PickupTime)
	})
	return bookings, nil
}

func (s *Service) NearbyDrivers(ctx context.Context, p types.Point, radiusKm float64) ([]location.DriverLocation, error) {
	if s.nearby == nil {
		return nil, nil
	}
	return s.nearby.NearbyDrivers(ctx, p, radiusKm)
}

func (s *Service) Notices(limit int) []notify.Notice {
	if s.notices == nil {
		return nil
	}
	return s.notices.Notices(limit)
}
