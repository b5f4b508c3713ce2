package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"limo/internal/modules/booking"
	"limo/internal/modules/location"
	"limo/internal/modules/notify"
	"limo/internal/types"
)

type staticNotices []notify.Notice

func (s staticNotices) Notices(limit int) []notify.Notice {
	if limit > 0 && limit < len(s) {
		return s[:limit]
	}
	return s
}

func newTestGateway(t *testing.T, now time.Time) (*Service, *booking.MemoryStore) {
	t.Helper()
	store := booking.NewMemoryStore()
	if err := booking.Seed(context.Background(), store, now); err != nil {
		t.Fatalf("seed: %v", err)
	}
	notices := staticNotices{{Kind: notify.KindDriverUnassigned, Message: "a"}, {Kind: notify.KindDriverAssigned, Message: "b"}}
	return NewService(store, notices, location.NewService(store, nil, nil)), store
}

func ids(bs []*booking.Booking) []types.ID {
	out := make([]types.ID, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestListBookingsSortedByPickup(t *testing.T) {
	svc, _ := newTestGateway(t, time.Now())
	got, err := svc.ListBookings(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 bookings, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].PickupTime.Before(got[i-1].PickupTime) {
			t.Fatalf("not sorted by pickup: %v", ids(got))
		}
	}
}

func TestListBookingsFilters(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestGateway(t, now)
	ctx := context.Background()
	tomorrow := now.AddDate(0, 0, 1)

	cases := []struct {
		name string
		f    Filter
		want []types.ID
	}{
		{"by date", Filter{Date: &tomorrow}, []types.ID{"1", "6"}},
		{"by driver", Filter{DriverID: "1"}, []types.ID{"4", "1"}},
		{"by client", Filter{ClientID: "1"}, []types.ID{"1", "6", "3"}},
		{"by status", Filter{Status: booking.StatusPending}, []types.ID{"3"}},
		{"by payment", Filter{PaymentStatus: booking.PaymentPending}, []types.ID{"3"}},
		{"combined", Filter{DriverID: "2", Status: booking.StatusInProgress}, []types.ID{"2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.ListBookings(ctx, tc.f)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tc.want) {
				t.Fatalf("got %v, want %v", gotIDs, tc.want)
			}
			for i := range gotIDs {
				if gotIDs[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", gotIDs, tc.want)
				}
			}
		})
	}
}

func TestDriverTripsCompletedLast(t *testing.T) {
	svc, _ := newTestGateway(t, time.Now())
	got, err := svc.DriverTrips(context.Background(), "1")
	if err != nil {
		t.Fatalf("trips: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Fatalf("expected completed trip last, got %v", ids(got))
	}

	if _, err := svc.DriverTrips(context.Background(), "ghost"); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientBookings(t *testing.T) {
	svc, _ := newTestGateway(t, time.Now())
	got, err := svc.ClientBookings(context.Background(), "2")
	if err != nil {
		t.Fatalf("client bookings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 bookings for client 2, got %v", ids(got))
	}
	// Seed pickups for client 2: #5 in three days, #2 today, #4 yesterday.
	want := []types.ID{"5", "2", "4"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected latest pickup first %v, got %v", want, ids(got))
		}
	}
	if _, err := svc.ClientBookings(context.Background(), "ghost"); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	svc, store := newTestGateway(t, time.Now())
	ctx := context.Background()
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Bookings) != 6 || len(snap.Drivers) != 3 || len(snap.Clients) != 2 || snap.TakenAt.IsZero() {
		t.Fatalf("unexpected snapshot sizes %d/%d/%d", len(snap.Bookings), len(snap.Drivers), len(snap.Clients))
	}

	snap.Drivers[0].Position.Lat = 0
	d, _ := store.GetDriver(ctx, snap.Drivers[0].ID)
	if d.Position.Lat == 0 {
		t.Fatal("snapshot aliases the stored driver")
	}
}

func TestNearbyAndNotices(t *testing.T) {
	svc, _ := newTestGateway(t, time.Now())
	near, err := svc.NearbyDrivers(context.Background(), types.Point{Lat: 42.3601, Lng: -71.0589}, 1)
	if err != nil || len(near) == 0 || near[0].DriverID != "1" {
		t.Fatalf("unexpected nearby %+v %v", near, err)
	}
	if got := svc.Notices(1); len(got) != 1 || got[0].Message != "a" {
		t.Fatalf("unexpected notices %+v", got)
	}
}
