package booking

import (
	"context"
	"testing"
	"time"
)

func TestSeedSatisfiesInvariants(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := Seed(ctx, store, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	bookings, _ := store.ListBookings(ctx)
	if len(bookings) != 6 {
		t.Fatalf("expected 6 bookings, got %d", len(bookings))
	}
	seen := map[Status]bool{}
	for _, b := range bookings {
		seen[b.Status] = true
		assigned := b.Status == StatusConfirmed || b.Status == StatusInProgress || b.Status == StatusCompleted
		if (b.DriverID != nil) != assigned {
			t.Errorf("booking %s: driver %v with status %s", b.ID, b.DriverID, b.Status)
		}
		if (b.Flight != nil) != b.AirportPickup {
			t.Errorf("booking %s: flight info mismatch", b.ID)
		}
		if b.DriverID != nil {
			if _, err := store.GetDriver(ctx, *b.DriverID); err != nil {
				t.Errorf("booking %s: %v", b.ID, err)
			}
		}
		if _, err := store.GetClient(ctx, b.ClientID); err != nil {
			t.Errorf("booking %s: %v", b.ID, err)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted} {
		if !seen[s] {
			t.Errorf("seed has no %s booking", s)
		}
	}

	if err := Seed(ctx, store, time.Now()); err == nil {
		t.Fatal("seeding twice should fail on duplicate ids")
	}
}
