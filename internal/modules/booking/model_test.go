// README: State machine table and snapshot isolation tests.
package booking

import (
	"testing"
	"time"

	"limo/internal/types"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// forward flow
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		// unassignment
		{StatusConfirmed, StatusPending, true},
		// cancellation from every non-terminal state
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},
		// terminal states have no outgoing edges
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		// skipping
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, false},
		{StatusInProgress, StatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("in_progress"); !ok || s != StatusInProgress {
		t.Fatalf("ParseStatus(in_progress) = %q, %v", s, ok)
	}
	if _, ok := ParseStatus("driving"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if p, ok := ParsePaymentStatus("paid"); !ok || p != PaymentPaid {
		t.Fatalf("ParsePaymentStatus(paid) = %q, %v", p, ok)
	}
}

func TestHourlyDropoffLabel(t *testing.T) {
	b := &Booking{Itinerary: Hourly{DurationHours: 4}}
	if got := b.Dropoff(); got != "As Directed for 4 hours" {
		t.Fatalf("unexpected dropoff label %q", got)
	}
	if b.Kind() != KindHourly {
		t.Fatalf("unexpected kind %s", b.Kind())
	}
}

func TestBookingCloneIsDeep(t *testing.T) {
	driverID := types.ID("d1")
	fare := types.Money{Amount: 100, Currency: "USD"}
	now := time.Now()
	reason := "weather"
	orig := &Booking{
		ID:           "b1",
		DriverID:     &driverID,
		Itinerary:    PointToPoint{Stops: []string{"a", "b"}, Dropoff: "c"},
		Flight:       &FlightInfo{Status: FlightScheduled, Terminal: TerminalTBD},
		TotalFare:    &fare,
		ConfirmedAt:  &now,
		CancelReason: &reason,
	}

	cp := orig.Clone()
	*cp.DriverID = "d2"
	cp.Itinerary.(PointToPoint).Stops[0] = "x"
	cp.Flight.Terminal = "A"
	cp.TotalFare.Amount = 999
	*cp.ConfirmedAt = now.Add(time.Hour)
	*cp.CancelReason = "changed"

	if *orig.DriverID != "d1" {
		t.Fatal("driver id aliased")
	}
	if orig.Itinerary.(PointToPoint).Stops[0] != "a" {
		t.Fatal("stops aliased")
	}
	if orig.Flight.Terminal != TerminalTBD {
		t.Fatal("flight aliased")
	}
	if orig.TotalFare.Amount != 100 {
		t.Fatal("fare aliased")
	}
	if !orig.ConfirmedAt.Equal(now) {
		t.Fatal("timestamp aliased")
	}
	if *orig.CancelReason != "weather" {
		t.Fatal("reason aliased")
	}
}

func TestDriverCloneIsDeep(t *testing.T) {
	d := &Driver{ID: "d1", Position: &types.Point{Lat: 1, Lng: 2}}
	cp := d.Clone()
	cp.Position.Lat = 50
	if d.Position.Lat != 1 {
		t.Fatal("position aliased")
	}
}
