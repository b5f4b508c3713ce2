// README: Audit queue tests and the PostgreSQL audit trail integration test.
package booking

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"limo/internal/types"
)

func TestPGAuditLog(t *testing.T) {
	dsn := os.Getenv("LIMO_DB_DSN")
	if dsn == "" {
		t.Skip("LIMO_DB_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("../../../migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	id := newID()
	actor := types.ID("driver-7")
	log := NewPGAuditLog(pool)
	defer pool.Exec(ctx, `DELETE FROM booking_state_events WHERE booking_id = $1`, string(id))

	steps := []Transition{
		{BookingID: id, FromStatus: "", ToStatus: StatusPending, ActorType: "client", CreatedAt: time.Now()},
		{BookingID: id, FromStatus: StatusPending, ToStatus: StatusConfirmed, ActorType: "owner", Note: "assigned", CreatedAt: time.Now()},
		{BookingID: id, FromStatus: StatusConfirmed, ToStatus: StatusInProgress, ActorType: "driver", ActorID: &actor, CreatedAt: time.Now()},
	}
	for _, s := range steps {
		if err := log.Append(ctx, s); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := log.History(ctx, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[2].ActorID == nil || *got[2].ActorID != actor || got[1].Note != "assigned" {
		t.Fatalf("unexpected history %+v", got)
	}
}

func TestAuditQueueDropsWhenFull(t *testing.T) {
	slow := &slowAudit{release: make(chan struct{})}
	queue := NewAuditQueue(slow, 1, time.Second, nil)

	if err := queue.Append(context.Background(), Transition{BookingID: "b1"}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := queue.Append(context.Background(), Transition{BookingID: "b2"}); !errors.Is(err, ErrAuditQueueFull) {
		t.Fatalf("expected ErrAuditQueueFull, got %v", err)
	}
	if queue.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", queue.Pending())
	}
}

func TestAuditQueueFlushesOnShutdown(t *testing.T) {
	audit := &memoryAudit{}
	queue := NewAuditQueue(audit, 4, time.Second, nil)
	for _, id := range []types.ID{"b1", "b2", "b3"} {
		if err := queue.Append(context.Background(), Transition{BookingID: id}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	queue.Run(ctx)

	if len(audit.rows) != 3 || queue.Pending() != 0 {
		t.Fatalf("expected 3 flushed rows, got %d (pending %d)", len(audit.rows), queue.Pending())
	}
}
