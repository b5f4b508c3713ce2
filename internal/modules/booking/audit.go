// README: Booking transition audit trail backed by PostgreSQL, written off the request path.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"limo/internal/types"
)

// AuditLog records transitions. The dispatch engine calls Append inline, so implementations
// handed to WithAudit must not block; wrap slow stores in an AuditQueue.
type AuditLog interface {
	Append(ctx context.Context, t Transition) error
}

var ErrAuditQueueFull = errors.New("audit queue full")

// AuditQueue buffers transitions for a slower AuditLog and writes them on a background worker.
type AuditQueue struct {
	sink    AuditLog
	queue   chan Transition
	timeout time.Duration
	log     *slog.Logger
}

func NewAuditQueue(sink AuditLog, size int, timeout time.Duration, log *slog.Logger) *AuditQueue {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuditQueue{sink: sink, queue: make(chan Transition, size), timeout: timeout, log: log}
}

// Append enqueues t and returns immediately. A full queue drops the row.
func (q *AuditQueue) Append(_ context.Context, t Transition) error {
	select {
	case q.queue <- t:
		return nil
	default:
		q.log.Warn("audit queue full, dropping transition", "booking_id", t.BookingID, "to", t.ToStatus)
		return ErrAuditQueueFull
	}
}

// Run writes queued rows until ctx is cancelled, then flushes what is already queued.
func (q *AuditQueue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			q.flush()
			return
		case t := <-q.queue:
			q.write(ctx, t)
		}
	}
}

func (q *AuditQueue) flush() {
	for {
		select {
		case t := <-q.queue:
			q.write(context.Background(), t)
		default:
			return
		}
	}
}

// write outlives shutdown so rows dequeued after cancellation still land, bounded by timeout.
func (q *AuditQueue) write(ctx context.Context, t Transition) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()
	if err := q.sink.Append(writeCtx, t); err != nil {
		q.log.Error("audit write failed", "booking_id", t.BookingID, "to", t.ToStatus, "err", err)
	}
}

// Pending reports how many rows are waiting to be written.
func (q *AuditQueue) Pending() int {
	return len(q.queue)
}

type PGAuditLog struct {
	db *pgxpool.Pool
}

func NewPGAuditLog(db *pgxpool.Pool) *PGAuditLog {
	return &PGAuditLog{db: db}
}

func (a *PGAuditLog) Append(ctx context.Context, t Transition) error {
	_, err := a.db.Exec(ctx, `
        INSERT INTO booking_state_events (
            booking_id, from_status, to_status, actor_type, actor_id, note, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(t.BookingID),
		string(t.FromStatus),
		string(t.ToStatus),
		t.ActorType,
		toStringPtr(t.ActorID),
		t.Note,
		t.CreatedAt,
	)
	return err
}

// History returns a booking's audited transitions, oldest first.
func (a *PGAuditLog) History(ctx context.Context, bookingID types.ID) ([]Transition, error) {
	rows, err := a.db.Query(ctx, `
        SELECT booking_id, from_status, to_status, actor_type, actor_id, note, created_at
        FROM booking_state_events
        WHERE booking_id = $1
        ORDER BY id`, string(bookingID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var (
			t         Transition
			bookingID string
			from, to  string
			actorID   *string
			createdAt time.Time
		)
		if err := rows.Scan(&bookingID, &from, &to, &t.ActorType, &actorID, &t.Note, &createdAt); err != nil {
			return nil, err
		}
		t.BookingID = types.ID(bookingID)
		t.FromStatus = Status(from)
		t.ToStatus = Status(to)
		t.CreatedAt = createdAt
		if actorID != nil {
			id := types.ID(*actorID)
			t.ActorID = &id
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
