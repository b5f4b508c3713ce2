// README: Dispatcher hands events to the SMS transport asynchronously; failures become operator notices.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"limo/internal/config"
)

// Sender is the external SMS capability.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

type Dispatcher struct {
	sender  Sender
	queue   chan Event
	workers int
	timeout time.Duration
	log     *slog.Logger
	notices *noticeRing
}

func NewDispatcher(sender Sender, cfg config.NotifyConfig, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan Event, size),
		workers: workers,
		timeout: timeout,
		log:     log,
		notices: newNoticeRing(cfg.NoticeCapacity),
	}
}

// Dispatch enqueues events and returns immediately. A full queue drops the event.
func (d *Dispatcher) Dispatch(events ...Event) {
	for _, e := range events {
		if e.Audience == AudienceOperator || e.Phone == "" {
			d.notices.add(Notice{
				EventID:   e.ID,
				Kind:      e.Kind,
				BookingID: e.BookingID,
				Level:     NoticeInfo,
				Message:   e.Message,
				At:        e.CreatedAt,
			})
			continue
		}
		select {
		case d.queue <- e:
		default:
			d.log.Warn("notification queue full, dropping event",
				"event_id", e.ID, "kind", e.Kind, "booking_id", e.BookingID)
			d.fail(e, fmt.Errorf("queue full"))
		}
	}
}

// Run starts the delivery workers and blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.queue:
			d.deliver(ctx, e)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Send(sendCtx, e.Phone, e.Message); err != nil {
		d.log.Error("notification delivery failed",
			"event_id", e.ID, "kind", e.Kind, "booking_id", e.BookingID, "err", err)
		d.fail(e, err)
		return
	}
	d.log.Debug("notification delivered",
		"event_id", e.ID, "kind", e.Kind, "booking_id", e.BookingID, "latency", time.Since(start))
}

func (d *Dispatcher) fail(e Event, err error) {
	d.notices.add(Notice{
		EventID:   e.ID,
		Kind:      e.Kind,
		BookingID: e.BookingID,
		Level:     NoticeError,
		Message:   fmt.Sprintf("%s to %s not delivered: %v", e.Kind, e.Audience, err),
		At:        time.Now(),
	})
}

// Notices returns up to limit of the most recent operator notices, newest first.
func (d *Dispatcher) Notices(limit int) []Notice {
	return d.notices.recent(limit)
}

// Pending reports how many events are waiting for a worker.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

type noticeRing struct {
	mu    sync.Mutex
	buf   []Notice
	next  int
	count int
}

func newNoticeRing(capacity int) *noticeRing {
	if capacity <= 0 {
		capacity = 100
	}
	return &noticeRing{buf: make([]Notice, capacity)}
}

func (r *noticeRing) add(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = n
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *noticeRing) recent(limit int) []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]Notice, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
