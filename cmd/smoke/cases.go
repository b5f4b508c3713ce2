// README: Smoke cases; lifecycle scenarios over HTTP plus optional Postgres audit and Redis geo checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// bookingID is created by the first scenario and reused by later ones.
	bookingID string
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

type bookingResp struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	DriverID      *string `json:"driver_id"`
	PaymentStatus string  `json:"payment_status"`
	TotalFare     *struct {
		Amount float64 `json:"amount"`
	} `json:"total_fare"`
	Flight *struct {
		Status           string    `json:"status"`
		Terminal         string    `json:"terminal"`
		ScheduledArrival time.Time `json:"scheduled_arrival"`
		EstimatedArrival time.Time `json:"estimated_arrival"`
	} `json:"flight"`
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		start := time.Now()
		res := tc.Run(ctx, r)
		res.Latency = time.Since(start)
		results = append(results, res)
		fmt.Printf("%-5s %s (%s)", res.Status, tc.Name, res.Latency.Round(time.Millisecond))
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Health", Run: func(ctx context.Context, r *Runner) Result {
			code, err := r.call(ctx, http.MethodGet, "/health", nil, nil)
			return expect(code, err, http.StatusOK)
		}},
		{Name: "Scenario 1: request point-to-point booking", Run: scenarioRequest},
		{Name: "Scenario 2: assign driver", Run: scenarioAssign},
		{Name: "Scenario 3: negative fare rejected", Run: scenarioNegativeFare},
		{Name: "Scenario 4: payment link before fare", Run: scenarioPaymentBeforeFare},
		{Name: "Scenario 5: airport pickup flight drift", Run: scenarioFlightDrift},
		{Name: "Unknown booking is 404", Run: func(ctx context.Context, r *Runner) Result {
			code, err := r.call(ctx, http.MethodGet, "/api/bookings/does-not-exist", nil, nil)
			return expect(code, err, http.StatusNotFound)
		}},
		{Name: "Postgres: audit trail recorded", Run: checkAudit},
		{Name: "Redis: driver positions indexed", Run: checkGeoIndex},
	}
}

func scenarioRequest(ctx context.Context, r *Runner) Result {
	var b bookingResp
	code, err := r.call(ctx, http.MethodPost, "/api/bookings", map[string]any{
		"client_id":   r.cfg.ClientID,
		"kind":        "point_to_point",
		"pickup":      "123 Main St",
		"dropoff":     "Airport",
		"pickup_time": time.Now().Add(24 * time.Hour).UTC(),
		"passengers":  2,
	}, &b)
	if res := expect(code, err, http.StatusCreated); res.Status != "PASS" {
		return res
	}
	if b.ID == "" || b.Status != "pending" || b.PaymentStatus != "pending" || b.DriverID != nil {
		return fail("unexpected booking: %+v", b)
	}
	r.bookingID = b.ID
	return Result{Status: "PASS", Note: "id=" + b.ID}
}

func scenarioAssign(ctx context.Context, r *Runner) Result {
	if r.bookingID == "" {
		return Result{Status: "SKIP", Note: "no booking from scenario 1"}
	}
	var b bookingResp
	code, err := r.call(ctx, http.MethodPost, "/api/bookings/"+r.bookingID+"/assign", map[string]any{"driver_id": r.cfg.DriverID}, &b)
	if res := expect(code, err, http.StatusOK); res.Status != "PASS" {
		return res
	}
	if b.Status != "confirmed" || b.DriverID == nil || *b.DriverID != r.cfg.DriverID {
		return fail("unexpected booking: status=%s", b.Status)
	}
	return Result{Status: "PASS"}
}

func scenarioNegativeFare(ctx context.Context, r *Runner) Result {
	if r.bookingID == "" {
		return Result{Status: "SKIP", Note: "no booking from scenario 1"}
	}
	code, err := r.call(ctx, http.MethodPost, "/api/bookings/"+r.bookingID+"/fare", map[string]any{"amount": -5}, nil)
	if res := expect(code, err, http.StatusBadRequest); res.Status != "PASS" {
		return res
	}
	var b bookingResp
	code, err = r.call(ctx, http.MethodGet, "/api/bookings/"+r.bookingID, nil, &b)
	if res := expect(code, err, http.StatusOK); res.Status != "PASS" {
		return res
	}
	if b.TotalFare != nil {
		return fail("fare was stored: %v", b.TotalFare.Amount)
	}
	return Result{Status: "PASS"}
}

func scenarioPaymentBeforeFare(ctx context.Context, r *Runner) Result {
	if r.bookingID == "" {
		return Result{Status: "SKIP", Note: "no booking from scenario 1"}
	}
	code, err := r.call(ctx, http.MethodPost, "/api/bookings/"+r.bookingID+"/payment-link", nil, nil)
	return expect(code, err, http.StatusPreconditionFailed)
}

func scenarioFlightDrift(ctx context.Context, r *Runner) Result {
	var b bookingResp
	code, err := r.call(ctx, http.MethodPost, "/api/bookings", map[string]any{
		"client_id":      r.cfg.ClientID,
		"pickup":         "Logan International Airport",
		"dropoff":        "Four Seasons Hotel Boston",
		"pickup_time":    time.Now().Add(6 * time.Hour).UTC(),
		"passengers":     1,
		"airport_pickup": true,
		"flight_number":  "UA123",
		"airline":        "United",
	}, &b)
	if res := expect(code, err, http.StatusCreated); res.Status != "PASS" {
		return res
	}
	if b.Flight == nil || b.Flight.Status != "scheduled" || b.Flight.Terminal != "TBD" {
		return fail("unexpected initial flight")
	}

	select {
	case <-ctx.Done():
		return fail("timed out waiting for flight tick")
	case <-time.After(r.cfg.FlightWait):
	}

	code, err = r.call(ctx, http.MethodGet, "/api/bookings/"+b.ID, nil, &b)
	if res := expect(code, err, http.StatusOK); res.Status != "PASS" {
		return res
	}
	f := b.Flight
	switch f.Status {
	case "on_time", "en_route", "landed":
	case "delayed":
		if !f.EstimatedArrival.After(f.ScheduledArrival) {
			return fail("delayed flight without later estimate")
		}
	default:
		return fail("flight status %q after tick", f.Status)
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("flight=%s terminal=%s", f.Status, f.Terminal)}
}

func checkAudit(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: "SKIP", Note: "db not configured"}
	}
	if r.bookingID == "" {
		return Result{Status: "SKIP", Note: "no booking from scenario 1"}
	}
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM booking_state_events WHERE booking_id = $1`, r.bookingID).Scan(&n)
	if err != nil {
		return fail("%v", err)
	}
	// request + assign
	if n < 2 {
		return fail("expected at least 2 audit rows, got %d", n)
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("rows=%d", n)}
}

func checkGeoIndex(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: "SKIP", Note: "redis not configured"}
	}
	n, err := r.redis.ZCard(ctx, "fleet:drivers").Result()
	if err != nil {
		return fail("%v", err)
	}
	if n == 0 {
		return fail("no driver positions indexed")
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("drivers=%d", n)}
}

// call sends a JSON request and decodes a 2xx JSON body into out when out is non-nil.
func (r *Runner) call(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode: %w", err)
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func expect(code int, err error, want int) Result {
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if code != want {
		return fail("status=%d, want %d", code, want)
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("status=%d", code)}
}

func fail(format string, args ...any) Result {
	return Result{Status: "FAIL", Note: fmt.Sprintf(format, args...)}
}
