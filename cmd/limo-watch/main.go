// README: Terminal board; polls the API snapshot and prints live trips, driver positions and flights.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"limo/internal/config"
	"limo/internal/infra"
	"limo/internal/modules/gateway"
)

type point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type boardBooking struct {
	ID            string  `json:"id"`
	DriverID      *string `json:"driver_id"`
	Pickup        string  `json:"pickup"`
	Dropoff       string  `json:"dropoff"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Flight        *struct {
		FlightNumber     string    `json:"flight_number"`
		Status           string    `json:"status"`
		EstimatedArrival time.Time `json:"estimated_arrival"`
		Terminal         string    `json:"terminal"`
	} `json:"flight"`
}

type boardDriver struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position *point `json:"position"`
}

type board struct {
	Bookings []boardBooking `json:"bookings"`
	Drivers  []boardDriver  `json:"drivers"`
	TakenAt  time.Time      `json:"taken_at"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := infra.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 5 * time.Second}
	fetch := func(ctx context.Context) (board, error) {
		return fetchBoard(ctx, client, cfg.Poll.BaseURL, cfg.Poll.Token)
	}
	poller := gateway.NewPoller(cfg.Poll.Interval, fetch, render, logger)

	logger.Info("watching", "api", cfg.Poll.BaseURL, "every", cfg.Poll.Interval)
	poller.Run(ctx)
}

func fetchBoard(ctx context.Context, client *http.Client, baseURL, token string) (board, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/snapshot", nil)
	if err != nil {
		return board{}, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return board{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return board{}, fmt.Errorf("snapshot: status %d", resp.StatusCode)
	}
	var b board
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return board{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return b, nil
}

func render(b board) {
	counts := make(map[string]int)
	for _, bk := range b.Bookings {
		counts[bk.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = fmt.Sprintf("%s=%d", s, counts[s])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n== %s  %s\n", b.TakenAt.Local().Format("15:04:05"), strings.Join(parts, " "))

	drivers := make(map[string]boardDriver, len(b.Drivers))
	for _, d := range b.Drivers {
		drivers[d.ID] = d
	}
	for _, bk := range b.Bookings {
		if bk.Status != "in_progress" || bk.DriverID == nil {
			continue
		}
		d := drivers[*bk.DriverID]
		pos := "position unknown"
		if d.Position != nil {
			pos = fmt.Sprintf("%.5f,%.5f", d.Position.Lat, d.Position.Lng)
		}
		fmt.Fprintf(&sb, "  trip #%s  %s  %s -> %s  [%s]\n", bk.ID, d.Name, bk.Pickup, bk.Dropoff, pos)
	}
	for _, bk := range b.Bookings {
		if f := bk.Flight; f != nil && bk.Status != "completed" {
			fmt.Fprintf(&sb, "  flight %s  %-9s terminal %s  eta %s  (#%s)\n",
				f.FlightNumber, f.Status, f.Terminal, f.EstimatedArrival.Local().Format("Jan 2 15:04"), bk.ID)
		}
	}
	fmt.Print(sb.String())
}
