// README: Smoke runner; drives the booking lifecycle scenarios against a running API and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	runner := NewRunner(cfg)
	results := runner.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "PASS":
			pass++
		case "FAIL":
			fail++
		case "SKIP":
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL    string
	Token      string
	DSN        string
	RedisAddr  string
	ClientID   string
	DriverID   string
	FlightWait time.Duration
	Strict     bool
	Timeout    time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("LIMO_API_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&cfg.Token, "token", os.Getenv("LIMO_API_TOKEN"), "Bearer token with the owner role (empty when auth is disabled)")
	flag.StringVar(&cfg.DSN, "dsn", os.Getenv("LIMO_DB_DSN"), "Postgres DSN for the audit check")
	flag.StringVar(&cfg.RedisAddr, "redis", os.Getenv("LIMO_REDIS_ADDR"), "Redis address for the geo index check")
	flag.StringVar(&cfg.ClientID, "client", envOrDefault("LIMO_SMOKE_CLIENT", "1"), "Existing client id")
	flag.StringVar(&cfg.DriverID, "driver", envOrDefault("LIMO_SMOKE_DRIVER", "1"), "Existing driver id")
	flag.DurationVar(&cfg.FlightWait, "flight-wait", envOrDefaultDuration("LIMO_SMOKE_FLIGHT_WAIT", 6*time.Second), "How long to wait for a flight tick")
	flag.BoolVar(&cfg.Strict, "strict", envOrDefaultBool("LIMO_SMOKE_STRICT", false), "Fail on skipped checks")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("LIMO_SMOKE_TIMEOUT", 60*time.Second), "Total timeout")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "1" || v == "true" || v == "yes"
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
