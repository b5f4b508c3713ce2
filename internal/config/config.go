// README: Config loader with env defaults for HTTP, storage, telemetry, notification and pricing settings.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type TelemetryConfig struct {
	PositionTick   time.Duration
	FlightTick     time.Duration
	PositionJitter float64 // max drift per tick, degrees
	MaxDelayMins   int
	Seed           int64 // 0 means time-seeded
}

type NotifyConfig struct {
	Transport      string // log | redis | fcm
	Brand          string
	PaymentBaseURL string
	QueueSize      int
	Workers        int
	SendTimeout    time.Duration
	NoticeCapacity int
	RedisQueueKey  string
}

type DispatchConfig struct {
	Currency       string
	Brand          string
	PaymentBaseURL string
	TimeLayout     string
	AuditQueueSize int
	AuditTimeout   time.Duration
}

type PricingConfig struct {
	Currency     string
	HourlyRate   float64
	MinimumHours int
	BaseFare     float64
	PerMile      float64
}

type Config struct {
	HTTP struct {
		Addr        string
		CORSOrigins []string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	Maps struct {
		APIKey string
	}
	Log struct {
		Level string
	}
	Telemetry TelemetryConfig
	Notify    NotifyConfig
	Dispatch  DispatchConfig
	Pricing   PricingConfig
	Poll      struct {
		BaseURL  string
		Interval time.Duration
		Token    string
	}
	Seed struct {
		Demo bool
	}
}

func Load() (Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("LIMO_HTTP_ADDR", ":8080")
	cfg.HTTP.CORSOrigins = envOrDefaultList("LIMO_CORS_ORIGINS", []string{"*"})
	cfg.DB.DSN = os.Getenv("LIMO_DB_DSN")
	cfg.Redis.Addr = os.Getenv("LIMO_REDIS_ADDR")
	cfg.Firebase.ProjectID = os.Getenv("LIMO_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("LIMO_FIREBASE_CREDENTIALS")
	cfg.Maps.APIKey = os.Getenv("LIMO_MAPS_API_KEY")
	cfg.Log.Level = envOrDefault("LIMO_LOG_LEVEL", "info")

	cfg.Telemetry.PositionTick = envOrDefaultDuration("LIMO_POSITION_TICK", 3*time.Second)
	cfg.Telemetry.FlightTick = envOrDefaultDuration("LIMO_FLIGHT_TICK", 5*time.Second)
	cfg.Telemetry.PositionJitter = envOrDefaultFloat("LIMO_POSITION_JITTER_DEG", 0.0025)
	cfg.Telemetry.MaxDelayMins = envOrDefaultInt("LIMO_FLIGHT_MAX_DELAY_MINS", 60)
	cfg.Telemetry.Seed = int64(envOrDefaultInt("LIMO_TELEMETRY_SEED", 0))

	brand := envOrDefault("LIMO_BRAND", "WAYNE LIMO")
	payURL := strings.TrimRight(envOrDefault("LIMO_PAYMENT_BASE_URL", "https://pay.wayne-limo.com/booking"), "/")

	cfg.Notify.Transport = envOrDefault("LIMO_NOTIFY_TRANSPORT", "log")
	cfg.Notify.Brand = brand
	cfg.Notify.PaymentBaseURL = payURL
	cfg.Notify.QueueSize = envOrDefaultInt("LIMO_NOTIFY_QUEUE", 256)
	cfg.Notify.Workers = envOrDefaultInt("LIMO_NOTIFY_WORKERS", 2)
	cfg.Notify.SendTimeout = envOrDefaultDuration("LIMO_NOTIFY_TIMEOUT", 5*time.Second)
	cfg.Notify.NoticeCapacity = envOrDefaultInt("LIMO_NOTICE_CAPACITY", 100)
	cfg.Notify.RedisQueueKey = envOrDefault("LIMO_NOTIFY_REDIS_KEY", "notify:sms")

	cfg.Dispatch.Currency = envOrDefault("LIMO_CURRENCY", "USD")
	cfg.Dispatch.Brand = brand
	cfg.Dispatch.PaymentBaseURL = payURL
	cfg.Dispatch.TimeLayout = envOrDefault("LIMO_TIME_LAYOUT", "Jan 2, 2006 3:04 PM")
	cfg.Dispatch.AuditQueueSize = envOrDefaultInt("LIMO_AUDIT_QUEUE", 256)
	cfg.Dispatch.AuditTimeout = envOrDefaultDuration("LIMO_AUDIT_TIMEOUT", 5*time.Second)

	cfg.Pricing.Currency = cfg.Dispatch.Currency
	cfg.Pricing.HourlyRate = envOrDefaultFloat("LIMO_HOURLY_RATE", 120)
	cfg.Pricing.MinimumHours = envOrDefaultInt("LIMO_MIN_HOURS", 2)
	cfg.Pricing.BaseFare = envOrDefaultFloat("LIMO_BASE_FARE", 45)
	cfg.Pricing.PerMile = envOrDefaultFloat("LIMO_PER_MILE", 4.5)

	cfg.Poll.BaseURL = strings.TrimRight(envOrDefault("LIMO_API_URL", "http://localhost:8080"), "/")
	cfg.Poll.Interval = envOrDefaultDuration("LIMO_POLL_INTERVAL", 3*time.Second)
	cfg.Poll.Token = os.Getenv("LIMO_API_TOKEN")

	cfg.Seed.Demo = envOrDefaultBool("LIMO_SEED_DEMO", true)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
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

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
