// README: Rate card held in memory, built from configuration.
package pricing

import (
	"context"
	"errors"
	"sync"

	"limo/internal/config"
	"limo/internal/modules/booking"
	"limo/internal/types"
)

var ErrNoRate = errors.New("no rate for booking kind")

type Store struct {
	mu    sync.RWMutex
	rates map[booking.Kind]Rate
}

func NewStore(cfg config.PricingConfig) *Store {
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}
	minor := func(v float64) int64 { return types.MoneyFromMajor(v, currency).Amount }
	return &Store{rates: map[booking.Kind]Rate{
		booking.KindHourly: {
			Kind:         booking.KindHourly,
			PerHour:      minor(cfg.HourlyRate),
			MinimumHours: cfg.MinimumHours,
			Currency:     currency,
		},
		booking.KindPointToPoint: {
			Kind:     booking.KindPointToPoint,
			BaseFare: minor(cfg.BaseFare),
			PerMile:  minor(cfg.PerMile),
			Currency: currency,
		},
	}}
}

func (s *Store) GetRate(_ context.Context, kind booking.Kind) (Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[kind]
	if !ok {
		return Rate{}, ErrNoRate
	}
	return r, nil
}

func (s *Store) SetRate(_ context.Context, r Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.Kind] = r
}
