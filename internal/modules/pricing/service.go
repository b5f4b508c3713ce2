// README: Pricing service computes advisory fare quotes; the operator still sets the fare.
package pricing

import (
	"context"
	"errors"
	"math"
	"time"

	"limo/internal/modules/booking"
	"limo/internal/types"
)

var ErrQuoteUnavailable = errors.New("quote unavailable")

const metersPerMile = 1609.344

// RouteEstimator measures a driving route; maps.RouteService implements it.
type RouteEstimator interface {
	EstimateRoute(ctx context.Context, origin, destination string, waypoints []string) (int, time.Duration, error)
}

type Service struct {
	store  *Store
	routes RouteEstimator
}

// NewService builds a quoting service. routes may be nil, in which case only hourly
// bookings can be quoted.
func NewService(store *Store, routes RouteEstimator) *Service {
	return &Service{store: store, routes: routes}
}

func (s *Service) Quote(ctx context.Context, b *booking.Booking) (Quote, error) {
	rate, err := s.store.GetRate(ctx, b.Kind())
	if err != nil {
		return Quote{}, err
	}

	switch it := b.Itinerary.(type) {
	case booking.Hourly:
		hours := it.DurationHours
		if hours < rate.MinimumHours {
			hours = rate.MinimumHours
		}
		total := int64(hours) * rate.PerHour
		return Quote{
			BookingID: b.ID,
			Kind:      booking.KindHourly,
			Total:     types.Money{Amount: total, Currency: rate.Currency},
			Hours:     hours,
			Breakdown: map[string]int64{"hourly": total},
		}, nil

	case booking.PointToPoint:
		if s.routes == nil {
			return Quote{}, ErrQuoteUnavailable
		}
		meters, dur, err := s.routes.EstimateRoute(ctx, b.Pickup, it.Dropoff, it.Stops)
		if err != nil {
			return Quote{}, errors.Join(ErrQuoteUnavailable, err)
		}
		miles := float64(meters) / metersPerMile
		distance := int64(math.Round(miles * float64(rate.PerMile)))
		return Quote{
			BookingID: b.ID,
			Kind:      booking.KindPointToPoint,
			Total:     types.Money{Amount: rate.BaseFare + distance, Currency: rate.Currency},
			Miles:     miles,
			Duration:  dur,
			Breakdown: map[string]int64{"base": rate.BaseFare, "distance": distance},
		}, nil
	}
	return Quote{}, ErrQuoteUnavailable
}
