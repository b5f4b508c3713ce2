// README: Location service answers proximity queries from Redis GEO, or from the fleet snapshot without Redis.
package location

import (
	"context"
	"log/slog"

	"limo/internal/modules/booking"
	"limo/internal/types"
)

// DriverLister is the read side of the booking repository this service needs.
type DriverLister interface {
	ListDrivers(ctx context.Context) ([]*booking.Driver, error)
}

type Service struct {
	drivers DriverLister
	geo     *RedisStore
	log     *slog.Logger
}

// NewService builds a proximity service. geo may be nil.
func NewService(drivers DriverLister, geo *RedisStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{drivers: drivers, geo: geo, log: log}
}

// Sync mirrors every known driver position into Redis, typically once at start-up.
// Members left behind by drivers that are gone or have no position are removed.
func (s *Service) Sync(ctx context.Context) error {
	if s.geo == nil {
		return nil
	}
	drivers, err := s.drivers.ListDrivers(ctx)
	if err != nil {
		return err
	}
	positioned := make(map[types.ID]bool, len(drivers))
	for _, d := range drivers {
		if d.Position == nil {
			continue
		}
		positioned[d.ID] = true
		if err := s.geo.PublishPosition(ctx, d.ID, *d.Position); err != nil {
			return err
		}
	}

	members, err := s.geo.Members(ctx)
	if err != nil {
		return err
	}
	for _, id := range members {
		if positioned[id] {
			continue
		}
		if err := s.geo.Remove(ctx, id); err != nil {
			return err
		}
		s.log.Info("removed stale driver position", "driver_id", id)
	}
	return nil
}

func (s *Service) NearbyDrivers(ctx context.Context, p types.Point, radiusKm float64) ([]DriverLocation, error) {
	drivers, err := s.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[types.ID]string, len(drivers))
	for _, d := range drivers {
		names[d.ID] = d.Name
	}

	if s.geo != nil {
		found, err := s.geo.Nearby(ctx, p, radiusKm)
		if err == nil {
			for i := range found {
				found[i].Name = names[found[i].DriverID]
			}
			return found, nil
		}
		s.log.Warn("redis nearby search failed, using snapshot", "err", err)
	}

	var out []DriverLocation
	for _, d := range drivers {
		if d.Position == nil {
			continue
		}
		dist := haversineKm(p, *d.Position)
		if dist > radiusKm {
			continue
		}
		out = append(out, DriverLocation{
			DriverID:   d.ID,
			Name:       d.Name,
			Position:   *d.Position,
			DistanceKm: dist,
		})
	}
	sortByDistance(out, func(d DriverLocation) float64 { return d.DistanceKm })
	return out, nil
}
