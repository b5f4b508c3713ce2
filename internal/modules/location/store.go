// README: Live driver positions mirrored into a Redis GEO set.
package location

import (
	"context"

	"github.com/redis/go-redis/v9"

	"limo/internal/types"
)

const driverGeoKey = "fleet:drivers"

type RedisStore struct {
	redis *redis.Client
	key   string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{redis: rdb, key: driverGeoKey}
}

// PublishPosition upserts a driver's position; the telemetry simulator calls it on every move.
func (s *RedisStore) PublishPosition(ctx context.Context, id types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, s.key, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

// Members lists every driver id currently in the GEO set.
func (s *RedisStore) Members(ctx context.Context) ([]types.ID, error) {
	names, err := s.redis.ZRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]types.ID, len(names))
	for i, n := range names {
		out[i] = types.ID(n)
	}
	return out, nil
}

func (s *RedisStore) Remove(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, s.key, string(id)).Err()
}

// Nearby returns drivers within radiusKm of p, closest first.
func (s *RedisStore) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]DriverLocation, error) {
	results, err := s.redis.GeoSearchLocation(ctx, s.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DriverLocation, len(results))
	for i, r := range results {
		out[i] = DriverLocation{
			DriverID:   types.ID(r.Name),
			Position:   types.Point{Lat: r.Latitude, Lng: r.Longitude},
			DistanceKm: r.Dist,
		}
	}
	return out, nil
}
