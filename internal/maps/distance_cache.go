package maps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"petlove/internal/observability"
	"petlove/internal/types"
)

const DefaultDistanceTTL = 24 * time.Hour

// DistanceProvider is implemented by RouteService and StraightLine.
type DistanceProvider interface {
	DrivingDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error)
}

// CachedDistance memoises driving distances in Redis. Redis failures fall
// through to the wrapped provider.
type CachedDistance struct {
	next DistanceProvider
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedDistance(next DistanceProvider, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedDistance {
	if ttl <= 0 {
		ttl = DefaultDistanceTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedDistance{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedDistance) DrivingDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error) {
	key := distanceKey(origin, destination)

	val, err := c.rdb.Get(ctx, key).Float64()
	switch {
	case err == nil:
		observability.DistanceCacheTotal.WithLabelValues("hit").Inc()
		return val, nil
	case errors.Is(err, redis.Nil):
		observability.DistanceCacheTotal.WithLabelValues("miss").Inc()
	default:
		observability.DistanceCacheTotal.WithLabelValues("error").Inc()
		c.log.WarnContext(ctx, "distance cache read failed", "key", key, "error", err)
	}

	km, err := c.next.DrivingDistanceKm(ctx, origin, destination)
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "distance cache write failed", "key", key, "error", err)
	}
	return km, nil
}

// distanceKey rounds to 5 decimals (about a metre) so repeated picks of the
// same spot share an entry.
func distanceKey(origin, destination types.Point) string {
	return fmt.Sprintf("petlove:distance:%.5f,%.5f:%.5f,%.5f", origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}
