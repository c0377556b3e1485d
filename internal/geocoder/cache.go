package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"jobboard/internal/domain"
)

// Cached memoizes successful lookups in redis. Cache failures are logged and
// fall through to the wrapped geocoder.
type Cached struct {
	next   domain.Geocoder
	client *redis.Client
	ttl    time.Duration
}

func NewCached(next domain.Geocoder, client *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cached{next: next, client: client, ttl: ttl}
}

func cacheKey(address string) string {
	return fmt.Sprintf("geocode:%s", strings.ToLower(strings.Join(strings.Fields(address), " ")))
}

func (c *Cached) Geocode(ctx context.Context, address string) ([]domain.GeoPoint, error) {
	key := cacheKey(address)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var points []domain.GeoPoint
		if jsonErr := json.Unmarshal(data, &points); jsonErr == nil {
			return points, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable geocode cache entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
	}

	points, err := c.next.Geocode(ctx, address)
	if err != nil || len(points) == 0 {
		return points, err
	}

	if data, err := json.Marshal(points); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
		}
	}
	return points, nil
}

// Bounded caps every lookup with a deadline.
type Bounded struct {
	next    domain.Geocoder
	timeout time.Duration
}

func WithTimeout(next domain.Geocoder, timeout time.Duration) domain.Geocoder {
	if timeout <= 0 {
		return next
	}
	return &Bounded{next: next, timeout: timeout}
}

func (b *Bounded) Geocode(ctx context.Context, address string) ([]domain.GeoPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.Geocode(ctx, address)
}
