package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	pkgredis "github.com/busreserve/bus-reservation/pkg/redis"
)

// RedisSeatCache implements SeatCache using Redis. Reserved seat sets are
// cached with a short TTL and dropped after every successful booking or
// cancellation, so readers see committed state only.
type RedisSeatCache struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// DefaultSeatCacheTTL bounds staleness when an invalidation is lost.
const DefaultSeatCacheTTL = 30 * time.Second

// NewRedisSeatCache creates a new RedisSeatCache. A non-positive ttl falls
// back to DefaultSeatCacheTTL.
func NewRedisSeatCache(client *pkgredis.Client, ttl time.Duration) *RedisSeatCache {
	if ttl <= 0 {
		ttl = DefaultSeatCacheTTL
	}
	return &RedisSeatCache{client: client, ttl: ttl}
}

func seatCacheKey(busID int64) string {
	return fmt.Sprintf("bus:seats:%d", busID)
}

// GetReservedSeats returns the cached seat set and whether it was present
func (c *RedisSeatCache) GetReservedSeats(ctx context.Context, busID int64) ([]int, bool, error) {
	data, err := c.client.Get(ctx, seatCacheKey(busID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read seat cache: %w", err)
	}

	var seats []int
	if err := json.Unmarshal(data, &seats); err != nil {
		// Corrupt entry, treat as a miss.
		return nil, false, nil
	}
	return seats, true, nil
}

// SetReservedSeats stores the seat set for a bus
func (c *RedisSeatCache) SetReservedSeats(ctx context.Context, busID int64, seats []int) error {
	if seats == nil {
		seats = []int{}
	}
	data, err := json.Marshal(seats)
	if err != nil {
		return fmt.Errorf("failed to encode seat cache entry: %w", err)
	}
	if err := c.client.Set(ctx, seatCacheKey(busID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write seat cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached seat set for a bus
func (c *RedisSeatCache) Invalidate(ctx context.Context, busID int64) error {
	if err := c.client.Del(ctx, seatCacheKey(busID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate seat cache: %w", err)
	}
	return nil
}

// Ensure RedisSeatCache implements SeatCache
var _ SeatCache = (*RedisSeatCache)(nil)
