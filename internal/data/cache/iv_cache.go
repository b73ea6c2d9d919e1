// Package cache provides a Redis read-through layer for IV context
// lookups. Cache failures fall through to the source; the cache can only
// make lookups cheaper, never break them.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/quantgate/quantgate/internal/data"
)

const keyPrefix = "quantgate:iv:"

// CachedIVRepository decorates an IVRepository with a Redis cache.
type CachedIVRepository struct {
	source data.IVRepository
	client *redis.Client
	ttl    time.Duration
}

// New builds the decorator. TTL of zero defaults to 15 minutes, matching
// the staleness tolerance of intraday IV rank.
func New(source data.IVRepository, client *redis.Client, ttl time.Duration) *CachedIVRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedIVRepository{source: source, client: client, ttl: ttl}
}

// NewClient builds a Redis client with the pool and timeout settings used
// across the project.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// IVContext serves from Redis when possible, otherwise from the source,
// refreshing the cache on the way out.
func (c *CachedIVRepository) IVContext(ctx context.Context, symbol string) (data.IVContext, error) {
	key := keyPrefix + symbol

	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached data.IVContext
		if jsonErr := json.Unmarshal(payload, &cached); jsonErr == nil {
			return cached, nil
		}
		// Corrupt entry: drop it and refetch.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("iv cache read failed, falling through")
	}

	ivCtx, err := c.source.IVContext(ctx, symbol)
	if err != nil {
		return data.IVContext{}, err
	}

	if payload, marshalErr := json.Marshal(ivCtx); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			log.Warn().Err(setErr).Str("symbol", symbol).Msg("iv cache write failed")
		}
	}
	return ivCtx, nil
}
