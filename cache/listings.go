// Package cache keeps the public active-exchange listing in Redis.  The
// listing is the hottest read the bots issue; everything else goes straight
// to MySQL.  All methods are safe on a nil *Listings or a nil Redis client,
// so callers without Redis simply run uncached.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stp-platform/stp-database/model"
)

// listingKey stores the JSON-encoded public active listing.
const listingKey = "stp:exchanges:active_public"

// Listings is a small read-through cache for the default public listing.
// Cache failures are logged and otherwise ignored: the database remains
// the source of truth.
type Listings struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// New constructs a Listings cache.  rdb may be nil to disable caching.
func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Listings {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Listings{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached listing and whether it was present.
func (l *Listings) Get(ctx context.Context) ([]model.Exchange, bool) {
	if l == nil || l.rdb == nil {
		return nil, false
	}
	raw, err := l.rdb.Get(ctx, listingKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			l.log.Warn("listing cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var out []model.Exchange
	if err := json.Unmarshal(raw, &out); err != nil {
		l.log.Warn("listing cache decode failed", zap.Error(err))
		return nil, false
	}
	return out, true
}

// Set stores the listing for the configured TTL.
func (l *Listings) Set(ctx context.Context, exchanges []model.Exchange) {
	if l == nil || l.rdb == nil {
		return
	}
	raw, err := json.Marshal(exchanges)
	if err != nil {
		l.log.Warn("listing cache encode failed", zap.Error(err))
		return
	}
	if err := l.rdb.Set(ctx, listingKey, raw, l.ttl).Err(); err != nil {
		l.log.Warn("listing cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing.  Called after every exchange
// mutation.
func (l *Listings) Invalidate(ctx context.Context) {
	if l == nil || l.rdb == nil {
		return
	}
	if err := l.rdb.Del(ctx, listingKey).Err(); err != nil {
		l.log.Warn("listing cache invalidation failed", zap.Error(err))
	}
}

// NewRedisClient connects to Redis and verifies the connection with a
// short ping.  It returns nil when the address is empty or the server is
// unreachable; callers should pass the nil client on and run uncached.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
