package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/fincore/internal/platform/db"
)

const (
	cachePrefix = "fincore:accounts"
	loadTimeout = 5 * time.Second
)

// CachedDirectory keeps resolved accounts in Redis. Concurrent misses for
// the same key share one lookup. Lookup failures are never cached and Redis
// failures fall through to the wrapped directory.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachedDirectory wraps next with a Redis cache.
func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

// Get resolves an account by id.
func (c *CachedDirectory) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	key := cacheKey("id", id.String())
	return c.fetch(ctx, key, func(ctx context.Context) (Account, error) {
		return c.next.Get(ctx, id)
	})
}

// FindBySubtype resolves an account by (type, subtype).
func (c *CachedDirectory) FindBySubtype(ctx context.Context, orgID uuid.UUID, typ Type, subtype string) (Account, error) {
	key := cacheKey("subtype", orgID.String(), string(typ), subtype)
	return c.fetch(ctx, key, func(ctx context.Context) (Account, error) {
		return c.next.FindBySubtype(ctx, orgID, typ, subtype)
	})
}

// Invalidate drops every cached account.
func (c *CachedDirectory) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, cachePrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *CachedDirectory) fetch(ctx context.Context, key string, load func(context.Context) (Account, error)) (Account, error) {
	if c.client == nil {
		return load(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var acc Account
		if jsonErr := json.Unmarshal(payload, &acc); jsonErr == nil {
			return acc, nil
		}
		c.logger.Warn("account cache entry unreadable", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("account cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	// The shared load reads committed rows on the pool, outside any caller's
	// transaction and independent of the first caller's cancellation.
	resCh := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(db.Detach(ctx), loadTimeout)
		defer cancel()
		acc, err := load(loadCtx)
		if err != nil {
			return Account{}, err
		}
		if raw, err := json.Marshal(acc); err == nil {
			if err := c.client.Set(loadCtx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("account cache write failed", slog.String("key", key), slog.Any("error", err))
			}
		}
		return acc, nil
	})
	select {
	case <-ctx.Done():
		return Account{}, ctx.Err()
	case res := <-resCh:
		if res.Err != nil {
			return Account{}, res.Err
		}
		return res.Val.(Account), nil
	}
}

func cacheKey(parts ...string) string {
	return cachePrefix + ":" + strings.Join(parts, ":")
}
