package book

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/asmelnik/bookvault/internal/platform/constants"
	"github.com/asmelnik/bookvault/internal/platform/ctxutil"
)

// RedisCache is a best-effort read-through cache for single-book fetches.
// Every fault degrades to a cache miss; the database stays authoritative.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (cache *RedisCache) GetBook(ctx context.Context, id string) (*Book, bool) {
	payload, err := cache.client.Get(ctx, bookKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			ctxutil.GetLogger(ctx).Debug("book_cache_get_failed", slog.Any("error", err))
		}
		return nil, false
	}

	b := &Book{}
	if err := json.Unmarshal(payload, b); err != nil {
		// Corrupt entry; drop it so the next read repopulates.
		cache.InvalidateBook(ctx, id)
		return nil, false
	}

	return b, true
}

func (cache *RedisCache) SetBook(ctx context.Context, b *Book) {
	payload, err := json.Marshal(b)
	if err != nil {
		return
	}

	if err := cache.client.Set(ctx, bookKey(b.ID), payload, constants.BookCacheTTL).Err(); err != nil {
		ctxutil.GetLogger(ctx).Debug("book_cache_set_failed", slog.Any("error", err))
	}
}

func (cache *RedisCache) InvalidateBook(ctx context.Context, id string) {
	if err := cache.client.Del(ctx, bookKey(id)).Err(); err != nil {
		ctxutil.GetLogger(ctx).Debug("book_cache_del_failed", slog.Any("error", err))
	}
}

func bookKey(id string) string {
	return constants.RedisPrefixBook + id
}
