/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var errCacheMiss = errors.New("cache miss")

type cacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct {
	client *redis.Client
}

func newRedisStore(ctx context.Context, addr string) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &redisStore{client: client}, nil
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}

	return val, err
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisStore) Close() error {
	return r.client.Close()
}

// cachedSource serves category details from a cache where it can, and
// collapses concurrent lookups of the same category into one upstream request.
// The random pool is always fetched upstream.
type cachedSource struct {
	cfg   *Config
	next  TriviaSource
	store cacheStore
	ttl   time.Duration
	group singleflight.Group
}

func newCachedSource(cfg *Config, next TriviaSource, store cacheStore) *cachedSource {
	return &cachedSource{
		cfg:   cfg,
		next:  next,
		store: store,
		ttl:   cfg.cacheTTL,
	}
}

func categoryKey(id int64) string {
	return "jeopardy:category:" + strconv.FormatInt(id, 10)
}

func (c *cachedSource) RandomCategoryIDs(ctx context.Context, count int) ([]int64, error) {
	return c.next.RandomCategoryIDs(ctx, count)
}

func (c *cachedSource) Category(ctx context.Context, id int64) (*RawCategory, error) {
	key := categoryKey(id)

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var category RawCategory
		if err := json.Unmarshal(data, &category); err == nil {
			logf(c.cfg, "CACHE: Hit for category %d", id)

			return &category, nil
		}

		logf(c.cfg, "CACHE: Discarding unreadable entry for category %d", id)
	case !errors.Is(err, errCacheMiss):
		logf(c.cfg, "CACHE: Lookup for category %d failed: %v", id, err)
	}

	// The shared fetch outlives any one caller; the api client bounds it with its own timeout.
	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		category, err := c.next.Category(fetchCtx, id)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(category); err == nil {
			if err := c.store.Set(fetchCtx, key, data, c.ttl); err != nil {
				logf(c.cfg, "CACHE: Storing category %d failed: %v", id, err)
			}
		}

		return category, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	return res.Val.(*RawCategory), nil
}
