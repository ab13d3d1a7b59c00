package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager handles bucket cache operations with Redis backend.
// All writes go to the current bucket; reads never cross bucket versions.
type Manager struct {
	redis   *redis.Client
	version string
}

// NewManager creates a new cache manager bound to the given bucket version.
func NewManager(redisClient *redis.Client, version string) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if version == "" {
		panic("bucket version cannot be empty")
	}
	return &Manager{
		redis:   redisClient,
		version: version,
	}
}

// Version returns the current bucket version tag.
func (m *Manager) Version() string {
	return m.version
}

// Key builds a cache key for the given request URL in the current bucket.
func (m *Manager) Key(url string) Key {
	return Key{Version: m.version, URL: url}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues(m.version).Inc()
	return &entry, nil
}

// Set stores a cache entry in the current bucket, overwriting any previous
// entry for the same URL. The bucket version is recorded in the bucket
// registry so PurgeStale can enumerate buckets later.
//
// The return value is the change in stored bytes: the new entry's size
// minus the size of the entry it replaced (zero for a fresh key). An
// overwrite therefore accounts only its growth, never the full entry
// again.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) (int64, error) {
	if entry == nil {
		return 0, fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return 0, fmt.Errorf("marshal cache entry: %w", err)
	}

	pipe := m.redis.TxPipeline()
	prevLen := pipe.StrLen(ctx, key.String())
	pipe.Set(ctx, key.String(), data, 0)
	pipe.SAdd(ctx, bucketRegistryKey, key.Version)
	if _, err := pipe.Exec(ctx); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return 0, fmt.Errorf("redis set: %w", err)
	}

	delta := int64(len(data)) - prevLen.Val()
	CacheSize.WithLabelValues(m.version).Add(float64(delta))
	return delta, nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Buckets returns every bucket version known to the registry, current
// included.
func (m *Manager) Buckets(ctx context.Context) ([]string, error) {
	buckets, err := m.redis.SMembers(ctx, bucketRegistryKey).Result()
	if err != nil {
		CacheErrors.WithLabelValues("buckets").Inc()
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return buckets, nil
}

// PurgeStale deletes every bucket whose version differs from the current
// one and returns the number of buckets removed. Calling it again with no
// stale buckets left is a no-op.
func (m *Manager) PurgeStale(ctx context.Context) (int, error) {
	buckets, err := m.Buckets(ctx)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, bucket := range buckets {
		if bucket == m.version {
			continue
		}
		if err := m.deleteBucket(ctx, bucket); err != nil {
			CacheErrors.WithLabelValues("purge").Inc()
			return purged, fmt.Errorf("purge bucket %s: %w", bucket, err)
		}
		purged++
		PurgedBuckets.Inc()
		CacheSize.WithLabelValues(bucket).Set(0)
	}

	return purged, nil
}

// deleteBucket removes every entry of a bucket plus its registry record.
func (m *Manager) deleteBucket(ctx context.Context, version string) error {
	iter := m.redis.Scan(ctx, 0, BucketPrefix(version)+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := m.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}

	if err := m.redis.SRem(ctx, bucketRegistryKey, version).Err(); err != nil {
		return fmt.Errorf("redis srem: %w", err)
	}
	return nil
}
