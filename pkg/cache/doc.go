// Package cache provides the versioned app-shell response cache with
// Redis backend used by the offline gateway.
//
// Responses are stored in named cache buckets. A bucket is identified by
// a version tag supplied at deploy time; exactly one bucket is current at
// any moment and all others are stale. Activating a new version purges
// every stale bucket.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager for the current version
//	manager := cache.NewManager(redisClient, "v1")
//
//	// Create cache key
//	key := manager.Key("/blog/42?lang=es")
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from origin
//	}
//
// # HTTP Response Caching
//
//	// Convert HTTP response to cache entry
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//
//	// Store in cache; delta is the change in stored bytes
//	delta, err := manager.Set(ctx, key, entry)
//	if err != nil {
//		return err
//	}
//
// # Version Activation
//
//	// Delete every bucket except the current one
//	purged, err := manager.PurgeStale(ctx)
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - appcache_hits_total{bucket} - Cache hits
//   - appcache_misses_total - Cache misses
//   - appcache_size_bytes{bucket} - Cache size
//   - appcache_purged_buckets_total - Stale buckets deleted on activation
//   - appcache_errors_total{operation} - Cache operation errors
package cache
