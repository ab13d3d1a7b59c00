package quota

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	cacheQuotaBytesUsed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "appcache_quota_bytes_used",
		Help: "Accounted size of the cache bucket in bytes",
	}, []string{"bucket"})

	cacheQuotaBlockedWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appcache_quota_blocked_writes_total",
		Help: "Total number of cache writes skipped due to the storage quota",
	})
)

// Tracker monitors storage usage of one cache bucket and gates cache
// writes. Usage counters are per bucket version, so a new version starts
// from zero and stale counters disappear with PurgeStale.
type Tracker struct {
	redis     *redis.Client
	version   string
	maxBytes  int64
	warnBytes int64
	logger    zerolog.Logger
}

// NewTracker creates a quota tracker for the given bucket version. Zero
// bounds fall back to the package defaults.
func NewTracker(redisClient *redis.Client, version string, maxBytes, warnBytes int64, logger zerolog.Logger) *Tracker {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if warnBytes <= 0 || warnBytes > maxBytes {
		warnBytes = maxBytes * 3 / 4
	}
	return &Tracker{
		redis:     redisClient,
		version:   version,
		maxBytes:  maxBytes,
		warnBytes: warnBytes,
		logger:    logger,
	}
}

// GetState retrieves the current quota state from Redis.
// Returns a zero-usage state if no data exists yet.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	used, err := t.redis.Get(ctx, usageKey(t.version)).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get bytes used: %w", err)
	}

	return &State{
		BytesUsed: used,
		MaxBytes:  t.maxBytes,
		WarnBytes: t.warnBytes,
	}, nil
}

// ShouldAllowWrite checks if a cache write of the given size fits within
// the quota. Returns false when the write would pass the hard ceiling; the
// caller skips the write and serves the response uncached.
func (t *Tracker) ShouldAllowWrite(ctx context.Context, size int64) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.WouldExceed(size) {
		t.logger.Warn().
			Int64("bytes_used", state.BytesUsed).
			Int64("write_size", size).
			Int64("max_bytes", state.MaxBytes).
			Msg("Cache storage quota reached - skipping cache write")

		cacheQuotaBlockedWritesTotal.Inc()
		return false, nil
	}

	if state.NeedsWarning() {
		t.logger.Warn().
			Int64("bytes_used", state.BytesUsed).
			Int64("remaining", state.Remaining()).
			Msg("Cache storage quota warning threshold passed")
	}

	return true, nil
}

// Add records a change in stored bucket bytes. Cache writes report their
// delta, so overwriting an already-cached URL accounts only its growth;
// a shrinking overwrite passes a negative size.
func (t *Tracker) Add(ctx context.Context, size int64) error {
	used, err := t.redis.IncrBy(ctx, usageKey(t.version), size).Result()
	if err != nil {
		return fmt.Errorf("increment bytes used: %w", err)
	}

	cacheQuotaBytesUsed.WithLabelValues(t.version).Set(float64(used))
	return nil
}

// Reset clears the accounted usage for this bucket.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.redis.Del(ctx, usageKey(t.version)).Err(); err != nil {
		return fmt.Errorf("reset bytes used: %w", err)
	}

	cacheQuotaBytesUsed.WithLabelValues(t.version).Set(0)
	return nil
}

// PurgeStale deletes usage counters of every bucket other than this one.
// Called on version activation alongside the cache bucket purge.
func (t *Tracker) PurgeStale(ctx context.Context) error {
	iter := t.redis.Scan(ctx, 0, redisKeyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if key == usageKey(t.version) {
			continue
		}
		if err := t.redis.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("delete stale quota key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan quota keys: %w", err)
	}
	return nil
}
