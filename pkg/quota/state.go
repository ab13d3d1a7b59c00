// Package quota implements storage quota tracking for the app cache.
// It accounts bytes written into the current cache bucket and gates
// further cache writes before the configured ceiling is hit, so a full
// store degrades to cache-skip behavior instead of failed responses.
package quota

// Redis key layout for quota state storage.
const (
	// redisKeyPrefix namespaces per-bucket usage counters:
	// appcache:quota:<version>:bytes_used
	redisKeyPrefix = "appcache:quota"
)

// usageKey returns the Redis key holding the byte counter for a bucket.
func usageKey(version string) string {
	return redisKeyPrefix + ":" + version + ":bytes_used"
}

// Default quota bounds. Sized for an app shell plus a generous set of
// cached pages; deployments override them via configuration.
const (
	// DefaultMaxBytes blocks further cache writes when usage would exceed it.
	DefaultMaxBytes = 64 << 20 // 64 MiB

	// DefaultWarnBytes triggers warning logs when usage passes it.
	DefaultWarnBytes = 48 << 20 // 48 MiB
)

// State represents the current cache storage quota state.
// This state is shared across all gateway instances via Redis.
type State struct {
	// BytesUsed is the accounted size of the current cache bucket.
	BytesUsed int64 `json:"bytes_used"`

	// MaxBytes is the hard ceiling for cache writes.
	MaxBytes int64 `json:"max_bytes"`

	// WarnBytes is the soft ceiling that triggers warning logs.
	WarnBytes int64 `json:"warn_bytes"`
}

// WouldExceed reports whether writing size more bytes would pass the hard ceiling.
func (s *State) WouldExceed(size int64) bool {
	return s.BytesUsed+size > s.MaxBytes
}

// NeedsWarning reports whether usage has passed the soft ceiling.
func (s *State) NeedsWarning() bool {
	return s.BytesUsed >= s.WarnBytes
}

// Remaining returns the number of bytes left before the hard ceiling.
// Returns 0 when the ceiling has been reached.
func (s *State) Remaining() int64 {
	remaining := s.MaxBytes - s.BytesUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
