package cache

import (
	"strings"
)

const (
	// keyPrefix namespaces every cache key in Redis.
	keyPrefix = "appcache"

	// bucketRegistryKey is the Redis set holding every known bucket version.
	bucketRegistryKey = "appcache:buckets"
)

// Key identifies a cached response inside a versioned bucket.
type Key struct {
	// Version is the bucket version tag (e.g. "v1")
	Version string

	// URL is the request URL path including the query string
	// (e.g. "/blog/42?lang=es")
	URL string
}

// String generates a deterministic Redis key string.
// Format: appcache:<version>:<url>
//
// Example:
//
//	appcache:v1:/blog/42?lang=es
func (k Key) String() string {
	url := k.URL
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return keyPrefix + ":" + k.Version + ":" + url
}

// BucketPrefix returns the Redis key prefix shared by every entry of the
// given bucket version.
func BucketPrefix(version string) string {
	return keyPrefix + ":" + version + ":"
}
