// Package metrics provides the centralized Prometheus metrics registry
// for the PWA gateway. All metrics are defined in their respective
// packages (gateway, cache, origin, quota, push) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the gateway.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - appcache_hits_total{bucket} (Counter): Cache hits by bucket version
//   - appcache_misses_total (Counter): Cache misses
//   - appcache_size_bytes{bucket} (Gauge): Current cache size in bytes
//   - appcache_purged_buckets_total (Counter): Stale buckets deleted on activation
//   - appcache_errors_total{operation} (Counter): Cache operation errors
//
// Quota Metrics (pkg/quota):
//   - appcache_quota_bytes_used{bucket} (Gauge): Accounted bucket size in bytes
//   - appcache_quota_blocked_writes_total (Counter): Cache writes skipped over quota
//
// Origin Metrics (pkg/origin):
//   - origin_requests_total{path, status} (Counter): Origin requests by path and status
//   - origin_request_duration_seconds{path} (Histogram): Origin request duration
//   - origin_errors_total{class} (Counter): Errors by class (client, server, network)
//   - origin_retries_total{error_class} (Counter): Retry attempts by error class
//   - origin_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - origin_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Push Metrics (pkg/push):
//   - push_operations_total{operation, outcome} (Counter): Subscribe/unsubscribe outcomes
//   - push_errors_total{kind} (Counter): Push errors by kind
