package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/turicanje/pwa-gateway/pkg/cache"
	_ "github.com/turicanje/pwa-gateway/pkg/origin"
	_ "github.com/turicanje/pwa-gateway/pkg/push"
	_ "github.com/turicanje/pwa-gateway/pkg/quota"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

// TestGatewayMetricsRegistered verifies that importing the gateway's
// packages registers their promauto metric families on the default
// registry. Vector metrics only surface after their first label use, so
// the check covers each family's plain counters.
func TestGatewayMetricsRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	registered := make(map[string]bool, len(families))
	for _, family := range families {
		registered[family.GetName()] = true
	}

	expected := []string{
		"appcache_misses_total",
		"appcache_purged_buckets_total",
		"appcache_quota_blocked_writes_total",
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("Expected metric %q to be registered", name)
		}
	}
}
