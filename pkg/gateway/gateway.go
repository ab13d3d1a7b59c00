// Package gateway implements the offline cache gateway: a network-first
// fetch layer over the versioned app cache with cache fallback and an
// offline page for navigations.
//
// Each request is classified by a pure policy function. Backend API
// calls, cross-origin requests, and non-GET methods are proxied through
// untouched. Everything else is fetched from the origin; successful
// responses are written into the current cache bucket (best-effort) and
// returned, while origin failures fall back to the last cached copy, the
// offline page, or a synthetic 503.
package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/turicanje/pwa-gateway/pkg/cache"
	"github.com/turicanje/pwa-gateway/pkg/origin"
	"github.com/turicanje/pwa-gateway/pkg/quota"
)

// Config holds the gateway configuration.
type Config struct {
	// APIPrefix marks backend API calls; they are always bypassed.
	APIPrefix string

	// PublicHost is the host the gateway serves. Requests for other
	// hosts are treated as cross-origin and bypassed. Empty means all
	// requests are same-origin.
	PublicHost string

	// Manifest is the fixed set of critical asset URLs precached on
	// install: the app shell route, the offline fallback route, and the
	// icon set.
	Manifest []string

	// OfflinePath is the reserved offline fallback route. It must be
	// part of the manifest so it is available after install.
	OfflinePath string

	// MaxConcurrency bounds parallel prefetches during install.
	MaxConcurrency int
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		APIPrefix:   "/api/",
		OfflinePath: "/offline",
		Manifest: []string{
			"/",
			"/offline",
			"/icons/icon-192.png",
			"/icons/icon-512.png",
		},
		MaxConcurrency: 4,
	}
}

// Gateway serves requests network-first with cache fallback.
type Gateway struct {
	cache  *cache.Manager
	origin *origin.Client
	quota  *quota.Tracker
	proxy  *httputil.ReverseProxy
	policy Policy
	config Config
	logger zerolog.Logger
}

// New creates a new gateway.
func New(cacheManager *cache.Manager, originClient *origin.Client, quotaTracker *quota.Tracker, cfg Config) (*Gateway, error) {
	if cacheManager == nil {
		return nil, fmt.Errorf("cache manager is required")
	}
	if originClient == nil {
		return nil, fmt.Errorf("origin client is required")
	}
	if len(cfg.Manifest) == 0 {
		return nil, fmt.Errorf("cache manifest cannot be empty")
	}
	if cfg.OfflinePath == "" {
		return nil, fmt.Errorf("offline path is required")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}

	originURL, err := url.Parse(originClient.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse origin URL: %w", err)
	}

	logger := log.With().Str("component", "gateway").Str("bucket", cacheManager.Version()).Logger()

	return &Gateway{
		cache:  cacheManager,
		origin: originClient,
		quota:  quotaTracker,
		proxy:  httputil.NewSingleHostReverseProxy(originURL),
		policy: Policy{APIPrefix: cfg.APIPrefix},
		config: cfg,
		logger: logger,
	}, nil
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info := RequestInfoFrom(r, g.config.PublicHost)

	switch g.policy.Decide(info) {
	case ActionBypass:
		g.proxy.ServeHTTP(w, r)
	case ActionNetworkFirst:
		g.serveNetworkFirst(w, r, info)
	}
}

// serveNetworkFirst fetches from the origin, caching successful
// responses. On origin failure it serves the cached copy, the offline
// page for navigations, or a synthetic 503.
func (g *Gateway) serveNetworkFirst(w http.ResponseWriter, r *http.Request, info RequestInfo) {
	ctx := r.Context()
	requestURL := r.URL.RequestURI()

	resp, err := g.origin.Get(ctx, requestURL)
	if err == nil {
		defer resp.Body.Close()

		entry, entryErr := cache.ResponseToEntry(resp)
		if entryErr != nil {
			g.logger.Warn().Err(entryErr).Str("url", requestURL).Msg("Failed to capture response")
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		// Cache write is best-effort: a failure must never fail the
		// response delivery.
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			g.storeEntry(r, requestURL, entry)
		}

		if err := cache.WriteEntry(w, entry); err != nil {
			g.logger.Debug().Err(err).Str("url", requestURL).Msg("Failed to write response")
		}
		return
	}

	g.logger.Debug().Err(err).Str("url", requestURL).Msg("Origin unreachable, consulting cache")

	entry, cacheErr := g.cache.Get(ctx, g.cache.Key(requestURL))
	if cacheErr == nil {
		if err := cache.WriteEntry(w, entry); err != nil {
			g.logger.Debug().Err(err).Str("url", requestURL).Msg("Failed to write cached response")
		}
		return
	}
	if cacheErr != cache.ErrCacheMiss {
		g.logger.Warn().Err(cacheErr).Str("url", requestURL).Msg("Cache lookup failed")
	}

	if info.Navigation {
		g.serveOffline(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("Offline"))
}

// storeEntry writes an entry into the current bucket, gated by the
// storage quota. Failures are logged and swallowed.
func (g *Gateway) storeEntry(r *http.Request, requestURL string, entry *cache.Entry) {
	ctx := r.Context()

	if g.quota != nil {
		allowed, err := g.quota.ShouldAllowWrite(ctx, int64(entry.Size()))
		if err != nil {
			g.logger.Warn().Err(err).Msg("Quota check failed, skipping cache write")
			return
		}
		if !allowed {
			return
		}
	}

	delta, err := g.cache.Set(ctx, g.cache.Key(requestURL), entry)
	if err != nil {
		g.logger.Warn().Err(err).Str("url", requestURL).Msg("Failed to cache response")
		return
	}

	if g.quota != nil {
		if err := g.quota.Add(ctx, delta); err != nil {
			g.logger.Warn().Err(err).Msg("Failed to account cache write")
		}
	}

	g.logger.Debug().Str("url", requestURL).Int("size", entry.Size()).Msg("Cached response")
}

// serveOffline serves the reserved offline fallback page for a failed
// navigation: the cached offline route when present, the embedded page
// as last resort.
func (g *Gateway) serveOffline(w http.ResponseWriter, r *http.Request) {
	entry, err := g.cache.Get(r.Context(), g.cache.Key(g.config.OfflinePath))
	if err == nil {
		if werr := cache.WriteEntry(w, entry); werr != nil {
			g.logger.Debug().Err(werr).Msg("Failed to write offline page")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write(fallbackOfflinePage())
}
