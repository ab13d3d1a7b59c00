package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/turicanje/pwa-gateway/pkg/cache"
	"github.com/turicanje/pwa-gateway/pkg/gateway"
	"github.com/turicanje/pwa-gateway/pkg/logging"
	"github.com/turicanje/pwa-gateway/pkg/origin"
	"github.com/turicanje/pwa-gateway/pkg/quota"
)

func main() {
	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	originURL := getEnv("ORIGIN_URL", "http://localhost:3000")
	apiPrefix := getEnv("API_PREFIX", "/api/")
	cacheVersion := getEnv("CACHE_VERSION", "v1")
	vapidPublicKey := getEnv("VAPID_PUBLIC_KEY", "")
	pushAPIURL := getEnv("PUSH_API_URL", "")
	maxCacheBytes := getEnvInt64("CACHE_MAX_BYTES", quota.DefaultMaxBytes)
	warnCacheBytes := getEnvInt64("CACHE_WARN_BYTES", quota.DefaultWarnBytes)

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	// Ping Redis
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")

	// Build the gateway stack
	cacheManager := cache.NewManager(redisClient, cacheVersion)
	quotaTracker := quota.NewTracker(redisClient, cacheVersion, maxCacheBytes, warnCacheBytes, logging.NewLogger("quota"))

	originClient, err := origin.New(origin.DefaultConfig(originURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create origin client")
	}

	gwConfig := gateway.DefaultConfig()
	gwConfig.APIPrefix = apiPrefix

	gw, err := gateway.New(cacheManager, originClient, quotaTracker, gwConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create gateway")
	}

	// Precache the manifest, then drop stale buckets. An install failure
	// skips activation and serving continues network-first; the current
	// bucket fills as requests succeed.
	installCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	if err := gw.Install(installCtx); err != nil {
		logger.Warn().Err(err).Str("bucket", cacheVersion).Msg("Cache install failed, serving without precache")
	} else {
		purged, err := gw.Activate(installCtx)
		if err != nil {
			logger.Warn().Err(err).Msg("Cache activation failed")
		} else {
			logger.Info().Str("bucket", cacheVersion).Int("purged_buckets", purged).Msg("Cache installed and activated")
		}
	}

	// HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(redisClient))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/sw.js", gw.ServeServiceWorker)
	mux.HandleFunc("/manifest.webmanifest", gw.ServeManifest)
	mux.HandleFunc("/push/config", pushConfigHandler(vapidPublicKey, pushAPIURL))
	mux.Handle("/", gw)

	addr := ":" + port
	logger.Info().Str("addr", addr).Str("origin", originURL).Str("bucket", cacheVersion).Msg("Starting PWA gateway")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, fmt.Sprintf("Redis unavailable: %v", err), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// pushConfigHandler exposes the push configuration the web client needs
// to subscribe: the VAPID public key and the registration API base URL.
func pushConfigHandler(vapidPublicKey, pushAPIURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"vapid_public_key": vapidPublicKey,
			"push_api_url":     pushAPIURL,
		})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
