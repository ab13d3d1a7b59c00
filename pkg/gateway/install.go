package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/turicanje/pwa-gateway/pkg/cache"
)

// Install precaches every manifest asset into the current bucket using a
// bounded worker pool. Any single failure fails the whole install; the
// previously active bucket stays untouched until Activate runs, so a
// failed install leaves the old version in control.
func (g *Gateway) Install(ctx context.Context) error {
	start := time.Now()

	g.logger.Info().
		Int("assets", len(g.config.Manifest)).
		Msg("Installing cache bucket")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	assetQueue := make(chan string, len(g.config.Manifest))
	errCh := make(chan error, g.config.MaxConcurrency)

	for _, asset := range g.config.Manifest {
		assetQueue <- asset
	}
	close(assetQueue)

	var wg sync.WaitGroup
	for i := 0; i < g.config.MaxConcurrency; i++ {
		wg.Add(1)
		go g.installWorker(ctx, cancel, assetQueue, errCh, &wg)
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		g.logger.Error().Err(err).Msg("Install failed")
		return fmt.Errorf("install cache bucket: %w", err)
	}

	g.logger.Info().
		Int("assets", len(g.config.Manifest)).
		Dur("duration", time.Since(start)).
		Msg("Install complete")

	return nil
}

// installWorker prefetches assets from the queue until it drains or a
// failure cancels the install. The first failure cancels the shared
// context so the other workers stop instead of draining the manifest.
func (g *Gateway) installWorker(ctx context.Context, cancel context.CancelFunc, assetQueue <-chan string, errCh chan<- error, wg *sync.WaitGroup) {
	defer wg.Done()

	for asset := range assetQueue {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := g.prefetch(ctx, asset); err != nil {
			select {
			case errCh <- err:
			default:
			}
			cancel()
			return
		}
	}
}

// prefetch fetches a single asset and stores it in the current bucket.
func (g *Gateway) prefetch(ctx context.Context, asset string) error {
	resp, err := g.origin.Get(ctx, asset)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", asset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch %s: unexpected status %d", asset, resp.StatusCode)
	}

	entry, err := cache.ResponseToEntry(resp)
	if err != nil {
		return fmt.Errorf("capture %s: %w", asset, err)
	}

	delta, err := g.cache.Set(ctx, g.cache.Key(asset), entry)
	if err != nil {
		return fmt.Errorf("cache %s: %w", asset, err)
	}

	if g.quota != nil {
		if err := g.quota.Add(ctx, delta); err != nil {
			g.logger.Warn().Err(err).Str("asset", asset).Msg("Failed to account prefetch")
		}
	}

	g.logger.Debug().Str("asset", asset).Int("size", entry.Size()).Msg("Prefetched asset")
	return nil
}

// Activate purges every stale cache bucket and resets quota accounting so
// the new version takes over cleanly. Re-running activation with no stale
// buckets is a no-op.
func (g *Gateway) Activate(ctx context.Context) (int, error) {
	purged, err := g.cache.PurgeStale(ctx)
	if err != nil {
		return purged, fmt.Errorf("purge stale buckets: %w", err)
	}

	if g.quota != nil {
		if err := g.quota.PurgeStale(ctx); err != nil {
			g.logger.Warn().Err(err).Msg("Failed to purge stale quota counters")
		}
	}

	g.logger.Info().
		Int("purged", purged).
		Str("bucket", g.cache.Version()).
		Msg("Activated cache bucket")

	return purged, nil
}
