package gateway

import (
	"embed"
	"net/http"
)

//go:embed assets/offline.html assets/sw.js assets/manifest.webmanifest
var shellFS embed.FS

// fallbackOfflinePage returns the embedded offline page, used when the
// offline route was never cached.
func fallbackOfflinePage() []byte {
	page, err := shellFS.ReadFile("assets/offline.html")
	if err != nil {
		// The file is embedded at build time; a read failure means a
		// broken binary.
		panic("embedded offline page missing: " + err.Error())
	}
	return page
}

// ServeServiceWorker serves the embedded service worker script. The
// script must be served from the root path so the worker can control the
// entire origin.
func (g *Gateway) ServeServiceWorker(w http.ResponseWriter, r *http.Request) {
	script, err := shellFS.ReadFile("assets/sw.js")
	if err != nil {
		g.logger.Error().Err(err).Msg("Embedded service worker missing")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Service-Worker-Allowed", "/")
	w.Write(script)
}

// ServeManifest serves the embedded web app manifest.
func (g *Gateway) ServeManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := shellFS.ReadFile("assets/manifest.webmanifest")
	if err != nil {
		g.logger.Error().Err(err).Msg("Embedded manifest missing")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(manifest)
}
