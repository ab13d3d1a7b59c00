package gateway

import (
	"net/http"
	"strings"
)

// Action is the fetch policy decision for a single request.
type Action int

const (
	// ActionBypass passes the request through untouched: no caching, no
	// offline fallback.
	ActionBypass Action = iota

	// ActionNetworkFirst fetches from the origin, caches the response,
	// and falls back to the cache when the origin is unreachable.
	ActionNetworkFirst
)

// String returns the action name for logging.
func (a Action) String() string {
	switch a {
	case ActionBypass:
		return "bypass"
	case ActionNetworkFirst:
		return "network-first"
	default:
		return "unknown"
	}
}

// RequestInfo is a minimal request descriptor. Policy decisions operate
// on it instead of *http.Request so the decision logic stays a pure
// function.
type RequestInfo struct {
	// Method is the HTTP method.
	Method string

	// Path is the URL path without the query string.
	Path string

	// CrossOrigin is true when the request targets a different host.
	CrossOrigin bool

	// Navigation is true when the request loads a new document.
	Navigation bool
}

// Policy holds the configuration for fetch decisions.
type Policy struct {
	// APIPrefix marks backend API calls, which are always bypassed.
	APIPrefix string
}

// Decide evaluates the fetch policy for a request descriptor.
// Cross-origin requests, non-GET methods, and backend API calls are
// bypassed; everything else is served network-first.
func (p Policy) Decide(info RequestInfo) Action {
	if info.Method != http.MethodGet {
		return ActionBypass
	}
	if info.CrossOrigin {
		return ActionBypass
	}
	if p.APIPrefix != "" && strings.HasPrefix(info.Path, p.APIPrefix) {
		return ActionBypass
	}
	return ActionNetworkFirst
}

// RequestInfoFrom builds a RequestInfo from an incoming request.
// publicHost is the host the gateway serves; an empty publicHost treats
// every request as same-origin.
func RequestInfoFrom(r *http.Request, publicHost string) RequestInfo {
	return RequestInfo{
		Method:      r.Method,
		Path:        r.URL.Path,
		CrossOrigin: publicHost != "" && r.Host != "" && !strings.EqualFold(r.Host, publicHost),
		Navigation:  IsNavigation(r),
	}
}

// IsNavigation reports whether the request loads a new document, as
// opposed to a sub-resource fetch. Browsers mark navigations with
// Sec-Fetch-Mode; the Accept header is the fallback signal.
func IsNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
