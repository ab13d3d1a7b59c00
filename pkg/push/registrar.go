package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Preference is the per-user notification category stored by the push
// service.
type Preference string

const (
	// PreferenceTodo delivers every notification category.
	PreferenceTodo Preference = "todo"

	// PreferencePuntos limits notifications to points activity.
	PreferencePuntos Preference = "puntos"

	// PreferenceNegocios limits notifications to business updates.
	PreferenceNegocios Preference = "negocios"

	// PreferencePausado pauses all notifications without unsubscribing.
	PreferencePausado Preference = "pausado"
)

// Valid reports whether the preference is one of the known categories.
func (p Preference) Valid() bool {
	switch p {
	case PreferenceTodo, PreferencePuntos, PreferenceNegocios, PreferencePausado:
		return true
	default:
		return false
	}
}

// Service paths of the external push registration API.
const (
	pathSubscriptions = "/push/subscriptions"
	pathDeregister    = "/push/subscriptions/remove"
	pathPreference    = "/push/preference"
)

// Registrar is the HTTP client for the external push registration
// service. Every call carries the caller's bearer token; the service
// keys registration records by the subscription's endpoint URL.
type Registrar struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewRegistrar creates a registration client for the given service base URL.
func NewRegistrar(baseURL string) (*Registrar, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("registration service URL is required")
	}

	logger := log.With().Str("component", "push-registrar").Logger()

	return &Registrar{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (r *Registrar) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// Register stores a subscription record for the user.
func (r *Registrar) Register(ctx context.Context, token string, userID int64, sub *Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription cannot be nil")
	}

	body := map[string]any{
		"user_id":      userID,
		"subscription": sub,
	}
	return r.post(ctx, token, pathSubscriptions, body)
}

// Deregister removes the registration record identified by the
// subscription endpoint.
func (r *Registrar) Deregister(ctx context.Context, token, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("subscription endpoint is required")
	}

	body := map[string]any{
		"endpoint": endpoint,
	}
	return r.post(ctx, token, pathDeregister, body)
}

// Preference reads the user's notification category.
func (r *Registrar) Preference(ctx context.Context, token string) (Preference, error) {
	req, err := r.newRequest(ctx, http.MethodGet, pathPreference, token, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("preference request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var payload struct {
		Preference Preference `json:"preference"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode preference response: %w", err)
	}
	if !payload.Preference.Valid() {
		return "", fmt.Errorf("unknown preference %q", payload.Preference)
	}

	return payload.Preference, nil
}

// SetPreference writes the user's notification category.
func (r *Registrar) SetPreference(ctx context.Context, token string, pref Preference) error {
	if !pref.Valid() {
		return fmt.Errorf("invalid preference %q", pref)
	}

	data, err := json.Marshal(map[string]Preference{"preference": pref})
	if err != nil {
		return fmt.Errorf("marshal preference: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPut, pathPreference, token, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("set preference request: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// post sends a JSON body to a service path and checks the status.
func (r *Registrar) post(ctx context.Context, token, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, path, token, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registration request: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (r *Registrar) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// checkStatus maps a non-2xx response to an error.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("push service returned status %d", resp.StatusCode)
}
