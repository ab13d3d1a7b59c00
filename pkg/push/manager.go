package push

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for subscription lifecycle operations.
var (
	pushOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_operations_total",
		Help: "Total push subscription operations by operation and outcome",
	}, []string{"operation", "outcome"})

	pushErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_errors_total",
		Help: "Total push subscription errors by kind",
	}, []string{"kind"})
)

// ErrorKind classifies a failed subscription operation.
type ErrorKind string

const (
	// KindUnsupported means the platform cannot deliver push at all.
	KindUnsupported ErrorKind = "unsupported-platform"

	// KindPermissionDenied means the user denied (or had denied)
	// notification permission.
	KindPermissionDenied ErrorKind = "permission-denied"

	// KindRegistrationFailed means the worker registration threw.
	KindRegistrationFailed ErrorKind = "registration-failed"

	// KindSubscriptionFailed means platform subscription creation or
	// cancellation threw.
	KindSubscriptionFailed ErrorKind = "subscription-failed"

	// KindBackendRejected means the registration service returned a
	// non-2xx response.
	KindBackendRejected ErrorKind = "backend-rejected"
)

// Result is the outcome of a Subscribe or Unsubscribe operation. Errors
// are reported as values; nothing is thrown past the manager boundary.
type Result struct {
	OK      bool
	Kind    ErrorKind
	Message string
}

// State is the externally visible subscription state.
type State struct {
	// Supported is false when the platform lacks push capability; all
	// operations are then no-ops.
	Supported bool

	// Permission is the current notification permission.
	Permission Permission

	// Subscribed is true when an active platform subscription exists
	// and the backend holds a matching record.
	Subscribed bool

	// Loading is true while an operation is in flight. Callers are
	// expected to disable the triggering control; the manager does not
	// queue concurrent operations.
	Loading bool

	// Err is the last operation's failure message, empty after a
	// success.
	Err string
}

// Manager drives the permission and subscription state machine and keeps
// the remote registration record in sync.
type Manager struct {
	platform  Platform
	registrar *Registrar
	vapidKey  []byte
	logger    zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewManager creates a subscription manager and probes the platform for
// support, current permission, and an existing subscription. The VAPID
// public key is supplied in its URL-safe base64 transport form.
func NewManager(platform Platform, registrar *Registrar, vapidPublicKey string) (*Manager, error) {
	vapidKey, err := DecodeVAPIDKey(vapidPublicKey)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		platform:  platform,
		registrar: registrar,
		vapidKey:  vapidKey,
		logger:    log.With().Str("component", "push-manager").Logger(),
	}

	m.probe()
	return m, nil
}

// probe populates the initial state from the platform.
func (m *Manager) probe() {
	if m.platform == nil || !m.platform.Supported() {
		m.state = State{Supported: false, Permission: PermissionDefault}
		m.logger.Info().Msg("Push notifications unsupported on this platform")
		return
	}

	m.state.Supported = true
	m.state.Permission = m.platform.Permission()

	// Ask the existing registration (if any) for a live subscription.
	// Probe failures are not fatal; the state just starts unsubscribed.
	sub, err := m.platform.Subscription(context.Background())
	if err != nil {
		m.logger.Warn().Err(err).Msg("Subscription probe failed")
		return
	}
	m.state.Subscribed = sub != nil && m.state.Permission == PermissionGranted

	m.logger.Debug().
		Str("permission", string(m.state.Permission)).
		Bool("subscribed", m.state.Subscribed).
		Msg("Push state probed")
}

// State returns a snapshot of the current subscription state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe requests permission if needed, creates a platform push
// subscription with the application's VAPID key, and registers it with
// the backend for the given user.
//
// A permanently denied permission aborts immediately without prompting.
// If the backend call fails after the platform subscription was created,
// the platform subscription is left in place so a retry can re-register
// without re-subscribing.
func (m *Manager) Subscribe(ctx context.Context, userID int64, token string) Result {
	m.setLoading(true)
	defer m.setLoading(false)

	if !m.State().Supported {
		return m.fail("subscribe", KindUnsupported, "push notifications are not supported on this platform")
	}

	permission := m.platform.Permission()

	// Never re-prompt a user who blocked notifications; the platform
	// will not show the prompt and the UI must present blocked
	// messaging instead.
	if permission == PermissionDenied {
		m.setPermission(permission)
		return m.fail("subscribe", KindPermissionDenied, "notification permission is blocked")
	}

	if permission == PermissionDefault {
		requested, err := m.platform.RequestPermission(ctx)
		if err != nil {
			return m.fail("subscribe", KindSubscriptionFailed, "request permission: "+err.Error())
		}
		permission = requested
	}

	m.setPermission(permission)
	if permission != PermissionGranted {
		return m.fail("subscribe", KindPermissionDenied, "notification permission was not granted")
	}

	if err := m.platform.EnsureRegistration(ctx); err != nil {
		return m.fail("subscribe", KindRegistrationFailed, "register worker: "+err.Error())
	}

	sub, err := m.platform.Subscribe(ctx, m.vapidKey)
	if err != nil {
		return m.fail("subscribe", KindSubscriptionFailed, "create subscription: "+err.Error())
	}

	if m.registrar != nil {
		if err := m.registrar.Register(ctx, token, userID, sub); err != nil {
			// Accepted leak: the platform subscription stays so the
			// caller can retry registration without re-subscribing.
			return m.fail("subscribe", KindBackendRejected, "register subscription: "+err.Error())
		}
	}

	m.mu.Lock()
	m.state.Subscribed = true
	m.state.Err = ""
	m.mu.Unlock()

	pushOperationsTotal.WithLabelValues("subscribe", "ok").Inc()
	m.logger.Info().Int64("user_id", userID).Msg("Push subscription registered")

	return Result{OK: true}
}

// Unsubscribe cancels the platform subscription and removes the backend
// registration record by endpoint. A missing platform subscription is
// treated as already-unsubscribed.
func (m *Manager) Unsubscribe(ctx context.Context, token string) Result {
	m.setLoading(true)
	defer m.setLoading(false)

	if !m.State().Supported {
		return m.fail("unsubscribe", KindUnsupported, "push notifications are not supported on this platform")
	}

	sub, err := m.platform.Subscription(ctx)
	if err != nil {
		return m.fail("unsubscribe", KindSubscriptionFailed, "locate subscription: "+err.Error())
	}

	if sub == nil {
		// Idempotent success
		m.mu.Lock()
		m.state.Subscribed = false
		m.state.Err = ""
		m.mu.Unlock()
		pushOperationsTotal.WithLabelValues("unsubscribe", "ok").Inc()
		return Result{OK: true}
	}

	if err := m.platform.Unsubscribe(ctx, sub.Endpoint); err != nil {
		return m.fail("unsubscribe", KindSubscriptionFailed, "cancel subscription: "+err.Error())
	}

	// The platform subscription is gone regardless of what the backend
	// says next.
	m.mu.Lock()
	m.state.Subscribed = false
	m.mu.Unlock()

	if m.registrar != nil {
		if err := m.registrar.Deregister(ctx, token, sub.Endpoint); err != nil {
			return m.fail("unsubscribe", KindBackendRejected, "deregister subscription: "+err.Error())
		}
	}

	m.mu.Lock()
	m.state.Err = ""
	m.mu.Unlock()

	pushOperationsTotal.WithLabelValues("unsubscribe", "ok").Inc()
	m.logger.Info().Msg("Push subscription removed")

	return Result{OK: true}
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.state.Loading = loading
	m.mu.Unlock()
}

func (m *Manager) setPermission(permission Permission) {
	m.mu.Lock()
	m.state.Permission = permission
	if permission == PermissionDenied {
		m.state.Subscribed = false
	}
	m.mu.Unlock()
}

// fail records the failure in state and returns the result value.
func (m *Manager) fail(operation string, kind ErrorKind, message string) Result {
	m.mu.Lock()
	m.state.Err = message
	m.mu.Unlock()

	pushOperationsTotal.WithLabelValues(operation, "error").Inc()
	pushErrorsTotal.WithLabelValues(string(kind)).Inc()

	m.logger.Warn().
		Str("operation", operation).
		Str("kind", string(kind)).
		Msg(message)

	return Result{OK: false, Kind: kind, Message: message}
}
