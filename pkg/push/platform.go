package push

import (
	"context"
)

// Permission is the notification permission state reported by the platform.
type Permission string

const (
	// PermissionDefault means the user has not been asked yet.
	PermissionDefault Permission = "default"

	// PermissionGranted means notifications are allowed.
	PermissionGranted Permission = "granted"

	// PermissionDenied means the user blocked notifications. The
	// platform will not prompt again; only a settings change recovers.
	PermissionDenied Permission = "denied"
)

// SubscriptionKeys are the encryption keys of a push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the opaque platform-issued descriptor identifying one
// device's notification channel. The endpoint URL is unique per
// subscription and keys registration records server-side.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// Platform abstracts the push capability of the hosting platform
// (service worker plus push manager in a browser).
type Platform interface {
	// Supported reports whether the platform can deliver push
	// notifications at all.
	Supported() bool

	// Permission returns the current notification permission.
	Permission() Permission

	// RequestPermission prompts the user and returns the resulting
	// permission.
	RequestPermission(ctx context.Context) (Permission, error)

	// EnsureRegistration makes sure a worker registration exists for
	// the push scope, registering one if absent.
	EnsureRegistration(ctx context.Context) error

	// Subscription returns the existing push subscription, or nil when
	// none is present.
	Subscription(ctx context.Context) (*Subscription, error)

	// Subscribe creates a push subscription using the application's
	// VAPID public key in raw byte form.
	Subscribe(ctx context.Context, vapidKey []byte) (*Subscription, error)

	// Unsubscribe cancels the platform subscription with the given
	// endpoint.
	Unsubscribe(ctx context.Context, endpoint string) error
}
