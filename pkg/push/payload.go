package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Payload is the inbound push message contract. All fields are optional;
// an absent payload is a no-op.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// ParsePayload decodes a push message payload. An empty payload returns
// (nil, nil), which callers treat as a no-op.
func ParsePayload(data []byte) (*Payload, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode push payload: %w", err)
	}
	return &payload, nil
}

// Defaults applied when building a notification from a payload.
const (
	defaultTitle = "Turicanje"
	defaultIcon  = "/icons/icon-192.png"
	defaultURL   = "/"
)

// defaultVibration is the vibration pattern for displayed notifications.
var defaultVibration = []int{100, 50, 100}

// Notification is a fully built system notification ready for display.
type Notification struct {
	Title     string
	Body      string
	Icon      string
	Badge     string
	Vibration []int
	URL       string
}

// Displayer abstracts the platform's notification display and window
// handling.
type Displayer interface {
	// Show displays a system notification.
	Show(ctx context.Context, n Notification) error

	// OpenWindow opens or focuses a window at the given URL.
	OpenWindow(ctx context.Context, url string) error
}

// Notifier handles inbound push messages and notification clicks.
// Everything is best-effort: a display failure is logged, never
// propagated to the message source.
type Notifier struct {
	displayer Displayer
	logger    zerolog.Logger
}

// NewNotifier creates a notifier over the given displayer.
func NewNotifier(displayer Displayer) *Notifier {
	return &Notifier{
		displayer: displayer,
		logger:    log.With().Str("component", "push-notifier").Logger(),
	}
}

// BuildNotification turns a payload into a displayable notification,
// filling in the app defaults for icon, badge, vibration, and deep link.
func BuildNotification(payload *Payload) Notification {
	n := Notification{
		Title:     payload.Title,
		Body:      payload.Body,
		Icon:      defaultIcon,
		Badge:     defaultIcon,
		Vibration: defaultVibration,
		URL:       payload.URL,
	}
	if n.Title == "" {
		n.Title = defaultTitle
	}
	if n.URL == "" {
		n.URL = defaultURL
	}
	return n
}

// HandlePush processes an inbound push message: parse the payload and
// display a notification. An absent payload is a no-op.
func (n *Notifier) HandlePush(ctx context.Context, data []byte) error {
	payload, err := ParsePayload(data)
	if err != nil {
		n.logger.Warn().Err(err).Msg("Ignoring malformed push payload")
		return err
	}
	if payload == nil {
		return nil
	}

	notification := BuildNotification(payload)
	if err := n.displayer.Show(ctx, notification); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to display notification")
		return err
	}

	n.logger.Debug().Str("title", notification.Title).Msg("Notification displayed")
	return nil
}

// HandleClick processes a notification click: open or focus a window at
// the notification's deep link, defaulting to the site root.
func (n *Notifier) HandleClick(ctx context.Context, notification Notification) error {
	url := notification.URL
	if url == "" {
		url = defaultURL
	}

	if err := n.displayer.OpenWindow(ctx, url); err != nil {
		n.logger.Warn().Err(err).Str("url", url).Msg("Failed to open window")
		return err
	}
	return nil
}
