package push

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeVAPIDKey decodes a URL-safe base64 VAPID public key into the raw
// byte array the platform subscribe call requires: padding is restored
// and the URL-safe alphabet mapped back to the standard one before
// decoding.
func DecodeVAPIDKey(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("VAPID key cannot be empty")
	}

	padded := key + strings.Repeat("=", (4-len(key)%4)%4)
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(padded)

	raw, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("decode VAPID key: %w", err)
	}
	return raw, nil
}

// EncodeVAPIDKey is the inverse transform: it encodes raw key bytes into
// the unpadded URL-safe transport form.
func EncodeVAPIDKey(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}
