// Package credential derives storage namespaces from API credentials and
// performs the cheap format precheck done before any live validation.
package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	apperrors "echoscript/internal/app/errors"
)

const (
	// KeyPrefix is the prefix every Gemini API key starts with
	KeyPrefix = "AIza"
	// MinKeyLength is the shortest key accepted by CheckFormat
	MinKeyLength = 30

	namespaceLen = 16
)

// Namespace returns the storage namespace for a credential. The raw key is
// never persisted; only this digest prefix is.
func Namespace(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:namespaceLen]
}

// CheckFormat validates the shape of a Gemini API key
func CheckFormat(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.ErrMissingAPIKey
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		return apperrors.Kind(apperrors.ErrInvalidAPIKey, apperrors.Newf("must start with '%s'", KeyPrefix))
	}
	if len(key) < MinKeyLength {
		return apperrors.Kind(apperrors.ErrInvalidAPIKey, apperrors.TooShort("API key", MinKeyLength))
	}
	return nil
}
