package credential

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "echoscript/internal/app/errors"
)

func TestNamespace(t *testing.T) {
	a := Namespace("AIzaKeyOne")
	b := Namespace("AIzaKeyTwo")

	assert.Len(t, a, 16)
	assert.Equal(t, a, Namespace("AIzaKeyOne"))
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "AIza")
}

func TestCheckFormat(t *testing.T) {
	valid := KeyPrefix + strings.Repeat("x", MinKeyLength)

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{name: "valid", key: valid},
		{name: "empty", key: "   ", wantErr: apperrors.ErrMissingAPIKey},
		{name: "wrong prefix", key: "sk-" + strings.Repeat("x", 40), wantErr: apperrors.ErrInvalidAPIKey},
		{name: "too short", key: KeyPrefix + "abc", wantErr: apperrors.ErrInvalidAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFormat(tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
