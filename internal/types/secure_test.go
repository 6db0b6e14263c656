package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretString_RedactedInFormatting(t *testing.T) {
	s := SecretString("super-secret-key")

	assert.Equal(t, "***REDACTED***", s.String())
	assert.Equal(t, "***REDACTED***", fmt.Sprintf("%v", s))
	assert.Equal(t, "***REDACTED***", fmt.Sprintf("%s", s))
	assert.NotContains(t, fmt.Sprintf("%+v", struct{ Key SecretString }{s}), "super-secret-key")
}

func TestSecretString_RedactedInJSON(t *testing.T) {
	payload := struct {
		APIKey SecretString `json:"api_key"`
	}{APIKey: "super-secret-key"}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"api_key":"***REDACTED***"}`, string(raw))
}

func TestSecretString_Unmask(t *testing.T) {
	s := SecretString("super-secret-key")
	assert.Equal(t, "super-secret-key", s.Unmask())
}

func TestSecretString_IsZero(t *testing.T) {
	assert.True(t, SecretString("").IsZero())
	assert.False(t, SecretString("x").IsZero())
}
