package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertWebhook_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := NewAlertWebhook(srv.URL, 2*time.Second)
	require.True(t, hook.Configured())

	err := hook.Send(context.Background(), "upstream down")
	require.NoError(t, err)
	assert.Equal(t, "upstream down", got["text"])
}

func TestAlertWebhook_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewAlertWebhook(srv.URL, 2*time.Second).Send(context.Background(), "x")
	assert.Error(t, err)
}

func TestAlertWebhook_Unconfigured(t *testing.T) {
	hook := NewAlertWebhook("", 2*time.Second)

	assert.False(t, hook.Configured())
	assert.NoError(t, hook.Send(context.Background(), "x"), "no endpoint means no-op, not failure")
}
