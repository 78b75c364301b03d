package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_RedactsSecrets(t *testing.T) {
	// Header logging only happens at debug level
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", nil)
	req.Header.Set(HeaderAPIKey, "organizer-api-key-1234")
	req.Header.Set(HeaderAuthorization, "Bearer organizer-token")
	req.Header.Set("User-Agent", "tambola-admin/1.0")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	logged := buf.String()
	require.Contains(t, logged, LogMsgRequestHeaders)

	// Credentials never reach the log stream
	assert.NotContains(t, logged, "organizer-api-key-1234")
	assert.NotContains(t, logged, "Bearer organizer-token")
	assert.Contains(t, logged, RedactedValue)

	// Ordinary headers still do
	assert.Contains(t, logged, "tambola-admin/1.0")
}
