package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLogger_CarriesRequestID(t *testing.T) {
	buf := captureLog(t)

	handler := chimw.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotEmpty(t, line["request_id"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/api/ping", line["path"])
	assert.EqualValues(t, http.StatusOK, line["status"])
	assert.EqualValues(t, 2, line["bytes"])
	assert.Equal(t, "info", line["level"])
}

func TestLogger_EscalatesLevelOnErrors(t *testing.T) {
	for _, tc := range []struct {
		status int
		level  string
	}{
		{http.StatusNotFound, "warn"},
		{http.StatusBadGateway, "error"},
	} {
		buf := captureLog(t)

		handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, tc.level, line["level"], "status %d", tc.status)
		assert.EqualValues(t, tc.status, line["status"])
	}
}
