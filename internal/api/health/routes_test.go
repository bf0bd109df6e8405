package health_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/internal/api/health"
	"github.com/stacklok/country-cache-server/internal/versions"
)

func TestRouter(t *testing.T) {
	t.Parallel()

	notReady := func(*http.Request) error { return errors.New("database unreachable") }

	tests := []struct {
		name       string
		ready      health.ReadinessFunc
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "health", path: "/health", wantStatus: http.StatusOK, wantBody: `{"status":"healthy"}`},
		{name: "health ignores readiness", ready: notReady, path: "/health", wantStatus: http.StatusOK},
		{name: "ready", ready: func(*http.Request) error { return nil }, path: "/readiness", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{
			name:       "not ready",
			ready:      notReady,
			path:       "/readiness",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"Service not ready: database unreachable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			health.Router(tt.ready).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.Router(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got versions.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, versions.GetVersionInfo(), got)
}
