package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/config"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Storage.Backend = backend
	cfg.Storage.Path = t.TempDir()
	cfg.RateLimit.Enabled = false
	return cfg
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewServerRoutes(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t, "memory"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	for _, path := range []string{"/", "/health", "/tree", "/tabs", "/snapshot", "/metrics/json"} {
		w := get(t, s, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}

	w := get(t, s, "/log/level")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"level":"error"`)

	w = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "workspace_nodes")
	assert.Contains(t, w.Body.String(), `webide_http_requests_total{method="GET",path="/health"`)
}

func TestServerRestoresAcrossRestart(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	ctx := context.Background()

	s, err := NewServer(ctx, cfg)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tree/nodes", strings.NewReader(`{"type":"folder","name":"src"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(shutdownCtx))

	restarted, err := NewServer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = restarted.Shutdown(context.Background()) })

	_, ok := restarted.Workspace().NodeByPath("src")
	assert.True(t, ok)
}

func TestNewServerRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Storage.Backend = "etcd"

	_, err := NewServer(context.Background(), cfg)
	assert.Error(t, err)
}
