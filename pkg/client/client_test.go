package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/airlaunch/internal/process"
	"github.com/loykin/airlaunch/internal/server"
	"github.com/loykin/airlaunch/internal/status"
)

func newTestServer(t *testing.T, snap status.Snapshot) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := server.NewRouter(status.SourceFunc(func() status.Snapshot { return snap }), "/api").Handler()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusAndHealth(t *testing.T) {
	snap := status.Snapshot{
		Backend:   process.Status{Name: "backend", PID: 77, Running: true},
		Readiness: status.Readiness{State: status.StateReady, Attempts: 2, MaxAttempts: 30},
		Shell:     "tui",
	}
	srv := newTestServer(t, snap)
	c := New(Config{BaseURL: srv.URL + "/api/"})
	ctx := context.Background()

	assert.True(t, c.IsReachable(ctx))

	got, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 77, got.Backend.PID)
	assert.Equal(t, status.StateReady, got.Readiness.State)
	assert.Equal(t, "tui", got.Shell)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, Health{Healthy: true, Readiness: "ready", Running: true}, h)
}

func TestHealthUnhealthyIsNotAnError(t *testing.T) {
	srv := newTestServer(t, status.Snapshot{Readiness: status.Readiness{State: status.StateTimeout}})
	c := New(Config{BaseURL: srv.URL + "/api"})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, h.Healthy)
	assert.Equal(t, "timeout", h.Readiness)
}

func TestWrongBasePath(t *testing.T) {
	srv := newTestServer(t, status.Snapshot{})
	c := New(Config{BaseURL: srv.URL})

	assert.False(t, c.IsReachable(context.Background()))
	_, err := c.Status(context.Background())
	assert.Error(t, err)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url})
	assert.False(t, c.IsReachable(context.Background()))
	_, err := c.Health(context.Background())
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, "http://127.0.0.1:9090", c.baseURL)
	assert.Equal(t, DefaultConfig().Timeout, c.client.Timeout)
}
