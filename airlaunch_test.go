package airlaunch

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksConfiguredShell(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shell.Kind = "headless"
	l, err := New(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "headless", l.Snapshot().Shell)

	cfg.Shell.Kind = "web"
	_, err = New(&cfg)
	assert.Error(t, err)
}

func TestSpawnFailureIsReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shell.Kind = "headless"
	cfg.Backend.Command = "/definitely/not/a/binary"
	cfg.Backend.WorkDir = t.TempDir()

	var diag bytes.Buffer
	l, err := New(&cfg, WithDiagnostics(&diag))
	require.NoError(t, err)
	err = l.Run(context.Background())
	assert.True(t, errors.Is(err, ErrSpawn), "got %v", err)
	assert.Empty(t, diag.String())
}

func TestStatusServerFacade(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_ = ln.Close()

	cfg := DefaultConfig()
	cfg.Shell.Kind = "headless"
	l, err := New(&cfg)
	require.NoError(t, err)

	srv, err := NewStatusServer(ln.Addr().String(), "/", l)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	assert.Equal(t, ln.Addr().String(), srv.Addr)
}
