package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/airlaunch/internal/launcher"
	"github.com/loykin/airlaunch/internal/process"
	"github.com/loykin/airlaunch/internal/server"
	"github.com/loykin/airlaunch/internal/status"
)

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

// execute runs the CLI in an isolated HOME and working directory.
func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	var out, errOut lockedBuffer
	root := buildRoot()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func closedPort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func portOf(addr string) string {
	_, p, _ := net.SplitHostPort(addr)
	return p
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "airlaunch dev\n", out)
}

func TestConfigShowAppliesFlags(t *testing.T) {
	out, _, err := execute(t, context.Background(), "config", "show", "--format", "json", "--max-attempts", "5", "--shell", "tui")
	require.NoError(t, err)

	var m map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, float64(5), m["readiness"]["max_attempts"])
	assert.Equal(t, "300ms", m["readiness"]["interval"])
	assert.Equal(t, "127.0.0.1:8080", m["readiness"]["address"])
	assert.Equal(t, "tui", m["shell"]["kind"])
}

func TestConfigShowBadFormat(t *testing.T) {
	_, _, err := execute(t, context.Background(), "config", "show", "--format", "ini")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airlaunch.toml")

	out, _, err := execute(t, context.Background(), "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "max_attempts = 30")

	_, _, err = execute(t, context.Background(), "config", "init", path)
	assert.Error(t, err, "refuses to overwrite")
	_, _, err = execute(t, context.Background(), "config", "init", "--force", path)
	assert.NoError(t, err)

	out, _, err = execute(t, context.Background(), "--config", path, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "max_attempts: 30")
}

func TestProbeReady(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	out, _, err := execute(t, context.Background(), "probe", "--probe-address", ln.Addr().String(), "--max-attempts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ready after 1 checks")
}

func TestProbeNotReady(t *testing.T) {
	addr := closedPort(t)
	_, _, err := execute(t, context.Background(), "probe", "--probe-address", addr, "--max-attempts", "2", "--interval", "10ms")
	require.Error(t, err)
	assert.True(t, errors.Is(err, launcher.ErrBackendNotReady))
	assert.Contains(t, err.Error(), "backend could not start on port "+portOf(addr))
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	_, _, err := execute(t, context.Background(), "--max-attempts", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestRunSpawnFailure(t *testing.T) {
	_, _, err := execute(t, context.Background(),
		"--shell", "headless", "--backend-cmd", "/definitely/not/a/binary", "--workdir", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, launcher.ErrSpawn))
}

func skipUnlessUnixProcesses(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("spawns real processes")
	}
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
}

func TestRunHeadlessReadyBackend(t *testing.T) {
	skipUnlessUnixProcesses(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, stderr, err := execute(t, ctx,
		"--shell", "headless", "--backend-cmd", "sleep 10", "--workdir", t.TempDir(),
		"--probe-address", ln.Addr().String(), "--stop-on-exit")
	require.NoError(t, err)
	assert.Contains(t, stderr, "backend ready")
	assert.NotContains(t, stderr, "backend could not start")
}

func TestRunNeverReadyPrintsOneDiagnostic(t *testing.T) {
	skipUnlessUnixProcesses(t)
	addr := closedPort(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, stderr, err := execute(t, ctx,
		"--shell", "headless", "--backend-cmd", "sleep 10", "--workdir", t.TempDir(),
		"--probe-address", addr, "--max-attempts", "3", "--interval", "10ms", "--stop-on-exit")
	require.NoError(t, err, "a readiness timeout is not fatal")
	assert.Equal(t, 1, strings.Count(stderr, "backend could not start on port "+portOf(addr)), stderr)
}

func TestRunRequireBackend(t *testing.T) {
	skipUnlessUnixProcesses(t)
	addr := closedPort(t)

	_, stderr, err := execute(t, context.Background(),
		"--shell", "headless", "--backend-cmd", "sleep 10", "--workdir", t.TempDir(),
		"--probe-address", addr, "--max-attempts", "2", "--interval", "10ms",
		"--require-backend", "--stop-on-exit")
	require.Error(t, err)
	assert.True(t, errors.Is(err, launcher.ErrBackendNotReady))
	assert.Equal(t, 1, strings.Count(stderr, "backend could not start"))
}

func TestStatusCommand(t *testing.T) {
	gin.SetMode(gin.TestMode)
	snap := status.Snapshot{
		Backend:   process.Status{Name: "backend", PID: 55, Running: true},
		Readiness: status.Readiness{State: status.StateReady, Attempts: 1, MaxAttempts: 30},
		Shell:     "gui",
	}
	src := status.SourceFunc(func() status.Snapshot { return snap })
	srv, err := server.NewServer("127.0.0.1:0", "", src)
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	out, _, err := execute(t, context.Background(), "status", "--url", "http://"+srv.Addr)
	require.NoError(t, err)
	assert.Contains(t, out, "backend:   running (pid 55)")
	assert.Contains(t, out, "readiness: ready after 1/30 checks")

	snap.Readiness.State = status.StateTimeout
	_, _, err = execute(t, context.Background(), "status", "--url", "http://"+srv.Addr, "--json")
	assert.Error(t, err, "unhealthy launcher exits non-zero")
}
