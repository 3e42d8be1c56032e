package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(Config{Address: "127.0.0.1:8080"})
	require.NoError(t, err)
	tcp, ok := p.(TCP)
	require.True(t, ok, "empty type defaults to tcp")
	assert.Equal(t, DefaultTimeout, tcp.Timeout)
	assert.Equal(t, "tcp:127.0.0.1:8080", p.Describe())

	p, err = New(Config{Type: "HTTP", URL: "http://localhost:8080/health", Timeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "http:http://localhost:8080/health", p.Describe())

	p, err = New(Config{Type: "command", Command: "true"})
	require.NoError(t, err)
	assert.Equal(t, "cmd:true", p.Describe())

	for _, bad := range []Config{
		{Type: "tcp"},
		{Type: "http"},
		{Type: "command", Command: "  "},
		{Type: "udp", Address: "x:1"},
	} {
		_, err := New(bad)
		assert.Error(t, err, "%+v", bad)
	}
}

func TestTCPCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	p := TCP{Address: addr, Timeout: time.Second}
	assert.NoError(t, p.Check(context.Background()))

	require.NoError(t, ln.Close())
	assert.Error(t, p.Check(context.Background()))
}

func TestPorts(t *testing.T) {
	assert.Equal(t, "8080", TCP{Address: "127.0.0.1:8080"}.Port())
	assert.Equal(t, "weird", TCP{Address: "weird"}.Port())
	assert.Equal(t, "9000", NewHTTP("http://localhost:9000/x", time.Second).Port())
	assert.Equal(t, "80", NewHTTP("http://localhost/x", time.Second).Port())
	assert.Equal(t, "443", NewHTTP("https://localhost/x", time.Second).Port())
}

func TestHTTPCheck(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL, time.Second)
	assert.NoError(t, p.Check(context.Background()))

	status.Store(http.StatusNotFound)
	assert.NoError(t, p.Check(context.Background()), "4xx still means the server is up")

	status.Store(http.StatusServiceUnavailable)
	assert.Error(t, p.Check(context.Background()))

	// zero value falls back to a default client
	status.Store(http.StatusOK)
	assert.NoError(t, HTTP{URL: srv.URL}.Check(context.Background()))
}

func TestCommandCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix shell")
	}
	ctx := context.Background()
	assert.NoError(t, Command{Command: "true"}.Check(ctx))
	assert.ErrorContains(t, Command{Command: "sh -c 'exit 3'"}.Check(ctx), "exited 3")
	assert.Error(t, Command{Command: "__definitely_not_exists__"}.Check(ctx))

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, Command{Command: "sleep 5"}.Check(ctx), context.DeadlineExceeded)
}
