package server

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/airlaunch/internal/metrics"
	"github.com/loykin/airlaunch/internal/status"
)

// Router serves the launcher's local status API.
// Endpoints:
//
//	GET {basePath}/status   launch snapshot as JSON
//	GET {basePath}/healthz  200 when the backend is ready and running, 503 otherwise
//	GET {basePath}/metrics  Prometheus metrics
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	src      status.Source
	basePath string
}

func NewRouter(src status.Source, basePath string) *Router {
	return &Router{src: src, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.GET("/healthz", r.handleHealth)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer binds addr and serves the router in the background. Bind errors
// are returned; the server's Addr is set to the bound address.
func NewServer(addr, basePath string, src status.Source) (*http.Server, error) {
	return serve(addr, NewRouter(src, basePath).Handler())
}

// NewMetricsServer serves only /metrics on addr.
func NewMetricsServer(addr string) (*http.Server, error) {
	g := gin.New()
	g.Use(gin.Recovery())
	g.GET("/metrics", gin.WrapH(metrics.Handler()))
	return serve(addr, g)
}

func serve(addr string, h http.Handler) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.Serve(ln) }()
	return server, nil
}

type healthResp struct {
	Healthy   bool         `json:"healthy"`
	Readiness status.State `json:"readiness"`
	Running   bool         `json:"running"`
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.src.Snapshot())
}

func (r *Router) handleHealth(c *gin.Context) {
	snap := r.src.Snapshot()
	resp := healthResp{
		Healthy:   snap.Healthy(),
		Readiness: snap.Readiness.State,
		Running:   snap.Backend.Running,
	}
	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(c, code, resp)
}
