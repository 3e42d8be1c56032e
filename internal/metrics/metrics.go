package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	backendSpawns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airlaunch",
			Subsystem: "backend",
			Name:      "spawns_total",
			Help:      "Backend spawn attempts by result (ok, error).",
		}, []string{"result"},
	)
	backendRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "airlaunch",
			Subsystem: "backend",
			Name:      "running",
			Help:      "1 while the spawned backend process is alive.",
		},
	)
	probeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airlaunch",
			Subsystem: "readiness",
			Name:      "probe_attempts_total",
			Help:      "Readiness checks by result (ok, fail).",
		}, []string{"result"},
	)
	readinessOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airlaunch",
			Subsystem: "readiness",
			Name:      "outcomes_total",
			Help:      "Readiness waits by outcome (ready, timeout, interrupted).",
		}, []string{"outcome"},
	)
	readinessWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "airlaunch",
			Subsystem: "readiness",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for the backend to become reachable.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	shellRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airlaunch",
			Subsystem: "shell",
			Name:      "runs_total",
			Help:      "Shell runs by kind and result (ok, error).",
		}, []string{"kind", "result"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{backendSpawns, backendRunning, probeAttempts, readinessOutcomes, readinessWait, shellRuns}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// The helpers below no-op until Register has succeeded.

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func ObserveSpawn(ok bool) {
	if regOK.Load() {
		backendSpawns.WithLabelValues(result(ok)).Inc()
	}
}

func SetBackendRunning(running bool) {
	if regOK.Load() {
		v := 0.0
		if running {
			v = 1
		}
		backendRunning.Set(v)
	}
}

func ObserveProbe(ok bool) {
	if regOK.Load() {
		r := "fail"
		if ok {
			r = "ok"
		}
		probeAttempts.WithLabelValues(r).Inc()
	}
}

// ObserveReadiness records the outcome ("ready", "timeout", "interrupted")
// and the time spent waiting.
func ObserveReadiness(outcome string, seconds float64) {
	if regOK.Load() {
		readinessOutcomes.WithLabelValues(outcome).Inc()
		readinessWait.Observe(seconds)
	}
}

func ObserveShellRun(kind string, ok bool) {
	if regOK.Load() {
		shellRuns.WithLabelValues(kind, result(ok)).Inc()
	}
}
