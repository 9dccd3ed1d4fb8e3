package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/metrics"
)

// HealthFunc reports whether the process can serve its store.
type HealthFunc func(ctx context.Context) error

// MetricsServer serves Prometheus metrics and a health probe.
type MetricsServer struct {
	server   *http.Server
	port     int
	endpoint string
	health   HealthFunc
	registry *prometheus.Registry
}

// NewMetricsServer creates a new metrics server instance. health may be nil.
func NewMetricsServer(port int, endpoint string, health HealthFunc) *MetricsServer {
	return &MetricsServer{
		port:     port,
		endpoint: endpoint,
		health:   health,
	}
}

// Setup registers runtime and progress collectors and builds the handler.
func (m *MetricsServer) Setup() error {
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.registry.MustRegister(metrics.Collectors()...)

	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", m.port),
		Handler: m.Handler(),
	}
	return nil
}

// Handler returns the HTTP routes served by Start.
func (m *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(m.endpoint, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", m.handleHealth)
	return mux
}

func (m *MetricsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if m.health != nil {
		if err := m.health(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Start begins serving on the configured port.
func (m *MetricsServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("metrics server listening on port %d%s", m.port, m.endpoint)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("metrics server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	if err := m.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("metrics server stopped")
	return nil
}
