package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// healthCheckTimeout bounds a single ping.
const healthCheckTimeout = 2 * time.Second

// Pinger is implemented by backends that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether a backend is reachable.
// Backends without a Ping method are always healthy.
type HealthChecker struct {
	backend Backend
}

// NewHealthChecker creates a health checker for backend.
func NewHealthChecker(backend Backend) *HealthChecker {
	return &HealthChecker{backend: backend}
}

// Check pings the backend once.
func (h *HealthChecker) Check(ctx context.Context) error {
	pinger, ok := h.backend.(Pinger)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		logrus.Errorf("store health check failed: %v", err)
		return err
	}

	logrus.Debugf("store health check passed")
	return nil
}

// IsHealthy returns true if the backend is accessible.
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx) == nil
}
