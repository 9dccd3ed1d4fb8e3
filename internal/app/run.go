package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/codequest-labs/ai-tutorial-progress/internal/server"
)

// Serve records today's login, exposes metrics and health on METRICS_PORT
// and blocks until ctx is cancelled or the process is signalled.
func (a *App) Serve(ctx context.Context) error {
	a.controller.UpdateLoginStreak(ctx, a.now())

	a.metricsServer = server.NewMetricsServer(a.cfg.MetricsPort, "/metrics", a.health.Check)
	if err := a.metricsServer.Setup(); err != nil {
		return err
	}
	if err := a.metricsServer.Start(ctx); err != nil {
		return err
	}
	logrus.Info("serving progress metrics")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logrus.Info("shutdown signal received")
	return nil
}
