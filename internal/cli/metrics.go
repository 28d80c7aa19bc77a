package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/babylog/internal/metrics"
)

// serveMetrics runs a /metrics server for reg on addr in g until ctx is
// done. An empty addr serves nothing.
func serveMetrics(ctx context.Context, g *errgroup.Group, reg *prometheus.Registry, addr string) {
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.NewMux(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
