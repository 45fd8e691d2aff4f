package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/pkg/config"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the Prometheus registry over HTTP.
type Server struct {
	cfg *config.MetricsConfig
	log *logger.Logger
}

func NewServer(cfg *config.MetricsConfig, log *logger.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Run serves the metrics endpoint until the context is cancelled. It returns
// immediately when metrics are disabled.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:        s.cfg.ListenAddress,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Infof("metrics server listening on %s%s", s.cfg.ListenAddress, s.cfg.Path)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
