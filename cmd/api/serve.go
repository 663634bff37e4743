package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/cmd/api/middleware"
	"github.com/pathbuilder/core/internal/config"
	"github.com/pathbuilder/core/internal/handlers"
	"github.com/pathbuilder/core/internal/metrics"
	"github.com/pathbuilder/core/internal/session"
)

const shutdownTimeout = 10 * time.Second

// newRouter wires the API behind the standard middleware stack.
func newRouter(cfg *config.Config, logger *zap.Logger, sessions *session.Manager, col *metrics.Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Cors(cfg.AllowedOrigins))

	handlers.NewAPI(sessions,
		handlers.WithLogger(logger),
		handlers.WithMetrics(col),
		handlers.WithMaxImportBytes(cfg.MaxImportBytes),
	).RegisterRoutes(r)
	return r
}

func newSessions(ctx context.Context, cfg *config.Config, logger *zap.Logger, col *metrics.Collector) *session.Manager {
	return session.NewManager(ctx,
		session.WithLogger(logger),
		session.WithMaxSessions(cfg.MaxSessions),
		session.WithParams(cfg.Canvas.Params()),
		session.WithMetrics(col),
	)
}

func serveCmd(load loader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			zap.ReplaceGlobals(logger)
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			col := metrics.NewCollector("pathbuilder")
			sessions := newSessions(ctx, cfg, logger, col)
			defer sessions.Close()

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           newRouter(cfg, logger, sessions, col),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", zap.String("addr", cfg.Addr), zap.String("environment", cfg.Environment))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding the config")
	return cmd
}
