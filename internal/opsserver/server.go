// Package opsserver exposes the operational HTTP surface (health and
// metrics) used when the sync runs as a long-lived daemon.
package opsserver

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncecere/cursor_port_sync/internal/config"
	"github.com/ncecere/cursor_port_sync/internal/observability"
)

// Server wraps the Fiber app and its listen configuration.
type Server struct {
	app *fiber.App
	cfg config.ServerConfig
}

// New constructs the ops server with baseline middleware ready. Both the
// pool and the observability provider may be nil.
func New(cfg config.ServerConfig, pool *pgxpool.Pool, obs *observability.Provider) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ServerHeader:          "cursor-port-sync",
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())

	if handler := obs.PrometheusHandler(); handler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(handler))
	}

	registerHealthRoutes(app, pool)

	return &Server{app: app, cfg: cfg}
}

// Listen blocks until context cancellation or a fatal listen error occurs.
func (s *Server) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.GracefulShutdownDelay
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := s.app.ShutdownWithContext(shutdownCtx)
		if err == nil {
			err = <-errCh
		}
		return err
	case err := <-errCh:
		return err
	}
}

func registerHealthRoutes(app *fiber.App, pool *pgxpool.Pool) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]fiber.Map)
		overall := "ok"

		if pool != nil {
			start := time.Now()
			err := pool.Ping(ctx)
			latency := time.Since(start)
			check := fiber.Map{
				"status":     "ok",
				"latency_ms": latency.Milliseconds(),
			}
			if err != nil {
				check["status"] = "error"
				check["error"] = err.Error()
				overall = "degraded"
			}
			checks["postgres"] = check
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": overall,
			"checks": checks,
		})
	})
}
