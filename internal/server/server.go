// Package server exposes wordsmith over HTTP: the analyzer endpoint, the
// document store, editing sessions and a websocket stream of session
// notifications.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dshills/wordsmith/internal/app"
)

// Server is the HTTP front end of an Application.
type Server struct {
	app    *app.Application
	router *gin.Engine
	logger *slog.Logger
}

// New creates a Server for a and registers all routes.
func New(a *app.Application) *Server {
	cfg := a.Config()
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	s := &Server{
		app:    a,
		router: router,
		logger: a.Logger().WithComponent("http"),
	}
	router.Use(gin.Recovery(), s.observe())
	SetupRoutes(router, a)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.app.Config().Server
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancel()

	s.logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.Duration)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// observe logs each request and records its latency.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		s.app.Metrics().ObserveHTTP(c.Request.Method, route, status, elapsed)

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
		)
	}
}
