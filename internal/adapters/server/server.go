// Package server composes the REST API into one process-level HTTP handler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tmsolberg/hrdeck/internal/adapters/server/httpapi"
	"github.com/tmsolberg/hrdeck/internal/app"
)

// defaultBindAddress defines the localhost-first serve default.
const defaultBindAddress = "127.0.0.1:8787"

// defaultShutdownTimeout bounds graceful shutdown once context cancellation starts.
const defaultShutdownTimeout = 5 * time.Second

// Config defines serve-mode endpoint configuration.
type Config struct {
	HTTPBind string
	Version  string
}

// NewHandler composes the root router: health probes plus the versioned API.
func NewHandler(cfg Config, svc *app.Service) (http.Handler, Config, error) {
	cfg = normalizeConfig(cfg)
	if svc == nil {
		return nil, Config{}, fmt.Errorf("service dependency is required")
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", healthHandler(cfg.Version))
	r.Get("/readyz", healthHandler(cfg.Version))
	r.Mount("/api/v1", httpapi.NewHandler(svc, time.Now).Routes())

	return r, cfg, nil
}

// Run starts the composed HTTP server and blocks until shutdown or startup failure.
func Run(ctx context.Context, cfg Config, svc *app.Service) error {
	if ctx == nil {
		ctx = context.Background()
	}

	handler, cfg, err := NewHandler(cfg, svc)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	httpServer := &http.Server{
		Addr:    cfg.HTTPBind,
		Handler: handler,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		shutdownErr := httpServer.Shutdown(shutdownCtx)
		serveErr := <-serveErrCh
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
			return fmt.Errorf("shutdown server: %w", shutdownErr)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve after shutdown: %w", serveErr)
		}
		return nil
	}
}

func normalizeConfig(cfg Config) Config {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.Version = strings.TrimSpace(cfg.Version)
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return cfg
}

func healthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version,
		})
	}
}
