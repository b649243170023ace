package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server wraps the HTTP server and the watcher's lifecycle.
type Server struct {
	container *Container
	srv       *http.Server
}

// NewServer creates the HTTP server with routes.
func NewServer(container *Container) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		result, at, err := container.Watcher.Status()
		status := map[string]any{
			"latestVersion":  result.LatestVersion,
			"currentVersion": result.CurrentVersion,
			"proposalUrl":    result.ProposalURL,
			"lastPoll":       at,
		}
		if err != nil {
			status["error"] = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	})

	mux.HandleFunc("POST /sync", func(w http.ResponseWriter, r *http.Request) {
		// Runs asynchronously; poll /status for the outcome.
		go func() {
			if _, err := container.Watcher.RunOnce(context.WithoutCancel(r.Context())); err != nil {
				container.Logger.Error("manual sync failed", "error", err)
			}
		}()
		w.WriteHeader(http.StatusAccepted)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", container.Config.Port),
		Handler:      otelhttp.NewHandler(mux, "charts-syncd"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &Server{
		container: container,
		srv:       srv,
	}
}

// Run starts the watcher and the server, and handles graceful shutdown.
func (s *Server) Run() error {
	log := s.container.Logger

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go s.container.Watcher.Run(watchCtx, s.container.Config.PollInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.Int("port", s.container.Config.Port))
		errCh <- s.srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := s.container.Telemetry.Shutdown(ctx); err != nil {
		log.Error("telemetry shutdown failed", "error", err)
	}

	log.Info("server stopped")
	return nil
}
