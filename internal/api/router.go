package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
)

// Router wires the session API and the public relay. The relay sets its own
// CORS headers and sits outside the session CORS policy.
func Router(cfg config.ServerConfig, h *Handler, relay dream.Interpreter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Handle("/api/sonhos", NewRelayHandler(relay))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Route("/api", func(r chi.Router) {
			r.Get("/lotteries", h.listLotteries)

			r.Post("/games/generate", h.generate)
			r.Post("/games", h.saveGames)

			r.Route("/budget", func(r chi.Router) {
				r.Post("/simulate", h.simulateBudget)
				r.Post("/materialize", h.materializeBudget)
			})

			r.Route("/dreams", func(r chi.Router) {
				r.Post("/interpret", h.interpretDream)
				r.Post("/save", h.saveDream)
			})

			r.Get("/history", h.listHistory)
			r.Delete("/history", h.clearHistory)

			r.Get("/age-gate", h.getAgeGate)
			r.Put("/age-gate", h.putAgeGate)

			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
		})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorJSON(w, http.StatusNotFound, "not found")
	})
	return r
}

// Serve runs the HTTP server until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, port int, handler http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server started", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
