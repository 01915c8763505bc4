package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"voltway/internal/bootstrap/logging"
	"voltway/internal/ports"
	"voltway/internal/usecase/assistant"
	"voltway/internal/usecase/issues"
)

// Server exposes the assistant and the read-side of the store over HTTP.
type Server struct {
	assistant *assistant.Service
	issues    *issues.Service
	stock     ports.StockRepository

	lowStockThreshold int
}

func NewServer(assistantSvc *assistant.Service, issueSvc *issues.Service, stock ports.StockRepository, lowStockThreshold int) *Server {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 50
	}
	return &Server{
		assistant:         assistantSvc,
		issues:            issueSvc,
		stock:             stock,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/issues", s.handleListIssues)
		r.Get("/issues/summary", s.handleIssueSummary)
		r.Get("/issues/{id}", s.handleGetIssue)
		r.Get("/stock", s.handleListStock)
		r.Get("/stock/low", s.handleLowStock)
	})
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logging.Info(ctx, "http server listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Info(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
