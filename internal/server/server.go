package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carscout/carscout/internal/model"
	"github.com/carscout/carscout/internal/recommend"
)

// Server exposes the recommendation pipeline over HTTP. The inventory is
// loaded once at startup; every request runs a fresh pipeline query against
// it.
type Server struct {
	pipeline *recommend.Pipeline
	vehicles []model.VehicleRecord
	cfg      model.ServerConfig
	router   *chi.Mux
}

// New builds the server around a wired pipeline and a loaded inventory.
func New(pipeline *recommend.Pipeline, vehicles []model.VehicleRecord, cfg model.ServerConfig) *Server {
	s := &Server{
		pipeline: pipeline,
		vehicles: vehicles,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/api/v1/health", s.handleHealth)

	// Recommendation queries
	r.Post("/api/v1/recommend", s.handleRecommend)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"vehicles": len(s.vehicles),
	})
}

// Recommendation handler. The request body is the query itself; malformed
// constraints map to 400, everything else the pipeline degrades around.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var q model.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	report, err := s.pipeline.Run(r.Context(), s.vehicles, q)
	if err != nil {
		if errors.Is(err, model.ErrInvalidConstraint) {
			respondError(w, http.StatusBadRequest, "invalid constraint", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "recommendation run failed", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	respondJSON(w, status, body)
}
