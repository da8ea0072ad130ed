// Package api serves experiment summaries over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/database"
	"github.com/nishad/gsefetch/internal/logger"
	"github.com/nishad/gsefetch/internal/metrics"
	"github.com/nishad/gsefetch/internal/service"
)

// Server represents the HTTP API server
type Server struct {
	router      *mux.Router
	server      *http.Server
	experiments *service.ExperimentService
	db          *database.DB
	logger      *zap.Logger
}

// Config holds server configuration
type Config struct {
	Host       string
	Port       int
	EnableCORS bool
}

// NewServer creates a new API server instance. db may be nil, in which
// case summaries are not stored and the stored endpoint is not routed.
func NewServer(cfg *Config, experiments *service.ExperimentService, db *database.DB, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		router:      mux.NewRouter(),
		experiments: experiments,
		db:          db,
		logger:      log,
	}

	s.setupRoutes()

	if cfg.EnableCORS {
		s.router.Use(corsMiddleware)
	}
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.Middleware())
	s.router.Use(jsonMiddleware)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a pipeline run may follow several remote calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/experiments/{accession}", s.handleGetExperiment).Methods("GET")
	api.HandleFunc("/experiments/{accession}/microarray.csv", s.handleTableCSV).Methods("GET")
	api.HandleFunc("/experiments/{accession}/rnaseq.csv", s.handleTableCSV).Methods("GET")
	if s.db != nil {
		api.HandleFunc("/stored/{accession}", s.handleGetStored).Methods("GET")
		api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	}

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	err := s.server.Shutdown(ctx)
	if s.db != nil {
		if cerr := s.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Middleware functions

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags each request with an id and stores a logger
// carrying it in the request context.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		reqLog := s.logger.With(zap.String("request_id", requestID))
		ctx := logger.ContextWithLogger(r.Context(), reqLog)

		sw := &metrics.StatusWriter{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		reqLog.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.Status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Helper functions

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  status,
	})
}

// handleRoot returns API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"experiment": "/api/v1/experiments/{accession}",
		"microarray": "/api/v1/experiments/{accession}/microarray.csv",
		"rnaseq":     "/api/v1/experiments/{accession}/rnaseq.csv",
		"health":     "/api/v1/health",
		"metrics":    "/metrics",
	}
	if s.db != nil {
		endpoints["stored"] = "/api/v1/stored/{accession}"
		endpoints["runs"] = "/api/v1/runs/{id}"
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "gsefetch API",
		"version":     "1.0.0",
		"description": "GEO experiment summaries with linked SRA runs",
		"endpoints":   endpoints,
	})
}

// tableCounts reports row counts for every stored table. Tables that
// cannot be counted are left out.
func (s *Server) tableCounts() map[string]int64 {
	counts := make(map[string]int64, len(database.AllowedTables))
	for table := range database.AllowedTables {
		n, err := s.db.CountTable(table)
		if err != nil {
			s.logger.Warn("count failed", zap.String("table", table), zap.Error(err))
			continue
		}
		counts[table] = n
	}
	return counts
}

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			health["status"] = "unhealthy"
			health["database"] = err.Error()
		} else {
			health["database"] = "healthy"
			health["tables"] = s.tableCounts()
		}
	}

	status := http.StatusOK
	if health["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, health)
}
