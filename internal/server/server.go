package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridstake/gridstake/internal/database"
	"github.com/gridstake/gridstake/internal/handler"
	"github.com/gridstake/gridstake/internal/ingest"
	"github.com/gridstake/gridstake/internal/leaderboard"
	"github.com/gridstake/gridstake/internal/ledger"
	"github.com/gridstake/gridstake/internal/logger"
	"github.com/gridstake/gridstake/internal/metrics"
	"github.com/gridstake/gridstake/internal/repository"
	"github.com/gridstake/gridstake/internal/scoring"
	"github.com/gridstake/gridstake/internal/session"
	"github.com/gridstake/gridstake/internal/worker"
)

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, dbPool database.Pool, txManager repository.TxManager, sessionService session.Service, scoringService scoring.Service, leaderboardService leaderboard.Service, ingestService ingest.Service, ledgerService ledger.Service, jobs *worker.Jobs) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions/{sessionID}/predictions", handler.HandleSubmitPrediction(txManager, sessionService))
		r.Get("/leaderboard", handler.HandleGetLeaderboard(txManager, leaderboardService))

		// Admin routes
		adminHandler := handler.NewAdminHandler(txManager, ingestService, scoringService, ledgerService)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/scoring/run", adminHandler.HandleScoringRun)
			r.Post("/events/sync", adminHandler.HandleSyncEvents)

			// On-demand job triggers, same bodies the scheduler runs
			r.Route("/jobs", func(r chi.Router) {
				r.Post("/session-state", handler.HandleTriggerJob(txManager, jobs.SessionState))
				r.Post("/auto-finalize", handler.HandleTriggerJob(txManager, jobs.AutoFinalize))
			})
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		runID := logger.GenerateRunID()
		ctx := logger.WithRunID(r.Context(), runID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
