package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/favor-advisor/internal/analysis"
	"github.com/jonathan/favor-advisor/internal/catalog"
	"github.com/jonathan/favor-advisor/internal/collation"
	"github.com/jonathan/favor-advisor/internal/config"
	"github.com/jonathan/favor-advisor/internal/db"
	"github.com/jonathan/favor-advisor/internal/images"
	"github.com/jonathan/favor-advisor/internal/rendering"
	"github.com/jonathan/favor-advisor/internal/server/middleware"
	"github.com/jonathan/favor-advisor/internal/server/ratelimit"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// RunStore persists analysis runs. *db.DB implements it.
type RunStore interface {
	CreateAnalysisRun(ctx context.Context, characterIDs []string, result any) (uuid.UUID, error)
	GetAnalysisRun(ctx context.Context, id uuid.UUID) (*db.AnalysisRun, error)
	ListAnalysisRuns(ctx context.Context, limit int) ([]db.AnalysisRun, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	catalog        *catalog.Catalog
	exclusions     *analysis.ExclusionStore
	exclusionsFile string
	collator       collation.Comparer
	runs           RunStore
	sessions       *SessionIssuer
	admin          *config.AdminConfig
	report         *rendering.ReportOptions
	screenshot     *rendering.ScreenshotOptions
	rateLimiter    *ratelimit.Limiter
	logger         *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port    int
	Catalog *catalog.Catalog
	// Exclusions defaults to the curated junk exclusions.
	Exclusions *analysis.ExclusionStore
	// ExclusionsFile receives exclusion updates when set.
	ExclusionsFile string
	Collator       collation.Comparer
	// Runs is optional; without it analyses are not stored.
	Runs RunStore
	// Admin enables operator login and exclusion updates.
	Admin      *config.AdminConfig
	RateLimit  *ratelimit.Config
	URLs       *images.URLBuilder
	Images     *images.Cache
	Screenshot *rendering.ScreenshotOptions
	Logger     *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	s := &Server{
		catalog:        cfg.Catalog,
		exclusions:     cfg.Exclusions,
		exclusionsFile: cfg.ExclusionsFile,
		collator:       cfg.Collator,
		runs:           cfg.Runs,
		admin:          cfg.Admin,
		screenshot:     cfg.Screenshot,
		logger:         cfg.Logger,
		report: &rendering.ReportOptions{
			URLs:   cfg.URLs,
			Images: cfg.Images,
		},
	}
	if s.exclusions == nil {
		s.exclusions = analysis.NewExclusionStore(analysis.DefaultJunkExclusions()...)
	}
	if s.collator == nil {
		s.collator = collation.Japanese()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.screenshot == nil {
		s.screenshot = rendering.DefaultScreenshotOptions()
		s.screenshot.Logger = s.logger
	}
	if cfg.Admin != nil {
		s.sessions = NewSessionIssuer(cfg.Admin)
	}

	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		loaded, err := ratelimit.LoadConfig()
		if err != nil {
			return nil, err
		}
		rateConfig = loaded
	}
	s.rateLimiter = ratelimit.NewLimiter(rateConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Catalog
	mux.HandleFunc("GET /characters", s.handleListCharacters)
	mux.HandleFunc("GET /gifts", s.handleListGifts)

	// Analysis
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /analyze/report", s.handleAnalyzeReport)
	mux.HandleFunc("POST /analyze/export", s.handleAnalyzeExport)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)

	// Junk exclusions
	mux.HandleFunc("GET /junk-exclusions", s.handleGetExclusions)
	mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	mux.Handle("PUT /junk-exclusions", s.requireScope(ScopeExclusionsWrite, http.HandlerFunc(s.handlePutExclusions)))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // PNG export drives a browser
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until ctx is cancelled,
// SIGINT or SIGTERM arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.Close()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources. The server does not own the run store.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// requireScope guards operator endpoints with a session token carrying scope.
// Without admin configuration the endpoint reports itself disabled.
func (s *Server) requireScope(scope string, next http.Handler) http.Handler {
	if s.sessions == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			s.writeError(w, &ErrFeatureDisabled{Feature: "admin access"})
		})
	}
	return middleware.Bearer(s.sessions)(middleware.RequireScope(scope)(next))
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		info := s.rateLimiter.Allow(clientID, r.Method, r.URL.Path)

		s.setRateLimitHeaders(w, info)
		if !info.Allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code and writes it. Internal errors are logged
// and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// Forwarded headers are ignored since they can be spoofed.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
