// Package server provides the HTTP REST API for resume composition, LaTeX
// and PDF output, and job posting analysis.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/content"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/ordering"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/store"
)

// Config holds listener settings.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigin      string
}

// Deps are the collaborators the handlers call into. Content, Ordering,
// Compiler and Renderer are required.
type Deps struct {
	Content  *content.Service
	Ordering *ordering.Engine
	Compiler *rendering.Compiler
	Renderer rendering.Renderer

	Limiter          *ratelimit.Limiter
	Log              *logrus.Entry
	Metrics          *observability.Metrics
	MatchConcurrency int
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	cfg        Config

	content          *content.Service
	ordering         *ordering.Engine
	compiler         *rendering.Compiler
	renderer         rendering.Renderer
	rateLimiter      *ratelimit.Limiter
	log              *logrus.Entry
	metrics          *observability.Metrics
	matchConcurrency int
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	switch {
	case deps.Content == nil:
		return nil, errors.New("server: content service is required")
	case deps.Ordering == nil:
		return nil, errors.New("server: ordering engine is required")
	case deps.Compiler == nil:
		return nil, errors.New("server: compiler is required")
	case deps.Renderer == nil:
		return nil, errors.New("server: renderer is required")
	}
	if deps.Log == nil {
		deps.Log = observability.Discard()
	}
	if deps.MatchConcurrency <= 0 {
		deps.MatchConcurrency = 4
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:              cfg,
		content:          deps.Content,
		ordering:         deps.Ordering,
		compiler:         deps.Compiler,
		renderer:         deps.Renderer,
		rateLimiter:      deps.Limiter,
		log:              deps.Log,
		metrics:          deps.Metrics,
		matchConcurrency: deps.MatchConcurrency,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	// Resumes
	mux.HandleFunc("GET /resumes", s.handleListResumes)
	mux.HandleFunc("POST /resumes", s.handleCreateResume)
	mux.HandleFunc("POST /resumes/import", s.handleImportResume)
	mux.HandleFunc("GET /resumes/{id}", s.handleGetResume)
	mux.HandleFunc("PATCH /resumes/{id}", s.handleUpdateResume)
	mux.HandleFunc("DELETE /resumes/{id}", s.handleDeleteResume)

	// Sections
	mux.HandleFunc("POST /resumes/{id}/sections", s.handleCreateSection)
	mux.HandleFunc("PUT /resumes/{id}/sections/order", s.handleReorder(store.KindResume))
	mux.HandleFunc("PATCH /sections/{id}", s.handleUpdateSection)
	mux.HandleFunc("PATCH /sections/{id}/toggle", s.handleToggleSection)
	mux.HandleFunc("DELETE /sections/{id}", s.handleDeleteSection)

	// Items
	mux.HandleFunc("POST /sections/{id}/items", s.handleCreateItem)
	mux.HandleFunc("PUT /sections/{id}/items/order", s.handleReorder(store.KindSection))
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdateItem)
	mux.HandleFunc("PATCH /items/{id}/toggle", s.handleToggleItem)
	mux.HandleFunc("DELETE /items/{id}", s.handleDeleteItem)

	// Sub-items
	mux.HandleFunc("POST /items/{id}/subitems", s.handleCreateSubItem)
	mux.HandleFunc("PUT /items/{id}/subitems/order", s.handleReorder(store.KindItem))
	mux.HandleFunc("PATCH /subitems/{id}", s.handleUpdateSubItem)
	mux.HandleFunc("PATCH /subitems/{id}/toggle", s.handleToggleSubItem)
	mux.HandleFunc("DELETE /subitems/{id}", s.handleDeleteSubItem)

	// Output
	mux.HandleFunc("POST /resumes/{id}/latex", s.handleLatex)
	mux.HandleFunc("POST /resumes/{id}/pdf", s.handlePDF)

	// Job postings and matching
	mux.HandleFunc("GET /job-postings", s.handleListJobPostings)
	mux.HandleFunc("POST /job-postings", s.handleCreateJobPosting)
	mux.HandleFunc("GET /job-postings/{id}", s.handleGetJobPosting)
	mux.HandleFunc("PATCH /job-postings/{id}", s.handleUpdateJobPosting)
	mux.HandleFunc("DELETE /job-postings/{id}", s.handleDeleteJobPosting)
	mux.HandleFunc("POST /job-postings/{id}/analyze", s.handleAnalyzePosting)
	mux.HandleFunc("POST /resumes/{id}/analyze", s.handleAnalyzeResume)
	mux.HandleFunc("GET /resumes/{id}/matches", s.handleListMatches)

	// RequestID copies the request, so it stays outermost: the mux sets
	// r.Pattern on the request it receives and Logging and Metrics read it
	// after the handler returns.
	s.handler = middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(s.log),
		middleware.Metrics(s.metrics),
		middleware.CORS(cfg.CORSOrigin),
		s.withRateLimit,
	)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // PDF renders can be slow
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.log.Info("server stopped")
	return nil
}

// withRateLimit rejects clients over their tier's budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the peer IP; forwarded headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		// Round up so clients never retry a moment too early.
		secs := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.log.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
		"client":     clientID,
		"path":       r.URL.Path,
		"limit":      info.Limit,
	}).Warn("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
