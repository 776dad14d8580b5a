// Package http exposes the JSON API: per-user records, aggregate reports,
// advisory insights and a server-sent change-event stream.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"masareef/internal/events"
	"masareef/internal/log"
	"masareef/internal/services"
)

type Server struct {
	http.Server

	records *services.RecordService
	reports *services.ReportService
	hub     *events.Hub

	auth        *authenticator
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logger      *log.Logger
	httpLogger  *log.HTTPLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// writeLimit mutations per writeWindow are allowed per client IP. hub may be
// nil; the event stream endpoint then reports unavailable.
func NewServer(addr string, records *services.RecordService, reports *services.ReportService, hub *events.Hub, jwtSecret string, writeLimit int, writeWindow time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	metrics := &securityMetrics{}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		records:     records,
		reports:     reports,
		hub:         hub,
		auth:        newAuthenticator(jwtSecret, metrics),
		rateLimiter: newRateLimiter(writeLimit, writeWindow),
		metrics:     metrics,
		logger:      httpLogger,
		httpLogger:  log.NewHTTPLogger(httpLogger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/expenses", s.protected(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.protected(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.protected(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/goals", s.protected(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.protected(s.handleCreateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.protected(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/profile", s.protected(s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.protected(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/notifications", s.protected(s.handleListNotifications))

	mux.HandleFunc("GET /api/dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /api/reports", s.protected(s.handleReport))
	mux.HandleFunc("GET /api/insights", s.protected(s.handleInsights))

	mux.HandleFunc("POST /api/reset", s.protected(s.handleReset))

	mux.HandleFunc("GET /api/events", s.protected(s.handleEventStream))

	// Every request gets a context logger tagged with its request id before
	// routing, so handlers and protected() share one trace.
	s.Handler = log.Middleware(s.logger)(log.RequestIDMiddleware(requestID)(mux))
	return s
}

// requestID honors an upstream-assigned id so traces correlate across
// proxies, minting a fresh one otherwise.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return generateRequestID()
}

// protected chains security headers, rate limiting and bearer-token auth
// around an owner-scoped handler.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()
		logger := log.FromContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(s.rateLimiter.window.Seconds())))
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ownerID, ok := s.auth.ownerID(r)
		if !ok {
			logger.WarnContext(ctx, "Unauthorized request",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			respondError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		r = r.WithContext(withOwner(r.Context(), ownerID))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLogger.LogRequest(ctx, r, rw.statusCode, time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer, which the
// event stream needs for flushing.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
