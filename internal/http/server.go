// Package http exposes the state store as a JSON API. Every mutating
// endpoint runs the corresponding store operation and answers with the
// resulting snapshot, so clients render exactly what the store holds.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "github.com/agustinEspinozaTech/gestor-de-gastos/internal/log"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
)

type Server struct {
	http.Server
	store       *store.Store
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, st *store.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       st,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/login", s.withRequestLog(s.handleLogin))
	mux.HandleFunc("POST /api/register", s.withRequestLog(s.handleRegister))
	mux.HandleFunc("POST /api/logout", s.withRequestLog(s.handleLogout))
	mux.HandleFunc("POST /api/refresh", s.withRequestLog(s.handleRefresh))

	mux.HandleFunc("GET /api/state", s.withRequestLog(s.handleState))
	mux.HandleFunc("GET /api/totals", s.withRequestLog(s.handleTotals))

	mux.HandleFunc("POST /api/items", s.withRequestLog(s.handleAddItem))
	mux.HandleFunc("PATCH /api/items/{id}", s.withRequestLog(s.handleUpdateItem))
	mux.HandleFunc("DELETE /api/items/{id}", s.withRequestLog(s.handleRemoveItem))
	mux.HandleFunc("POST /api/adjustment", s.withRequestLog(s.handleAdjustment))

	mux.HandleFunc("POST /api/shopping", s.withRequestLog(s.handleAddShoppingItem))
	mux.HandleFunc("PATCH /api/shopping/{id}", s.withRequestLog(s.handleUpdateShoppingItem))
	mux.HandleFunc("DELETE /api/shopping/{id}", s.withRequestLog(s.handleRemoveShoppingItem))
	mux.HandleFunc("POST /api/shopping/{id}/purchase", s.withRequestLog(s.handlePurchase))

	return s
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

// withRequestLog adds security headers, rate limiting for mutations, and
// request logging with a per-request id.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := applog.FromContext(r.Context()).
			WithComponent(applog.ComponentHTTP).
			With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	return "req_" + uuid.NewString()[:8]
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
