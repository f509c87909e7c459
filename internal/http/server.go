// Package http exposes the derivation engine and mutation operations as a
// JSON API. Handlers read snapshots from the record store and memoize the
// derived aggregates keyed by snapshot version, so a cached entry can never
// serve stale data for a newer snapshot.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/services"
)

type Server struct {
	http.Server
	store       *records.Store
	service     *services.RecordService
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Derived-aggregate memoization, keyed by snapshot version.
	summaryCache   *cache.LRUCache[core.Summary]
	breakdownCache *cache.LRUCache[[]core.CategoryAmount]
	trendCache     *cache.LRUCache[[]core.MonthPoint]
	cacheManager   *cache.Manager

	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server listening on addr.
func NewServer(addr string, store *records.Store, service *services.RecordService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server:         http.Server{Addr: addr},
		store:          store,
		service:        service,
		rateLimiter:    newRateLimiter(),
		metrics:        &securityMetrics{},
		summaryCache:   cache.NewLRUCache[core.Summary](16, 5*time.Minute),
		breakdownCache: cache.NewLRUCache[[]core.CategoryAmount](16, 5*time.Minute),
		trendCache:     cache.NewLRUCache[[]core.MonthPoint](16, 5*time.Minute),
		cacheManager:   cache.NewManager(),
		now:            time.Now,
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.breakdownCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/breakdown", s.handleBreakdown)
	mux.HandleFunc("/api/trend", s.handleTrend)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/goals/progress", s.handleGoalProgress)
	mux.HandleFunc("/healthz", s.handleHealth)

	var handler http.Handler = mux
	handler = s.withRateLimit(handler)
	handler = securityHeaders(handler)
	handler = log.RequestIDMiddleware(generateRequestID)(handler)
	handler = log.Middleware(logger)(handler)
	s.Handler = handler

	return s
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractClientIP(r)
		if !s.rateLimiter.allow(ip, s.metrics) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, ip, log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// securityHeaders applies a conservative header set to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
