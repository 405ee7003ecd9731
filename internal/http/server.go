package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/OzanA78/doviz-hesaplama/internal/cache"
	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/provider"
	appweb "github.com/OzanA78/doviz-hesaplama/web"
)

// PlanStore is the persistence port for named plans.
type PlanStore interface {
	SavePlan(ctx context.Context, name string, plan engine.Plan) error
	LoadPlan(ctx context.Context, name string) (engine.Plan, error)
	ListPlans(ctx context.Context) ([]string, error)
	DeletePlan(ctx context.Context, name string) error
}

type Server struct {
	http.Server
	source      provider.PriceSource
	plans       PlanStore // nil disables the plan endpoints
	rateLimiter *rateLimiter

	histCache    *cache.LRUCache[[]engine.PricePoint]
	currentCache *cache.LRUCache[engine.CurrentPrice]
	cacheMgr     *cache.Manager

	shutdownOnce sync.Once
}

const (
	histCacheKey    = "historical"
	currentCacheKey = "current"
)

// NewServer configures routes and caches, returning a ready-to-run
// http.Server. Price responses are cached for cacheTTL; the upstream
// spreadsheet changes at most a few times a day.
func NewServer(addr string, src provider.PriceSource, plans PlanStore, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		source:       src,
		plans:        plans,
		rateLimiter:  newRateLimiter(),
		histCache:    cache.NewLRUCache[[]engine.PricePoint](4, cacheTTL),
		currentCache: cache.NewLRUCache[engine.CurrentPrice](4, cacheTTL),
		cacheMgr:     cache.NewManager(),
	}
	s.cacheMgr.Register(s.histCache)
	s.cacheMgr.Register(s.currentCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		mux.Handle("/", http.FileServer(http.FS(sub)))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/historical-data", s.withCommonHeaders(s.handleHistoricalData))
	mux.HandleFunc("/api/current-price", s.withCommonHeaders(s.handleCurrentPrice))
	mux.HandleFunc("/api/plans", s.withCommonHeaders(s.handleListPlans))
	mux.HandleFunc("/api/plans/", s.withCommonHeaders(s.handlePlan))

	return s
}

// InvalidatePriceCaches drops the cached price responses. Called when
// a prices-updated event arrives from the refresh worker.
func (s *Server) InvalidatePriceCaches() {
	s.histCache.Delete(histCacheKey)
	s.currentCache.Delete(currentCacheKey)
}

// Shutdown gracefully stops the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withCommonHeaders adds security headers, rate limiting on mutating
// methods, and request logging.
func (s *Server) withCommonHeaders(next http.HandlerFunc) http.HandlerFunc {
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
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if (r.Method == http.MethodPut || r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
