package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDFrom returns the ID [RequestID] attached to ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestID reuses an incoming X-Request-ID or generates a UUID, stores it in the request context,
// and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = shared.GenerateID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// AccessLog writes one line per request with method, path, status, size, and duration.
func AccessLog(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if id := RequestIDFrom(r.Context()); id != "" {
				kv = append(kv, "request_id", id)
			}

			switch {
			case status >= 500:
				logger.Error("request", kv...)
			case status >= 400:
				logger.Warn("request", kv...)
			default:
				logger.Info("request", kv...)
			}
		})
	}
}

// RateLimit shares one token bucket across all clients. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows the given browser origins to call the API.
func CORS(origins []string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{"Content-Length", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// Recoverer turns a panicking handler into a 500 response.
func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}
