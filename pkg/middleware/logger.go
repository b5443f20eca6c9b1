package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Observer receives the outcome of every request passing through Logger.
type Observer func(method, status string, duration time.Duration)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger returns middleware that logs each request's method, URI, status,
// address, and duration. Optional observers receive the same measurements.
func Logger(logger *slog.Logger, observers ...Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			logger.Info(
				"request",
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", rec.status,
				"addr", r.RemoteAddr,
				"duration", elapsed,
			)

			status := strconv.Itoa(rec.status)
			for _, observe := range observers {
				observe(r.Method, status, elapsed)
			}
		})
	}
}
