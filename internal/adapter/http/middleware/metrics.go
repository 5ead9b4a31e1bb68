package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// Metrics returns a middleware that records request counts and durations.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := routePattern(r)
			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern prefers the matched chi pattern and falls back to normalizePath.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// idSegments lists the path prefixes whose next segment is an identifier.
var idSegments = []struct {
	prefix string
	param  string
}{
	{"/api/v1/accounts/", "{number}"},
	{"/api/v1/loans/", "{id}"},
	{"/api/v1/admin/loans/", "{id}"},
}

// normalizePath replaces account numbers and loan IDs to keep label
// cardinality bounded: /api/v1/accounts/1000000001/deposits becomes
// /api/v1/accounts/{number}/deposits.
func normalizePath(path string) string {
	for _, seg := range idSegments {
		rest, ok := strings.CutPrefix(path, seg.prefix)
		if !ok || rest == "" {
			continue
		}

		suffix := ""
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			if i == 0 {
				return path
			}
			suffix = rest[i:]
		}
		return seg.prefix + seg.param + suffix
	}

	return path
}
