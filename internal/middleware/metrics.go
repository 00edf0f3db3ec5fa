package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"memoryjournal/internal/metrics"
)

// Metrics records request counts and latency keyed by the matched chi
// route pattern, so ids in the path do not explode label cardinality.
func Metrics(rec metrics.Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				rec.ObserveRequest(routePattern(r), r.Method, ww.Status(), time.Since(start))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
