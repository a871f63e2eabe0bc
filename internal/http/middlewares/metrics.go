package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/socialgate/internal/metrics"
)

// WithMetrics instrumenta requests HTTP (contador y latencia). La ruta se
// etiqueta con el patrón de chi para no explotar la cardinalidad.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			method := strings.ToUpper(r.Method)
			path := routeLabel(r)
			metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		})
	}
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
