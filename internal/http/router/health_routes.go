package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/socialgate/internal/http/controllers"
)

// registerHealthRoutes registra /readyz y /metrics, ambos públicos.
func registerHealthRoutes(r chi.Router, c *controllers.Controllers, g prometheus.Gatherer) {
	r.Get("/readyz", c.Health.Readyz)

	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.Method("GET", "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
