// Package router arma el árbol de rutas chi y la cadena de middlewares global.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/socialgate/internal/http/controllers"
	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	mw "github.com/dropDatabas3/socialgate/internal/http/middlewares"
	"github.com/dropDatabas3/socialgate/internal/rate"
)

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Controllers *controllers.Controllers
	Auth        mw.AuthConfig

	// RateLimiter es opcional; se aplica a inicio y callback del login.
	RateLimiter rate.Limiter

	// Gatherer para /metrics; nil usa el registry default de prometheus.
	Gatherer prometheus.Gatherer
}

// New devuelve el handler raíz. Cadena global:
// recover → request id → security headers → metrics → logging → authenticate.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(),
		mw.WithLogging(),
		mw.Authenticate(d.Auth),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	c := d.Controllers
	registerSocialRoutes(r, c, d.RateLimiter)
	registerSessionRoutes(r, c)
	registerHealthRoutes(r, c, d.Gatherer)
	return r
}
