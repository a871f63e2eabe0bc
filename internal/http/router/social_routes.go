package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/socialgate/internal/http/controllers"
	mw "github.com/dropDatabas3/socialgate/internal/http/middlewares"
	"github.com/dropDatabas3/socialgate/internal/rate"
)

// registerSocialRoutes registra el authorization code flow. Ambas rutas
// están en la allow-list del filtro y limitadas por IP.
func registerSocialRoutes(r chi.Router, c *controllers.Controllers, limiter rate.Limiter) {
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.WithRateLimit(limiter, mw.IPOnlyRateKey))

		// GET /oauth2/authorization/{provider}
		r.Get("/oauth2/authorization/{provider}", c.Social.Start.Start)

		// GET /login/oauth2/code/{provider}
		r.Get("/login/oauth2/code/{provider}", c.Social.Callback.Callback)
	})
}
