package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/socialgate/internal/http/controllers"
	mw "github.com/dropDatabas3/socialgate/internal/http/middlewares"
)

func registerSessionRoutes(r chi.Router, c *controllers.Controllers) {
	// POST /api/auth/logout (allow-list: funciona con tokens vencidos)
	r.With(mw.WithNoStore()).Post("/api/auth/logout", c.Session.Logout.Logout)

	// GET /api/me (requiere subject)
	r.With(mw.RequireSubject()).Get("/api/me", c.Session.Me.Me)
}
