// Package controllers agrupa todos los controllers HTTP.
// Este es el "composition root" de controllers:
//
//  1. deps := services Deps{...}         ← dependencias externas
//  2. svcs := <dominio>.NewServices(...) ← services por dominio
//  3. ctrls := controllers.New(...)      ← controllers con services
//  4. router.New(router.Deps{...})       ← rutas con controllers
package controllers

import (
	"github.com/dropDatabas3/socialgate/internal/http/controllers/health"
	"github.com/dropDatabas3/socialgate/internal/http/controllers/session"
	"github.com/dropDatabas3/socialgate/internal/http/controllers/social"
	healthsvc "github.com/dropDatabas3/socialgate/internal/http/services/health"
	sessionsvc "github.com/dropDatabas3/socialgate/internal/http/services/session"
	socialsvc "github.com/dropDatabas3/socialgate/internal/http/services/social"
)

// Services agrupa los services de todos los dominios.
type Services struct {
	Social  socialsvc.Services
	Session sessionsvc.Services
	Health  healthsvc.HealthService
}

// Controllers es el aggregator principal.
type Controllers struct {
	Social  *social.Controllers
	Session *session.Controllers
	Health  *health.HealthController
}

// New crea todos los controllers. Social y session comparten la misma
// configuración de cookies para que el logout borre lo que el login escribió.
func New(s Services, socialDeps social.ControllerDeps) *Controllers {
	return &Controllers{
		Social:  social.NewControllers(s.Social, socialDeps),
		Session: session.NewControllers(s.Session, socialDeps.Cookies),
		Health:  health.NewHealthController(s.Health),
	}
}
