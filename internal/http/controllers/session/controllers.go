// Package session contains controllers for session-related endpoints.
package session

import (
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/session"
)

// Controllers agrupa todos los controllers del dominio session.
type Controllers struct {
	Logout *LogoutController
	Me     *MeController
}

// NewControllers creates the session controllers aggregator.
func NewControllers(s svc.Services, cookies helpers.SessionCookies) *Controllers {
	return &Controllers{
		Logout: NewLogoutController(s.Logout, cookies),
		Me:     NewMeController(s.Me),
	}
}
