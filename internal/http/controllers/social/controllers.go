// Package social contiene los controllers del login federado.
package social

import (
	"time"

	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/social"
	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
)

// ControllerDeps contiene la configuración que los controllers necesitan
// además de los services.
type ControllerDeps struct {
	AuthRequests *authrequest.Store
	Cookies      helpers.SessionCookies
	SuccessURL   string
	ErrorURL     string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// Controllers agrupa todos los controllers del dominio social.
type Controllers struct {
	Start    *StartController
	Callback *CallbackController
}

// NewControllers crea el aggregator de controllers social.
func NewControllers(s svc.Services, d ControllerDeps) *Controllers {
	success := NewSuccessHandler(d.Cookies, d.SuccessURL, d.AccessTTL, d.RefreshTTL)
	failure := NewFailureHandler(d.ErrorURL)
	return &Controllers{
		Start:    NewStartController(s.Start, d.AuthRequests),
		Callback: NewCallbackController(s.Callback, d.AuthRequests, success, failure),
	}
}
