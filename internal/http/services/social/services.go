// Package social contiene los services del login federado: inicio del
// authorization code flow, callback y resolución de la cuenta local.
package social

import (
	"time"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
)

// Deps contiene las dependencias para crear los services social.
type Deps struct {
	Registry       *userinfo.Registry
	Accounts       account.Directory
	Clients        *idp.Clients
	Codec          *jwt.Codec
	ProviderTokens *tokenstore.ProviderTokens // opcional: sin él no hay revoke en el provider
	ProviderTTL    time.Duration              // TTL del memo cuando el provider no informa expiry
}

// Services agrupa todos los services del dominio social.
type Services struct {
	Login    LoginService
	Start    StartService
	Callback CallbackService
}

func NewServices(d Deps) Services {
	login := NewLoginService(LoginDeps{Registry: d.Registry, Accounts: d.Accounts})
	return Services{
		Login: login,
		Start: NewStartService(StartDeps{Clients: d.Clients}),
		Callback: NewCallbackService(CallbackDeps{
			Clients:        d.Clients,
			Login:          login,
			Codec:          d.Codec,
			ProviderTokens: d.ProviderTokens,
			ProviderTTL:    d.ProviderTTL,
		}),
	}
}
