// Package session contiene los services de la sesión ya emitida:
// logout (revocación) y lectura del subject autenticado.
package session

import (
	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
)

// Deps contiene las dependencias para crear los services session.
type Deps struct {
	Codec          *jwt.Codec
	Accounts       account.Directory
	Clients        *idp.Clients               // opcional
	ProviderTokens *tokenstore.ProviderTokens // opcional
}

// Services agrupa todos los services del dominio session.
type Services struct {
	Logout LogoutService
	Me     MeService
}

// NewServices crea el agregador de services session.
func NewServices(d Deps) Services {
	return Services{
		Logout: NewLogoutService(LogoutDeps{
			Codec:          d.Codec,
			Clients:        d.Clients,
			ProviderTokens: d.ProviderTokens,
		}),
		Me: NewMeService(MeDeps{Accounts: d.Accounts}),
	}
}
