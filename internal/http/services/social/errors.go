package social

import (
	"errors"

	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
)

var (
	// ErrAccountResolution: el Account Directory falló al buscar o crear.
	ErrAccountResolution = errors.New("account resolution failed")
	// ErrProviderDenied: el provider devolvió error en el callback (usuario canceló, etc).
	ErrProviderDenied = errors.New("provider denied authorization")
	// ErrInvalidState: sin intento en vuelo, state distinto o intento de otro provider.
	ErrInvalidState = errors.New("invalid or missing authorization state")
)

// Códigos que viajan al front-end en ?error=. Nunca el mensaje interno.
const (
	FailureAccessDenied        = "access_denied"
	FailureInvalidState        = "invalid_state"
	FailureUnsupportedProvider = "unsupported_provider"
	FailureLoginFailed         = "login_failed"
)

// FailureCode reduce cualquier error del login a un código público.
func FailureCode(err error) string {
	switch {
	case errors.Is(err, ErrProviderDenied):
		return FailureAccessDenied
	case errors.Is(err, ErrInvalidState):
		return FailureInvalidState
	case errors.Is(err, userinfo.ErrUnsupportedProvider):
		return FailureUnsupportedProvider
	default:
		return FailureLoginFailed
	}
}
