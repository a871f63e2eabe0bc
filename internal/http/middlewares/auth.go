package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// DefaultAllowList son los prefijos que no pasan por el filtro.
var DefaultAllowList = []string{
	"/oauth2/",
	"/login",
	"/api/auth/logout",
	"/error",
	"/favicon.ico",
	"/readyz",
	"/metrics",
}

// TokenValidator es la parte del codec que usa el filtro.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*jwt.Claims, error)
}

type AuthConfig struct {
	Validator TokenValidator
	AllowList []string
	// AllowCookieToken lee la cookie de access token cuando no hay header.
	AllowCookieToken bool
	CookieName       string
}

// Authenticate es el filtro de requests:
//   - prefijo en AllowList: pasa sin mirar el token
//   - sin Authorization Bearer: pasa sin autenticar
//   - token inválido, vencido o revocado: 401 uniforme
//   - token válido: subject y claims al contexto
func Authenticate(cfg AuthConfig) Middleware {
	allow := cfg.AllowList
	if allow == nil {
		allow = DefaultAllowList
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed(allow, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			raw := bearerToken(r)
			if raw == "" && cfg.AllowCookieToken && cfg.CookieName != "" {
				raw = helpers.ReadCookie(r, cfg.CookieName)
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := cfg.Validator.Validate(r.Context(), raw)
			if err == nil && claims.Kind != jwt.KindAccess {
				err = jwt.ErrMalformedToken
			}
			if err != nil {
				logger.From(r.Context()).Info("request rejected",
					logger.Layer("http"),
					logger.Component("authenticate"),
					logger.Token(raw),
					logger.Reason(jwt.ResultLabel(err)),
				)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.SubjectID(claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSubject rechaza requests anónimos. Va después de Authenticate.
func RequireSubject() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSubject(r.Context()) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowed(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// bearerToken devuelve "" si no hay header o el esquema no es Bearer.
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("bearer ") || !strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("bearer "):])
}
