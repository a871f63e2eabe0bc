package social

import (
	"net/http"
	"net/url"
	"time"

	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/social"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// SuccessHandler deja la sesión en cookies y vuelve al front-end.
// Los tokens nunca viajan en la URL.
type SuccessHandler struct {
	cookies    helpers.SessionCookies
	successURL string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSuccessHandler(cookies helpers.SessionCookies, successURL string, accessTTL, refreshTTL time.Duration) *SuccessHandler {
	return &SuccessHandler{cookies: cookies, successURL: successURL, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (h *SuccessHandler) Handle(w http.ResponseWriter, r *http.Request, res *svc.CallbackResult) {
	h.cookies.Set(w, res.Tokens.AccessToken, res.Tokens.RefreshToken, h.accessTTL, h.refreshTTL)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, r, h.successURL, http.StatusFound)
}

// FailureHandler redirige a la página de error con un código público.
type FailureHandler struct {
	errorURL string
}

func NewFailureHandler(errorURL string) *FailureHandler {
	return &FailureHandler{errorURL: errorURL}
}

func (h *FailureHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	code := svc.FailureCode(err)
	logger.From(r.Context()).Warn("social login failed",
		logger.Layer("controller"), logger.Component("social.failure"),
		logger.Reason(code), logger.Err(err))

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, withErrorCode(h.errorURL, code), http.StatusFound)
}

func withErrorCode(base, code string) string {
	u, err := url.Parse(base)
	if err != nil {
		return "/error?error=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set("error", code)
	u.RawQuery = q.Encode()
	return u.String()
}
