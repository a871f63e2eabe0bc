package session

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/socialgate/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/session"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// LogoutController handles POST /api/auth/logout.
type LogoutController struct {
	service svc.LogoutService
	cookies helpers.SessionCookies
}

func NewLogoutController(service svc.LogoutService, cookies helpers.SessionCookies) *LogoutController {
	return &LogoutController{service: service, cookies: cookies}
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	access, refresh := c.cookies.Read(r)
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		access = h
	}

	_, err := c.service.Logout(ctx, svc.LogoutRequest{AccessToken: access, RefreshToken: refresh})

	// Las cookies se borran aunque la revocación falle.
	c.cookies.Clear(w)
	if err != nil {
		log.Error("logout failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, dto.LogoutResponse{Success: true})
}
