package session

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/socialgate/internal/account"
	dto "github.com/dropDatabas3/socialgate/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	"github.com/dropDatabas3/socialgate/internal/http/middlewares"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/session"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// MeController handles GET /api/me.
type MeController struct {
	service svc.MeService
}

func NewMeController(service svc.MeService) *MeController {
	return &MeController{service: service}
}

func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := middlewares.GetSubject(ctx)

	acc, err := c.service.Me(ctx, subject)
	switch {
	case errors.Is(err, account.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("account not found"))
		return
	case err != nil:
		logger.From(ctx).Error("account lookup failed",
			logger.Layer("controller"), logger.Op("MeController.Me"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithCause(err))
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{
		ID:              acc.ID,
		Provider:        string(acc.ProviderType),
		DisplayName:     acc.DisplayName,
		Email:           acc.Email,
		ProfileImageURL: acc.ProfileImageURL,
		Gender:          string(acc.Gender),
		BirthDate:       acc.BirthDate,
		CreatedAt:       acc.CreatedAt,
	})
}
