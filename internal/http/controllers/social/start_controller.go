package social

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/social"
	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// StartController handles social login start endpoint.
type StartController struct {
	service svc.StartService
	store   *authrequest.Store
}

// NewStartController creates a new StartController.
func NewStartController(service svc.StartService, store *authrequest.Store) *StartController {
	return &StartController{service: service, store: store}
}

// Start handles GET /oauth2/authorization/{provider}
func (c *StartController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("StartController.Start"), logger.Provider(provider))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	req, consentURL, err := c.service.Start(ctx, provider)
	if err != nil {
		if errors.Is(err, userinfo.ErrUnsupportedProvider) {
			log.Warn("unsupported provider")
			httperrors.WriteError(w, httperrors.ErrUnsupportedProvider)
			return
		}
		log.Error("start failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	if err := c.store.Save(w, req); err != nil {
		log.Error("authorization request not saved", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, consentURL, http.StatusFound)
	log.Debug("redirect to provider")
}
