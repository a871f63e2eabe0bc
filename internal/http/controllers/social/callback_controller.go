package social

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/socialgate/internal/http/errors"
	svc "github.com/dropDatabas3/socialgate/internal/http/services/social"
	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// CallbackController handles the provider redirect back to us.
type CallbackController struct {
	service svc.CallbackService
	store   *authrequest.Store
	success *SuccessHandler
	failure *FailureHandler
}

// NewCallbackController creates a new CallbackController.
func NewCallbackController(service svc.CallbackService, store *authrequest.Store, success *SuccessHandler, failure *FailureHandler) *CallbackController {
	return &CallbackController{service: service, store: store, success: success, failure: failure}
}

// Callback handles GET /login/oauth2/code/{provider}
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"), logger.Provider(provider))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	// El intento se consume siempre, salga bien o mal.
	authReq := c.store.Remove(w, r)

	q := r.URL.Query()
	if idpError := strings.TrimSpace(q.Get("error")); idpError != "" {
		log.Warn("IDP error",
			logger.String("error", idpError),
			logger.String("description", strings.TrimSpace(q.Get("error_description"))),
		)
	}

	res, err := c.service.Callback(ctx, svc.CallbackRequest{
		Provider:    provider,
		Code:        strings.TrimSpace(q.Get("code")),
		State:       strings.TrimSpace(q.Get("state")),
		Error:       strings.TrimSpace(q.Get("error")),
		AuthRequest: authReq,
	})
	if err != nil {
		c.failure.Handle(w, r, err)
		return
	}
	c.success.Handle(w, r, res)
}
