package social

import (
	"context"

	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// StartService abre un intento de login contra el provider.
type StartService interface {
	// Start devuelve el intento a guardar en la cookie y la URL de consentimiento.
	Start(ctx context.Context, provider string) (*authrequest.AuthorizationRequest, string, error)
}

type StartDeps struct {
	Clients *idp.Clients
}

type startService struct {
	deps StartDeps
}

func NewStartService(d StartDeps) StartService {
	return &startService{deps: d}
}

func (s *startService) Start(ctx context.Context, provider string) (*authrequest.AuthorizationRequest, string, error) {
	client, err := s.deps.Clients.Get(provider)
	if err != nil {
		return nil, "", err
	}
	req, err := client.NewAuthorizationRequest()
	if err != nil {
		return nil, "", err
	}
	logger.From(ctx).Debug("authorization started",
		logger.Layer("service"), logger.Component("social.start"), logger.Provider(client.Name()))
	return req, client.AuthCodeURL(req), nil
}
