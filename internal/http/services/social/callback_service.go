package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
)

// CallbackRequest es lo que el provider devolvió en la redirect URI más
// el intento leído (y ya borrado) de la cookie.
type CallbackRequest struct {
	Provider    string
	Code        string
	State       string
	Error       string // parámetro "error" del provider
	AuthRequest *authrequest.AuthorizationRequest
}

type CallbackResult struct {
	SubjectID string
	Tokens    *jwt.TokenPair
}

// CallbackService completa el authorization code flow y emite la sesión.
type CallbackService interface {
	Callback(ctx context.Context, in CallbackRequest) (*CallbackResult, error)
}

type CallbackDeps struct {
	Clients        *idp.Clients
	Login          LoginService
	Codec          *jwt.Codec
	ProviderTokens *tokenstore.ProviderTokens
	ProviderTTL    time.Duration
}

type callbackService struct {
	deps CallbackDeps
}

func NewCallbackService(d CallbackDeps) CallbackService {
	return &callbackService{deps: d}
}

func (s *callbackService) Callback(ctx context.Context, in CallbackRequest) (*CallbackResult, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	client, err := s.deps.Clients.Get(provider)
	if err != nil {
		// El nombre viene del path: solo providers registrados llegan a ser label.
		metrics.RecordLogin(metrics.UnknownProvider, "failure")
		return nil, err
	}
	res, err := s.callback(ctx, client, in)
	if err != nil {
		metrics.RecordLogin(client.Name(), "failure")
		return nil, err
	}
	metrics.RecordLogin(client.Name(), "success")
	return res, nil
}

func (s *callbackService) callback(ctx context.Context, client *idp.Client, in CallbackRequest) (*CallbackResult, error) {
	provider := client.Name()
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.callback"), logger.Provider(provider))

	if in.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderDenied, in.Error)
	}
	if in.AuthRequest == nil || !in.AuthRequest.MatchesState(in.State) || in.AuthRequest.RegistrationID != client.Name() {
		return nil, ErrInvalidState
	}
	if in.Code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidState)
	}

	tok, err := client.Exchange(ctx, in.Code, in.AuthRequest)
	if err != nil {
		return nil, err
	}
	raw, err := client.FetchProfile(ctx, tok)
	if err != nil {
		return nil, err
	}
	subject, err := s.deps.Login.HandleLogin(ctx, provider, raw)
	if err != nil {
		return nil, err
	}
	pair, err := s.deps.Codec.Issue(ctx, subject)
	if err != nil {
		return nil, err
	}

	if s.deps.ProviderTokens != nil && tok.AccessToken != "" {
		ttl := s.deps.ProviderTTL
		if !tok.Expiry.IsZero() {
			ttl = time.Until(tok.Expiry)
		}
		if ttl > 0 {
			memo := tokenstore.ProviderToken{Provider: provider, AccessToken: tok.AccessToken, Expiry: tok.Expiry}
			if err := s.deps.ProviderTokens.Put(ctx, subject, memo, ttl); err != nil {
				log.Warn("provider token not stored", logger.SubjectID(subject), logger.Err(err))
			}
		}
	}

	log.Info("social login completed", logger.SubjectID(subject))
	return &CallbackResult{SubjectID: subject, Tokens: pair}, nil
}
