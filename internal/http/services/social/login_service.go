package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// LoginService resuelve el perfil crudo del provider a una cuenta local.
type LoginService interface {
	// HandleLogin devuelve el id de la cuenta, creándola si no existe.
	// Idempotente por (provider, providerId): nunca duplica cuentas.
	HandleLogin(ctx context.Context, provider string, raw map[string]any) (string, error)
}

type LoginDeps struct {
	Registry *userinfo.Registry
	Accounts account.Directory
}

type loginService struct {
	deps LoginDeps
}

func NewLoginService(d LoginDeps) LoginService {
	return &loginService{deps: d}
}

func (s *loginService) HandleLogin(ctx context.Context, provider string, raw map[string]any) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.login"), logger.Provider(provider))

	extractor, err := s.deps.Registry.Get(provider)
	if err != nil {
		return "", err
	}
	info, err := extractor.ExtractUserInfo(raw)
	if err != nil {
		log.Warn("profile extraction failed", logger.Err(err))
		return "", err
	}
	pt, err := account.ParseProviderType(extractor.Provider())
	if err != nil {
		return "", err
	}

	acc, err := s.deps.Accounts.FindByProvider(ctx, pt, info.ProviderID)
	switch {
	case err == nil:
		// La cuenta existente es autoritativa: no se actualiza el perfil.
		return acc.ID, nil
	case !errors.Is(err, account.ErrNotFound):
		log.Error("account lookup failed", logger.Err(err))
		return "", fmt.Errorf("%w: %w", ErrAccountResolution, err)
	}

	acc, err = s.deps.Accounts.Create(ctx, info, pt)
	if errors.Is(err, account.ErrAlreadyExists) {
		// Otro request creó la cuenta entre el find y el create.
		acc, err = s.deps.Accounts.FindByProvider(ctx, pt, info.ProviderID)
	}
	if err != nil {
		log.Error("account create failed", logger.Err(err))
		return "", fmt.Errorf("%w: %w", ErrAccountResolution, err)
	}

	log.Info("account created", logger.SubjectID(acc.ID), logger.Email(info.Email))
	return acc.ID, nil
}
