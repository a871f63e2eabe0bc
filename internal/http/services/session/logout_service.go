package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
	"go.uber.org/zap"
)

// ErrRevocationFailed: el Credential Store no aceptó la revocación; los
// tokens siguen siendo válidos del lado servidor.
var ErrRevocationFailed = errors.New("session revocation failed")

// LogoutRequest lleva los tokens tal como llegaron (header o cookies).
type LogoutRequest struct {
	AccessToken  string
	RefreshToken string
}

// LogoutService retira la sesión del lado servidor.
type LogoutService interface {
	// Logout devuelve el subject retirado ("" si no había sesión reconocible).
	// Sin sesión no es error: el logout es idempotente.
	Logout(ctx context.Context, in LogoutRequest) (string, error)
}

type LogoutDeps struct {
	Codec          *jwt.Codec
	Clients        *idp.Clients
	ProviderTokens *tokenstore.ProviderTokens
}

type logoutService struct {
	deps LogoutDeps
}

func NewLogoutService(d LogoutDeps) LogoutService {
	return &logoutService{deps: d}
}

func (s *logoutService) Logout(ctx context.Context, in LogoutRequest) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("session.logout"), logger.Op("Logout"))

	access := jwt.StripBearer(in.AccessToken)
	refresh := jwt.StripBearer(in.RefreshToken)

	// El subject sale de tokens vencidos también; firma inválida se ignora.
	subject, err := s.deps.Codec.ExtractSubject(access)
	if err != nil {
		access = ""
		subject, err = s.deps.Codec.ExtractSubject(refresh)
		if err != nil {
			log.Debug("logout without recognizable session")
			return "", nil
		}
	}
	log = log.With(logger.SubjectID(subject))

	if err := s.deps.Codec.RevokeSession(ctx, subject, access, refresh); err != nil {
		log.Error("session revocation failed", logger.Err(err))
		return subject, fmt.Errorf("%w: %w", ErrRevocationFailed, err)
	}

	s.revokeAtProvider(ctx, log, subject)
	log.Info("session revoked")
	return subject, nil
}

// revokeAtProvider es best-effort: cualquier fallo queda en el log.
func (s *logoutService) revokeAtProvider(ctx context.Context, log *zap.Logger, subject string) {
	if s.deps.ProviderTokens == nil || s.deps.Clients == nil {
		return
	}
	memo, err := s.deps.ProviderTokens.Take(ctx, subject)
	if err != nil {
		log.Warn("provider token lookup failed", logger.Err(err))
		return
	}
	if memo == nil {
		return
	}
	client, err := s.deps.Clients.Get(memo.Provider)
	if err != nil {
		log.Warn("provider no longer enabled", logger.Provider(memo.Provider))
		return
	}
	if err := client.Revoke(ctx, memo.AccessToken); err != nil {
		log.Warn("provider logout failed", logger.Provider(memo.Provider), logger.Err(err))
		return
	}
	log.Debug("provider logout completed", logger.Provider(memo.Provider))
}
