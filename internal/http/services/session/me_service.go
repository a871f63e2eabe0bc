package session

import (
	"context"

	"github.com/dropDatabas3/socialgate/internal/account"
)

// MeService resuelve el subject autenticado a su cuenta.
type MeService interface {
	Me(ctx context.Context, subject string) (*account.Account, error)
}

type MeDeps struct {
	Accounts account.Directory
}

type meService struct {
	deps MeDeps
}

func NewMeService(d MeDeps) MeService {
	return &meService{deps: d}
}

func (s *meService) Me(ctx context.Context, subject string) (*account.Account, error) {
	if subject == "" {
		return nil, account.ErrNotFound
	}
	return s.deps.Accounts.FindByID(ctx, subject)
}
