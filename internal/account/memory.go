package account

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/google/uuid"
)

type memKey struct {
	pt ProviderType
	id string
}

// MemoryDirectory es un Directory en proceso para desarrollo y tests.
type MemoryDirectory struct {
	mu         sync.RWMutex
	byProvider map[memKey]*Account
	byID       map[string]*Account
	now        func() time.Time
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byProvider: make(map[memKey]*Account),
		byID:       make(map[string]*Account),
		now:        time.Now,
	}
}

func (d *MemoryDirectory) FindByProvider(_ context.Context, pt ProviderType, providerID string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byProvider[memKey{pt, providerID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (d *MemoryDirectory) Create(_ context.Context, profile *userinfo.OAuthUserInfo, pt ProviderType) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := memKey{pt, profile.ProviderID}
	if _, ok := d.byProvider[k]; ok {
		return nil, ErrAlreadyExists
	}
	a := FromProfile(profile, pt)
	a.ID = uuid.NewString()
	a.CreatedAt = d.now().UTC()
	d.byProvider[k] = &a
	d.byID[a.ID] = &a
	cp := a
	return &cp, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (d *MemoryDirectory) Ping(context.Context) error { return nil }

// Len devuelve la cantidad de cuentas (tests).
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
