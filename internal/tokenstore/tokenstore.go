// Package tokenstore implementa los registros de token sobre el
// credential store (internal/cache):
//
//	revoked:<sha256(token)>  -> timestamp de revocación, TTL = vida restante
//	refresh:<subject>        -> refresh token vigente, TTL = vida del refresh
//	idp:<subject>            -> access token del provider, sellado
//
// El store durable es la fuente de verdad. La cache local de RevocationStore
// solo guarda positivos y nunca decide que un token NO está revocado.
package tokenstore

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
	"github.com/dropDatabas3/socialgate/internal/security/token"
	gocache "github.com/patrickmn/go-cache"
)

const (
	revokedPrefix = "revoked:"
	refreshPrefix = "refresh:"
	idpPrefix     = "idp:"

	localRevokedTTL = time.Minute
)

// ErrNoRefreshToken: no hay refresh token vigente para el subject.
var ErrNoRefreshToken = errors.New("tokenstore: no refresh token for subject")

func tokenKey(token string) string {
	return revokedPrefix + tokens.SHA256Hex(token)
}

// ─── Revocation ───

type RevocationStore struct {
	durable cache.Client
	local   *gocache.Cache
}

func NewRevocationStore(c cache.Client) *RevocationStore {
	return &RevocationStore{
		durable: c,
		local:   gocache.New(localRevokedTTL, 2*localRevokedTTL),
	}
}

// Revoke registra el token hasta que expire por sí mismo. ttl <= 0 es no-op.
func (s *RevocationStore) Revoke(ctx context.Context, token string, at time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := tokenKey(token)
	if err := s.durable.Set(ctx, key, strconv.FormatInt(at.Unix(), 10), ttl); err != nil {
		return fmt.Errorf("tokenstore: revoke: %w", err)
	}
	s.local.Set(key, struct{}{}, min(ttl, localRevokedTTL))
	return nil
}

// IsRevoked consulta la cache local y luego el store durable.
// Un error del store durable se devuelve; el caller decide fallar cerrado.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := tokenKey(token)
	if _, ok := s.local.Get(key); ok {
		return true, nil
	}
	ok, err := s.durable.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("tokenstore: revocation lookup: %w", err)
	}
	if ok {
		s.local.SetDefault(key, struct{}{})
	}
	return ok, nil
}

// ─── Refresh ───

// RefreshStore guarda a lo sumo un refresh token por subject; Put reemplaza.
type RefreshStore struct {
	c cache.Client
}

func NewRefreshStore(c cache.Client) *RefreshStore { return &RefreshStore{c: c} }

func (s *RefreshStore) Put(ctx context.Context, subject, token string, ttl time.Duration) error {
	if err := s.c.Set(ctx, refreshPrefix+subject, token, ttl); err != nil {
		return fmt.Errorf("tokenstore: put refresh: %w", err)
	}
	return nil
}

func (s *RefreshStore) Get(ctx context.Context, subject string) (string, error) {
	v, err := s.c.Get(ctx, refreshPrefix+subject)
	if cache.IsNotFound(err) {
		return "", ErrNoRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: get refresh: %w", err)
	}
	return v, nil
}

// Matches indica si token es el refresh vigente del subject.
func (s *RefreshStore) Matches(ctx context.Context, subject, token string) (bool, error) {
	cur, err := s.Get(ctx, subject)
	if errors.Is(err, ErrNoRefreshToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(cur), []byte(token)) == 1, nil
}

func (s *RefreshStore) Delete(ctx context.Context, subject string) error {
	if err := s.c.Delete(ctx, refreshPrefix+subject); err != nil {
		return fmt.Errorf("tokenstore: delete refresh: %w", err)
	}
	return nil
}

// ─── Provider tokens ───

// ProviderToken es lo mínimo para llamar al logout/unlink del provider.
type ProviderToken struct {
	Provider    string    `json:"provider"`
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

// ProviderTokens guarda el token del provider sellado con secretbox.
type ProviderTokens struct {
	c   cache.Client
	box *secretbox.Box
}

func NewProviderTokens(c cache.Client, box *secretbox.Box) *ProviderTokens {
	return &ProviderTokens{c: c, box: box}
}

func (s *ProviderTokens) Put(ctx context.Context, subject string, tok ProviderToken, ttl time.Duration) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("tokenstore: encode provider token: %w", err)
	}
	sealed, err := s.box.Seal(raw)
	if err != nil {
		return fmt.Errorf("tokenstore: seal provider token: %w", err)
	}
	if err := s.c.Set(ctx, idpPrefix+subject, sealed, ttl); err != nil {
		return fmt.Errorf("tokenstore: put provider token: %w", err)
	}
	return nil
}

// Take lee y borra. (nil, nil) si no hay registro o no se puede abrir.
func (s *ProviderTokens) Take(ctx context.Context, subject string) (*ProviderToken, error) {
	key := idpPrefix + subject
	v, err := s.c.Get(ctx, key)
	if cache.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore: get provider token: %w", err)
	}
	if err := s.c.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("tokenstore: delete provider token: %w", err)
	}
	plain, err := s.box.Open(v)
	if err != nil {
		return nil, nil
	}
	var tok ProviderToken
	if err := json.Unmarshal(plain, &tok); err != nil {
		return nil, nil
	}
	return &tok, nil
}
