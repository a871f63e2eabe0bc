// Package jwt emite y valida los tokens de sesión (HS256).
//
// Un token es válido si la firma verifica, no expiró y no está revocado.
// Las claims no se consultan en el servidor salvo para el chequeo de
// revocación y, en refresh tokens, que sea el refresh vigente del subject.
package jwt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 2 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
	minSecretBytes    = 32
	bearerPrefix      = "bearer "
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("expired token")
	ErrRevokedToken   = errors.New("revoked token")
	ErrInvalidSecret  = errors.New("jwt: signing secret must be base64 and at least 32 bytes")
)

// Kind distingue access de refresh; viaja en la claim "kind".
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type Claims struct {
	Kind Kind `json:"kind"`
	jwtv5.RegisteredClaims
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type Config struct {
	Secret     string // base64
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Codec struct {
	key     []byte
	cfg     Config
	revoked *tokenstore.RevocationStore
	refresh *tokenstore.RefreshStore
	now     func() time.Time
}

// DecodeSecret acepta base64 estándar o url-safe, con o sin padding.
func DecodeSecret(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			if len(b) < minSecretBytes {
				return nil, ErrInvalidSecret
			}
			return b, nil
		}
	}
	return nil, ErrInvalidSecret
}

func NewCodec(cfg Config, revoked *tokenstore.RevocationStore, refresh *tokenstore.RefreshStore) (*Codec, error) {
	key, err := DecodeSecret(cfg.Secret)
	if err != nil {
		return nil, err
	}
	if revoked == nil || refresh == nil {
		return nil, errors.New("jwt: revocation and refresh stores are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Codec{key: key, cfg: cfg, revoked: revoked, refresh: refresh, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// AccessTTL y RefreshTTL son las vidas efectivas, con defaults aplicados.
func (c *Codec) AccessTTL() time.Duration  { return c.cfg.AccessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

// StripBearer quita el prefijo "Bearer " (case-insensitive) si está.
func StripBearer(token string) string {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, strings.TrimSpace(bearerPrefix)) {
		return ""
	}
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}

// Issue firma un par access/refresh para subject y registra el refresh
// como el vigente del subject, reemplazando el anterior.
func (c *Codec) Issue(ctx context.Context, subject string) (*TokenPair, error) {
	if subject == "" {
		return nil, errors.New("jwt: subject is required")
	}
	now := c.now()
	access, accessExp, err := c.sign(subject, KindAccess, now, c.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := c.sign(subject, KindRefresh, now, c.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if err := c.refresh.Put(ctx, subject, refresh, c.cfg.RefreshTTL); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (c *Codec) sign(subject string, kind Kind, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    c.cfg.Issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

func (c *Codec) keyfunc(*jwtv5.Token) (any, error) { return c.key, nil }

func (c *Codec) parser(validate bool) *jwtv5.Parser {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(c.now),
	}
	if validate {
		opts = append(opts, jwtv5.WithExpirationRequired())
		if c.cfg.Issuer != "" {
			opts = append(opts, jwtv5.WithIssuer(c.cfg.Issuer))
		}
	} else {
		opts = append(opts, jwtv5.WithoutClaimsValidation())
	}
	return jwtv5.NewParser(opts...)
}

// Validate devuelve las claims de un token válido o uno de
// ErrMalformedToken / ErrExpiredToken / ErrRevokedToken. Un fallo del
// store de revocación se devuelve envuelto: el token no se acepta.
func (c *Codec) Validate(ctx context.Context, token string) (*Claims, error) {
	claims, err := c.validate(ctx, StripBearer(token))
	metrics.RecordVerification(ResultLabel(err))
	return claims, err
}

func (c *Codec) validate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}
	claims := &Claims{}
	if _, err := c.parser(true).ParseWithClaims(token, claims, c.keyfunc); err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}
	if claims.Subject == "" || (claims.Kind != KindAccess && claims.Kind != KindRefresh) {
		return nil, ErrMalformedToken
	}

	revoked, err := c.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	if claims.Kind == KindRefresh {
		current, err := c.refresh.Matches(ctx, claims.Subject, token)
		if err != nil {
			return nil, err
		}
		if !current {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Verify nunca falla: cualquier error es "inválido".
func (c *Codec) Verify(ctx context.Context, token string) bool {
	_, err := c.Validate(ctx, token)
	if err != nil {
		logger.From(ctx).Debug("token rejected",
			logger.Component("jwt"), logger.Token(StripBearer(token)), logger.Reason(ResultLabel(err)))
	}
	return err == nil
}

// ResultLabel clasifica el resultado de Validate para logs y métricas.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrRevokedToken):
		return "revoked"
	default:
		return "error"
	}
}

// Inspect parsea verificando firma pero no tiempos: sirve para retirar
// tokens ya vencidos. Firma inválida => ErrMalformedToken.
func (c *Codec) Inspect(token string) (*Claims, error) {
	token = StripBearer(token)
	claims := &Claims{}
	if _, err := c.parser(false).ParseWithClaims(token, claims, c.keyfunc); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// ExtractSubject acepta tokens vencidos pero no tokens con firma inválida.
func (c *Codec) ExtractSubject(token string) (string, error) {
	claims, err := c.Inspect(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}

// Revoke registra el token con TTL = vida restante; si ya venció no hace nada.
func (c *Codec) Revoke(ctx context.Context, token string) error {
	token = StripBearer(token)
	claims, err := c.Inspect(token)
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return ErrMalformedToken
	}
	now := c.now()
	remaining := claims.ExpiresAt.Time.Sub(now)
	if remaining <= 0 {
		return nil
	}
	if err := c.revoked.Revoke(ctx, token, now, remaining); err != nil {
		return err
	}
	metrics.RecordRevocation(string(claims.Kind))
	logger.From(ctx).Debug("token revoked",
		logger.Component("jwt"), logger.TokenKind(string(claims.Kind)), logger.Token(token))
	return nil
}

// RevokeSession retira el par del subject: revoca ambos tokens y borra
// el registro de refresh. refreshToken puede venir vacío.
func (c *Codec) RevokeSession(ctx context.Context, subject, accessToken, refreshToken string) error {
	var errs []error
	if accessToken != "" {
		if err := c.Revoke(ctx, accessToken); err != nil {
			errs = append(errs, fmt.Errorf("access: %w", err))
		}
	}
	if refreshToken != "" {
		if sub, err := c.ExtractSubject(refreshToken); err == nil && sub == subject {
			if err := c.Revoke(ctx, refreshToken); err != nil {
				errs = append(errs, fmt.Errorf("refresh: %w", err))
			}
		}
	}
	if subject != "" {
		if err := c.refresh.Delete(ctx, subject); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
