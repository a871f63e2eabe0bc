package middlewares

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/rate"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
)

func newCodec(t *testing.T) *jwt.Codec {
	t.Helper()
	store := cache.NewMemory("")
	c, err := jwt.NewCodec(jwt.Config{Secret: base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("s"), 32))},
		tokenstore.NewRevocationStore(store), tokenstore.NewRefreshStore(store))
	require.NoError(t, err)
	return c
}

// echoSubject responde con el subject del contexto ("-" si es anónimo).
var echoSubject = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	sub := GetSubject(r.Context())
	if sub == "" {
		sub = "-"
	}
	_, _ = w.Write([]byte(sub))
})

func serve(h http.Handler, path, authz string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		r.Header.Set("Authorization", authz)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	codec := newCodec(t)
	h := Chain(echoSubject, Authenticate(AuthConfig{Validator: codec}))

	pair, err := codec.Issue(ctx, "acc-1")
	require.NoError(t, err)

	t.Run("valid token attaches subject", func(t *testing.T) {
		rec := serve(h, "/api/me", "Bearer "+pair.AccessToken)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acc-1", rec.Body.String())
	})

	t.Run("no header passes anonymous", func(t *testing.T) {
		rec := serve(h, "/api/me", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "-", rec.Body.String())
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		rec := serve(h, "/api/me", "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Bearer error="invalid_token"`, rec.Header().Get("WWW-Authenticate"))
		assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
	})

	t.Run("refresh token is not an access credential", func(t *testing.T) {
		rec := serve(h, "/api/me", "Bearer "+pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("allow-list bypasses the filter", func(t *testing.T) {
		for _, p := range []string{"/oauth2/authorization/kakao", "/login/oauth2/code/kakao", "/api/auth/logout", "/error", "/favicon.ico"} {
			rec := serve(h, p, "Bearer not-a-jwt")
			assert.Equal(t, http.StatusOK, rec.Code, p)
		}
	})

	t.Run("revoked token is rejected like a forged one", func(t *testing.T) {
		other, err := codec.Issue(ctx, "acc-2")
		require.NoError(t, err)
		require.NoError(t, codec.Revoke(ctx, other.AccessToken))

		revoked := serve(h, "/api/me", "Bearer "+other.AccessToken)
		forged := serve(h, "/api/me", "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, revoked.Code)
		assert.Equal(t, forged.Body.String(), revoked.Body.String())
	})
}

func TestAuthenticateCookieFallback(t *testing.T) {
	codec := newCodec(t)
	pair, err := codec.Issue(context.Background(), "acc-1")
	require.NoError(t, err)
	ck := &http.Cookie{Name: "accessToken", Value: pair.AccessToken}

	off := Chain(echoSubject, Authenticate(AuthConfig{Validator: codec, CookieName: "accessToken"}))
	assert.Equal(t, "-", serve(off, "/api/me", "", ck).Body.String())

	on := Chain(echoSubject, Authenticate(AuthConfig{Validator: codec, AllowCookieToken: true, CookieName: "accessToken"}))
	assert.Equal(t, "acc-1", serve(on, "/api/me", "", ck).Body.String())
}

func TestRequireSubject(t *testing.T) {
	codec := newCodec(t)
	h := Chain(echoSubject, Authenticate(AuthConfig{Validator: codec}), RequireSubject())

	rec := serve(h, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestRateLimit(t *testing.T) {
	h := Chain(echoSubject, WithRateLimit(rate.NewMemoryLimiter("", 1, time.Minute), nil))

	first := serve(h, "/oauth2/authorization/kakao", "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(h, "/oauth2/authorization/kakao", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRecoverAndRequestID(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := Chain(boom, WithRecover(), WithRequestID(), WithLogging())

	rec := serve(h, "/x", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 32)
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(Chain(echoSubject, WithSecurityHeaders()), "/x", "")
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
