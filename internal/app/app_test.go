package app

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/config"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp/idptest"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/rate"
)

const (
	successURL = "http://front.test/welcome"
	errorURL   = "http://front.test/error"
)

type harness struct {
	t        *testing.T
	handler  http.Handler
	fake     *idptest.Provider
	accounts *account.MemoryDirectory
}

func newHarness(t *testing.T, limiter rate.Limiter) *harness {
	t.Helper()
	fake := idptest.New(t, map[string]any{
		"id": 4012345678,
		"kakao_account": map[string]any{
			"profile": map[string]any{"nickname": "Jane"},
			"email":   "jane@x.com",
		},
	})

	yaml := fmt.Sprintf(`
server:
  public_url: http://api.test
frontend:
  success_url: %s
  error_url: %s
providers:
  kakao:
    enabled: true
    client_id: kid
    client_secret: ksecret
    auth_url: %[3]s/authorize
    token_url: %[3]s/token
    user_info_url: %[3]s/me
    revoke_url: %[3]s/revoke
`, successURL, errorURL, fake.Server.URL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("j"), 32)))
	if limiter != nil {
		t.Setenv("RATE_ENABLED", "true")
	}

	cfg, err := config.Load(path)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	accounts := account.NewMemoryDirectory()
	a, err := New(cfg, Deps{
		Accounts:   accounts,
		Store:      cache.NewMemory(""),
		Limiter:    limiter,
		Registerer: reg,
		Gatherer:   reg,
	})
	require.NoError(t, err)
	return &harness{t: t, handler: a.Handler, fake: fake, accounts: accounts}
}

func (h *harness) do(method, target string, cookies []*http.Cookie, header http.Header) *http.Response {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec.Result()
}

func cookieByName(cs []*http.Cookie, name string) *http.Cookie {
	for _, c := range cs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func bearer(tok string) http.Header {
	return http.Header{"Authorization": {"Bearer " + tok}}
}

// login recorre start + callback y devuelve las cookies de sesión.
func (h *harness) login() (access, refresh *http.Cookie) {
	t := h.t
	start := h.do(http.MethodGet, "/oauth2/authorization/kakao", nil, nil)
	require.Equal(t, http.StatusFound, start.StatusCode)
	loc, err := url.Parse(start.Header.Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	attempt := cookieByName(start.Cookies(), "oauth2_auth_request")
	require.NotNil(t, attempt)
	assert.True(t, attempt.HttpOnly)
	assert.Equal(t, 5*60*60, attempt.MaxAge)

	cb := h.do(http.MethodGet, "/login/oauth2/code/kakao?code="+idptest.GoodCode+"&state="+url.QueryEscape(state),
		[]*http.Cookie{attempt}, nil)
	require.Equal(t, http.StatusFound, cb.StatusCode)
	assert.Equal(t, successURL, cb.Header.Get("Location"))

	cleared := cookieByName(cb.Cookies(), "oauth2_auth_request")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	access = cookieByName(cb.Cookies(), "accessToken")
	refresh = cookieByName(cb.Cookies(), "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, 2*60*60, access.MaxAge)
	assert.Equal(t, 7*24*60*60, refresh.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.NotContains(t, cb.Header.Get("Location"), access.Value)
	return access, refresh
}

func TestLoginMeLogout(t *testing.T) {
	h := newHarness(t, nil)
	access, refresh := h.login()
	assert.Equal(t, 1, h.accounts.Len())

	me := h.do(http.MethodGet, "/api/me", nil, bearer(access.Value))
	require.Equal(t, http.StatusOK, me.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(me.Body).Decode(&body))
	assert.Equal(t, "Jane", body["display_name"])
	assert.Equal(t, "KAKAO", body["provider"])

	// Segundo login con el mismo perfil: misma cuenta.
	h.login()
	assert.Equal(t, 1, h.accounts.Len())

	out := h.do(http.MethodPost, "/api/auth/logout", []*http.Cookie{refresh}, bearer(access.Value))
	require.Equal(t, http.StatusOK, out.StatusCode)
	var res map[string]bool
	require.NoError(t, json.NewDecoder(out.Body).Decode(&res))
	assert.True(t, res["success"])
	for _, name := range []string{"accessToken", "refreshToken"} {
		c := cookieByName(out.Cookies(), name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
		assert.Equal(t, access.Path, c.Path)
		assert.Equal(t, access.SameSite, c.SameSite)
		assert.Equal(t, access.HttpOnly, c.HttpOnly)
		assert.Equal(t, access.Secure, c.Secure)
	}
	assert.Equal(t, []string{idptest.AccessToken}, h.fake.Revoked())

	again := h.do(http.MethodGet, "/api/me", nil, bearer(access.Value))
	assert.Equal(t, http.StatusUnauthorized, again.StatusCode)
	assert.Equal(t, `Bearer error="invalid_token"`, again.Header.Get("WWW-Authenticate"))
	var errBody map[string]string
	require.NoError(t, json.NewDecoder(again.Body).Decode(&errBody))
	assert.Equal(t, "TOKEN_INVALID", errBody["code"])
}

func TestLogoutWithoutSessionSucceeds(t *testing.T) {
	h := newHarness(t, nil)
	res := h.do(http.MethodPost, "/api/auth/logout", nil, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotNil(t, cookieByName(res.Cookies(), "accessToken"))
}

func TestFilterRejectsGarbageAndAnonymous(t *testing.T) {
	h := newHarness(t, nil)

	res := h.do(http.MethodGet, "/api/me", nil, bearer("not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, `Bearer error="invalid_token"`, res.Header.Get("WWW-Authenticate"))

	res = h.do(http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// Allow-list: un token basura no bloquea el inicio del login.
	res = h.do(http.MethodGet, "/oauth2/authorization/kakao", nil, bearer("not-a-jwt"))
	assert.Equal(t, http.StatusFound, res.StatusCode)
}

func TestRefreshTokenIsNotABearer(t *testing.T) {
	h := newHarness(t, nil)
	_, refresh := h.login()
	res := h.do(http.MethodGet, "/api/me", nil, bearer(refresh.Value))
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCallbackFailuresRedirectWithCode(t *testing.T) {
	h := newHarness(t, nil)
	start := h.do(http.MethodGet, "/oauth2/authorization/kakao", nil, nil)
	attempt := cookieByName(start.Cookies(), "oauth2_auth_request")
	require.NotNil(t, attempt)

	cases := []struct {
		name    string
		query   string
		cookies []*http.Cookie
		code    string
	}{
		{"state mismatch", "code=" + idptest.GoodCode + "&state=forged", []*http.Cookie{attempt}, "invalid_state"},
		{"no attempt cookie", "code=" + idptest.GoodCode + "&state=x", nil, "invalid_state"},
		{"provider denied", "error=access_denied&error_description=user+cancelled", []*http.Cookie{attempt}, "access_denied"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := h.do(http.MethodGet, "/login/oauth2/code/kakao?"+tc.query, tc.cookies, nil)
			require.Equal(t, http.StatusFound, res.StatusCode)
			loc, err := url.Parse(res.Header.Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "front.test", loc.Host)
			assert.Equal(t, "/error", loc.Path)
			assert.Equal(t, tc.code, loc.Query().Get("error"))
			assert.Nil(t, cookieByName(res.Cookies(), "accessToken"))
		})
	}

	res := h.do(http.MethodGet, "/login/oauth2/code/bogus?code=x&state=y", nil, nil)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "unsupported_provider", loc.Query().Get("error"))
	assert.Zero(t, h.accounts.Len())
}

func TestStartUnsupportedProvider(t *testing.T) {
	h := newHarness(t, nil)
	res := h.do(http.MethodGet, "/oauth2/authorization/bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRateLimitOnLoginRoutes(t *testing.T) {
	h := newHarness(t, rate.NewMemoryLimiter("rl:", 1, time.Minute))
	first := h.do(http.MethodGet, "/oauth2/authorization/kakao", nil, nil)
	assert.Equal(t, http.StatusFound, first.StatusCode)
	second := h.do(http.MethodGet, "/oauth2/authorization/kakao", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.NotEmpty(t, second.Header.Get("Retry-After"))

	// /readyz no está limitado.
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/readyz", nil, nil).StatusCode)
}

func TestReadyzAndMetrics(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	ready := h.do(http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, ready.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(ready.Body).Decode(&body))
	assert.Equal(t, "ready", body["status"])

	m := h.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, m.StatusCode)
	raw, err := io.ReadAll(m.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `social_login_total{provider="kakao",result="success"}`)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestBuildClientsRequiresExtractor(t *testing.T) {
	cfg := &config.Config{}
	cfg.Providers.Kakao = config.Provider{
		Enabled:      true,
		ClientID:     "kid",
		ClientSecret: "ksecret",
		RedirectURL:  "http://api.test/login/oauth2/code/kakao",
		AuthURL:      "http://idp.test/authorize",
		TokenURL:     "http://idp.test/token",
		UserInfoURL:  "http://idp.test/me",
	}

	_, err := buildClients(cfg, userinfo.NewRegistry(userinfo.Google{}), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kakao")
	assert.Contains(t, err.Error(), "known: google")

	clients, err := buildClients(cfg, userinfo.DefaultRegistry(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"kakao"}, clients.Names())
}
