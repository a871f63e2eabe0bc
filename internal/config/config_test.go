package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), 32))

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const minimal = `
server:
  public_url: http://localhost:8080
frontend:
  success_url: http://localhost:3000/welcome
  error_url: http://localhost:3000/error
providers:
  kakao:
    enabled: true
    client_id: kid
    client_secret: ksecret
`

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	c, err := Load(writeYAML(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 2*time.Hour, c.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, c.RefreshTTL())
	assert.Equal(t, 5*time.Hour, c.AuthRequestTTL())
	assert.Equal(t, "oauth2_auth_request", c.AuthRequest.CookieName)
	assert.Equal(t, "accessToken", c.Cookies.AccessName)
	assert.Equal(t, "refreshToken", c.Cookies.RefreshName)
	assert.Equal(t, "Lax", c.Cookies.SameSite)
	require.NotNil(t, c.Cookies.HttpOnly)
	assert.True(t, *c.Cookies.HttpOnly)
	assert.False(t, c.Cookies.Secure)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "memory", c.Cache.Kind)

	enabled := c.EnabledProviders()
	require.Contains(t, enabled, "kakao")
	assert.NotContains(t, enabled, "google")
	assert.Equal(t, "http://localhost:8080/login/oauth2/code/kakao", enabled["kakao"].RedirectURL)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("CACHE_KIND", "redis")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("GOOGLE_ENABLED", "true")
	t.Setenv("GOOGLE_CLIENT_ID", "gid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "gsecret")
	t.Setenv("GOOGLE_SCOPES", "openid, email")
	t.Setenv("COOKIE_HTTP_ONLY", "false")

	c, err := Load(writeYAML(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, c.AccessTTL())
	assert.Equal(t, "redis", c.Cache.Kind)
	assert.False(t, *c.Cookies.HttpOnly)

	g := c.EnabledProviders()["google"]
	assert.Equal(t, "gid", g.ClientID)
	assert.Equal(t, []string{"openid", "email"}, g.Scopes)
	assert.Equal(t, "http://localhost:8080/login/oauth2/code/google", g.RedirectURL)
}

func TestProdForcesSecureCookies(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("APP_ENV", "PROD")
	c, err := Load(writeYAML(t, minimal))
	require.NoError(t, err)
	assert.True(t, c.IsProd())
	assert.True(t, c.Cookies.Secure)
}

func TestSameSiteNoneWithSecure(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	c, err := Load(writeYAML(t, minimal+`
cookies:
  samesite: None
  secure: true
`))
	require.NoError(t, err)
	assert.Equal(t, "None", c.Cookies.SameSite)

	// En prod Secure se fuerza antes de validar.
	t.Setenv("APP_ENV", "prod")
	_, err = Load(writeYAML(t, minimal+`
cookies:
  samesite: none
`))
	require.NoError(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		yaml string
	}{
		"short secret": {
			env:  map[string]string{"JWT_SECRET": base64.StdEncoding.EncodeToString([]byte("short"))},
			yaml: minimal,
		},
		"not base64": {
			env:  map[string]string{"JWT_SECRET": "%%%"},
			yaml: minimal,
		},
		"zero ttl": {
			env:  map[string]string{"JWT_SECRET": secret, "JWT_REFRESH_TTL": "0s"},
			yaml: minimal,
		},
		"relative front-end url": {
			env:  map[string]string{"JWT_SECRET": secret, "FRONTEND_SUCCESS_URL": "/welcome"},
			yaml: minimal,
		},
		"postgres without dsn": {
			env:  map[string]string{"JWT_SECRET": secret, "STORAGE_DRIVER": "postgres"},
			yaml: minimal,
		},
		"provider without secret": {
			env:  map[string]string{"JWT_SECRET": secret, "NAVER_ENABLED": "true", "NAVER_CLIENT_ID": "n"},
			yaml: minimal,
		},
		"samesite none without secure": {
			env:  map[string]string{"JWT_SECRET": secret, "COOKIE_SAMESITE": "None"},
			yaml: minimal,
		},
		"no provider": {
			env:  map[string]string{"JWT_SECRET": secret, "KAKAO_ENABLED": "false"},
			yaml: minimal,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeYAML(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithoutFileUsesEnvOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("FRONTEND_SUCCESS_URL", "https://app.example.com/")
	t.Setenv("FRONTEND_ERROR_URL", "https://app.example.com/error")
	t.Setenv("NAVER_ENABLED", "true")
	t.Setenv("NAVER_CLIENT_ID", "n")
	t.Setenv("NAVER_CLIENT_SECRET", "s")
	t.Setenv("NAVER_REDIRECT_URL", "https://api.example.com/login/oauth2/code/naver")

	c, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, c.EnabledProviders(), "naver")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
