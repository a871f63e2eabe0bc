package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/socialgate/internal/jwt"
)

// Provider es la registración de un identity provider. Los endpoints
// vacíos toman los valores conocidos del provider.
type Provider struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"` // si vacío => <server.public_url>/login/oauth2/code/<name>
	Scopes       []string `yaml:"scopes"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"user_info_url"`
	RevokeURL    string   `yaml:"revoke_url"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"app_env"`
		LogLevel string `yaml:"log_level"`
		Version  string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		PublicURL       string `yaml:"public_url"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Account Directory
	Storage struct {
		Driver   string `yaml:"driver"` // memory | postgres
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int32  `yaml:"max_conns"`
			MinConns        int32  `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	// Credential Store
	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		Secret     string `yaml:"secret"` // base64, >= 32 bytes decodificado
		Issuer     string `yaml:"issuer"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Cookies struct {
		AccessName  string `yaml:"access_name"`
		RefreshName string `yaml:"refresh_name"`
		Domain      string `yaml:"domain"`
		SameSite    string `yaml:"samesite"`
		Secure      bool   `yaml:"secure"`
		HttpOnly    *bool  `yaml:"http_only"` // default true
		// AllowBearerCookie: el filtro lee la cookie de access si no hay header.
		AllowBearerCookie bool `yaml:"allow_bearer_cookie"`
	} `yaml:"cookies"`

	AuthRequest struct {
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
	} `yaml:"auth_request"`

	Frontend struct {
		SuccessURL string `yaml:"success_url"`
		ErrorURL   string `yaml:"error_url"`
	} `yaml:"frontend"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Providers struct {
		// TokenTTL: vida del memo del access token del provider cuando
		// el provider no informa expiry.
		TokenTTL string   `yaml:"token_ttl"`
		Google   Provider `yaml:"google"`
		Kakao    Provider `yaml:"kakao"`
		Naver    Provider `yaml:"naver"`
	} `yaml:"providers"`
}

// Load lee el YAML (path vacío => solo defaults + env), aplica defaults,
// overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	// Guardia dura: en prod las cookies de sesión solo viajan por HTTPS.
	if c.IsProd() {
		c.Cookies.Secure = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "socialgate"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "2h"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7d
	}
	if c.Cookies.AccessName == "" {
		c.Cookies.AccessName = "accessToken"
	}
	if c.Cookies.RefreshName == "" {
		c.Cookies.RefreshName = "refreshToken"
	}
	if c.Cookies.SameSite == "" {
		c.Cookies.SameSite = "Lax"
	}
	if c.Cookies.HttpOnly == nil {
		v := true
		c.Cookies.HttpOnly = &v
	}
	if c.AuthRequest.CookieName == "" {
		c.AuthRequest.CookieName = "oauth2_auth_request"
	}
	if c.AuthRequest.TTL == "" {
		c.AuthRequest.TTL = "5h"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 20
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Providers.TokenTTL == "" {
		c.Providers.TokenTTL = "1h"
	}

	base := strings.TrimRight(strings.TrimSpace(c.Server.PublicURL), "/")
	for name, p := range c.providers() {
		if p.RedirectURL == "" && base != "" {
			p.RedirectURL = base + "/login/oauth2/code/" + name
		}
	}
}

// providers devuelve punteros a cada bloque de provider, indexados por nombre.
func (c *Config) providers() map[string]*Provider {
	return map[string]*Provider{
		"google": &c.Providers.Google,
		"kakao":  &c.Providers.Kakao,
		"naver":  &c.Providers.Naver,
	}
}

// EnabledProviders devuelve los providers habilitados por nombre.
func (c *Config) EnabledProviders() map[string]Provider {
	out := map[string]Provider{}
	for name, p := range c.providers() {
		if p.Enabled {
			out[name] = *p
		}
	}
	return out
}

func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

// Duraciones ya validadas por Validate; el parse no puede fallar después de Load.

func (c *Config) AccessTTL() time.Duration        { return mustDur(c.JWT.AccessTTL) }
func (c *Config) RefreshTTL() time.Duration       { return mustDur(c.JWT.RefreshTTL) }
func (c *Config) AuthRequestTTL() time.Duration   { return mustDur(c.AuthRequest.TTL) }
func (c *Config) RateWindow() time.Duration       { return mustDur(c.Rate.Login.Window) }
func (c *Config) ProviderTokenTTL() time.Duration { return mustDur(c.Providers.TokenTTL) }
func (c *Config) ReadTimeout() time.Duration      { return mustDur(c.Server.ReadTimeout) }
func (c *Config) WriteTimeout() time.Duration     { return mustDur(c.Server.WriteTimeout) }
func (c *Config) ShutdownTimeout() time.Duration  { return mustDur(c.Server.ShutdownTimeout) }

func (c *Config) ConnMaxLifetime() time.Duration {
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		return 0
	}
	return mustDur(c.Storage.Postgres.ConnMaxLifetime)
}

func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("SERVICE_VERSION"); ok {
		c.App.Version = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_PUBLIC_URL"); ok {
		c.Server.PublicURL = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = int32(v)
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	// COOKIES
	if v, ok := getEnvStr("COOKIE_DOMAIN"); ok {
		c.Cookies.Domain = v
	}
	if v, ok := getEnvStr("COOKIE_SAMESITE"); ok {
		c.Cookies.SameSite = v
	}
	if v, ok := getEnvBool("COOKIE_SECURE"); ok {
		c.Cookies.Secure = v
	}
	if v, ok := getEnvBool("COOKIE_HTTP_ONLY"); ok {
		c.Cookies.HttpOnly = &v
	}
	if v, ok := getEnvBool("AUTH_ALLOW_BEARER_COOKIE"); ok {
		c.Cookies.AllowBearerCookie = v
	}
	if v, ok := getEnvStr("AUTH_REQUEST_TTL"); ok {
		c.AuthRequest.TTL = v
	}

	// FRONTEND
	if v, ok := getEnvStr("FRONTEND_SUCCESS_URL"); ok {
		c.Frontend.SuccessURL = v
	}
	if v, ok := getEnvStr("FRONTEND_ERROR_URL"); ok {
		c.Frontend.ErrorURL = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	// PROVIDERS: GOOGLE_CLIENT_ID, KAKAO_CLIENT_SECRET, NAVER_ENABLED...
	for name, p := range c.providers() {
		prefix := strings.ToUpper(name) + "_"
		if v, ok := getEnvBool(prefix + "ENABLED"); ok {
			p.Enabled = v
		}
		if v, ok := getEnvStr(prefix + "CLIENT_ID"); ok {
			p.ClientID = v
		}
		if v, ok := getEnvStr(prefix + "CLIENT_SECRET"); ok {
			p.ClientSecret = v
		}
		if v, ok := getEnvStr(prefix + "REDIRECT_URL"); ok {
			p.RedirectURL = v
		}
		if v, ok := getEnvCSV(prefix + "SCOPES"); ok {
			p.Scopes = v
		}
	}
}

// Validate performs validation of critical configuration values.
func (c *Config) Validate() error {
	var errs []error

	if _, err := jwt.DecodeSecret(c.JWT.Secret); err != nil {
		errs = append(errs, fmt.Errorf("jwt.secret: %w", err))
	}

	durations := []struct {
		name, value string
	}{
		{"jwt.access_ttl", c.JWT.AccessTTL},
		{"jwt.refresh_ttl", c.JWT.RefreshTTL},
		{"auth_request.ttl", c.AuthRequest.TTL},
		{"rate.login.window", c.Rate.Login.Window},
		{"providers.token_ttl", c.Providers.TokenTTL},
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		durations = append(durations, struct{ name, value string }{"storage.postgres.conn_max_lifetime", c.Storage.Postgres.ConnMaxLifetime})
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be > 0", d.name))
		}
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn: required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			errs = append(errs, errors.New("cache.redis.addr: required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.kind: unknown %q", c.Cache.Kind))
	}

	switch strings.ToLower(c.Cookies.SameSite) {
	case "lax", "strict":
	case "none":
		// Los browsers descartan SameSite=None sin Secure.
		if !c.Cookies.Secure {
			errs = append(errs, errors.New("cookies.samesite: none requires cookies.secure"))
		}
	default:
		errs = append(errs, fmt.Errorf("cookies.samesite: unknown %q", c.Cookies.SameSite))
	}

	if err := requireAbsoluteURL("frontend.success_url", c.Frontend.SuccessURL); err != nil {
		errs = append(errs, err)
	}
	if err := requireAbsoluteURL("frontend.error_url", c.Frontend.ErrorURL); err != nil {
		errs = append(errs, err)
	}

	enabled := 0
	for name, p := range c.providers() {
		if !p.Enabled {
			continue
		}
		enabled++
		if p.ClientID == "" || p.ClientSecret == "" {
			errs = append(errs, fmt.Errorf("providers.%s: client_id and client_secret are required", name))
		}
		if err := requireAbsoluteURL("providers."+name+".redirect_url", p.RedirectURL); err != nil {
			errs = append(errs, err)
		}
	}
	if enabled == 0 {
		errs = append(errs, errors.New("providers: at least one provider must be enabled"))
	}

	return errors.Join(errs...)
}

func requireAbsoluteURL(name, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: absolute URL required", name)
	}
	return nil
}
