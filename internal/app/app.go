// Package app es el composition root: arma stores, codec, clientes de
// provider, services, controllers y router a partir de la configuración.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/config"
	"github.com/dropDatabas3/socialgate/internal/http/controllers"
	socialctrl "github.com/dropDatabas3/socialgate/internal/http/controllers/social"
	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	mw "github.com/dropDatabas3/socialgate/internal/http/middlewares"
	"github.com/dropDatabas3/socialgate/internal/http/router"
	healthsvc "github.com/dropDatabas3/socialgate/internal/http/services/health"
	sessionsvc "github.com/dropDatabas3/socialgate/internal/http/services/session"
	socialsvc "github.com/dropDatabas3/socialgate/internal/http/services/social"
	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/rate"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
)

const providerTokenKeyInfo = "socialgate/idp-token"

// Deps holds raw dependencies required to build the app.
type Deps struct {
	Accounts account.Directory
	Store    cache.Client
	Limiter  rate.Limiter // opcional

	// HTTPClient para hablar con los providers; nil usa el default de idp.
	HTTPClient *http.Client

	// Registerer/Gatherer de prometheus; nil usa los defaults.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// App represents the wired application.
type App struct {
	Handler      http.Handler
	Codec        *jwt.Codec
	AuthRequests *authrequest.Store
	Clients      *idp.Clients
}

// New creates and wires the application.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if deps.Accounts == nil || deps.Store == nil {
		return nil, errors.New("app: accounts and store are required")
	}
	if err := metrics.Register(deps.Registerer); err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}

	// 1. Credenciales
	secret, err := jwt.DecodeSecret(cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}
	codec, err := jwt.NewCodec(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}, tokenstore.NewRevocationStore(deps.Store), tokenstore.NewRefreshStore(deps.Store))
	if err != nil {
		return nil, err
	}

	authBox, err := secretbox.Derive(secret, authrequest.KeyInfo)
	if err != nil {
		return nil, err
	}
	tokenBox, err := secretbox.Derive(secret, providerTokenKeyInfo)
	if err != nil {
		return nil, err
	}

	attrs := helpers.CookieAttrs{
		Domain:   cfg.Cookies.Domain,
		SameSite: cfg.Cookies.SameSite,
		Secure:   cfg.Cookies.Secure,
		HttpOnly: cfg.Cookies.HttpOnly == nil || *cfg.Cookies.HttpOnly,
	}
	authRequests, err := authrequest.NewStore(authrequest.Config{
		CookieName: cfg.AuthRequest.CookieName,
		TTL:        cfg.AuthRequestTTL(),
		// El intento siempre es HttpOnly: el front-end nunca lo lee.
		Cookie: helpers.CookieAttrs{Domain: attrs.Domain, SameSite: attrs.SameSite, Secure: attrs.Secure, HttpOnly: true},
	}, authBox)
	if err != nil {
		return nil, err
	}

	// 2. Providers
	registry := userinfo.DefaultRegistry()
	clients, err := buildClients(cfg, registry, deps.HTTPClient)
	if err != nil {
		return nil, err
	}
	providerTokens := tokenstore.NewProviderTokens(deps.Store, tokenBox)

	// 3. Services
	svcs := controllers.Services{
		Social: socialsvc.NewServices(socialsvc.Deps{
			Registry:       registry,
			Accounts:       deps.Accounts,
			Clients:        clients,
			Codec:          codec,
			ProviderTokens: providerTokens,
			ProviderTTL:    cfg.ProviderTokenTTL(),
		}),
		Session: sessionsvc.NewServices(sessionsvc.Deps{
			Codec:          codec,
			Accounts:       deps.Accounts,
			Clients:        clients,
			ProviderTokens: providerTokens,
		}),
		Health: healthsvc.NewHealthService(healthsvc.Deps{
			Components: map[string]healthsvc.Pinger{
				"credential_store":  deps.Store,
				"account_directory": deps.Accounts,
			},
			Version: cfg.App.Version,
		}),
	}

	// 4. Controllers
	cookies := helpers.SessionCookies{
		AccessName:  cfg.Cookies.AccessName,
		RefreshName: cfg.Cookies.RefreshName,
		Attrs:       attrs,
	}
	ctrls := controllers.New(svcs, socialctrl.ControllerDeps{
		AuthRequests: authRequests,
		Cookies:      cookies,
		SuccessURL:   cfg.Frontend.SuccessURL,
		ErrorURL:     cfg.Frontend.ErrorURL,
		AccessTTL:    codec.AccessTTL(),
		RefreshTTL:   codec.RefreshTTL(),
	})

	// 5. Router
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		limiter = deps.Limiter
	}
	handler := router.New(router.Deps{
		Controllers: ctrls,
		Auth: mw.AuthConfig{
			Validator:        codec,
			AllowCookieToken: cfg.Cookies.AllowBearerCookie,
			CookieName:       cookies.AccessName,
		},
		RateLimiter: limiter,
		Gatherer:    deps.Gatherer,
	})

	return &App{
		Handler:      handler,
		Codec:        codec,
		AuthRequests: authRequests,
		Clients:      clients,
	}, nil
}

// buildClients arma un cliente por provider habilitado; cada uno necesita
// un extractor de perfil registrado.
func buildClients(cfg *config.Config, registry *userinfo.Registry, httpClient *http.Client) (*idp.Clients, error) {
	enabled := cfg.EnabledProviders()
	names := make([]string, 0, len(enabled))
	for name := range enabled {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]*idp.Client, 0, len(names))
	for _, name := range names {
		if _, err := registry.Get(name); err != nil {
			return nil, fmt.Errorf("app: provider %s has no profile extractor (known: %s)",
				name, strings.Join(registry.Providers(), ", "))
		}
		p := enabled[name]
		c, err := idp.NewClient(idp.Registration{
			Name:         name,
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURI:  p.RedirectURL,
			Scopes:       p.Scopes,
			AuthURL:      p.AuthURL,
			TokenURL:     p.TokenURL,
			UserInfoURL:  p.UserInfoURL,
			RevokeURL:    p.RevokeURL,
		}, httpClient)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return idp.NewClients(list...), nil
}
