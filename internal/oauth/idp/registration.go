package idp

import (
	"strings"

	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
)

// RevokeStyle indica cómo se llama al logout/unlink del provider.
type RevokeStyle string

const (
	RevokeNone        RevokeStyle = ""
	RevokeForm        RevokeStyle = "form"         // POST token=<at> (google)
	RevokeBearer      RevokeStyle = "bearer"       // POST con Authorization: Bearer (kakao)
	RevokeDeleteGrant RevokeStyle = "delete_grant" // grant_type=delete en el token endpoint (naver)
)

// Registration describe un cliente OAuth2 registrado en un provider.
type Registration struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	RevokeURL   string

	UsePKCE     bool
	RevokeStyle RevokeStyle
	// AuthInParams envía client_id/secret en el body del token request
	// en lugar de basic auth (kakao, naver).
	AuthInParams bool
}

var defaults = map[string]Registration{
	userinfo.ProviderGoogle: {
		Name:        userinfo.ProviderGoogle,
		Scopes:      []string{"openid", "profile", "email"},
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		RevokeURL:   "https://oauth2.googleapis.com/revoke",
		UsePKCE:     true,
		RevokeStyle: RevokeForm,
	},
	userinfo.ProviderKakao: {
		Name:         userinfo.ProviderKakao,
		Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
		AuthURL:      "https://kauth.kakao.com/oauth/authorize",
		TokenURL:     "https://kauth.kakao.com/oauth/token",
		UserInfoURL:  "https://kapi.kakao.com/v2/user/me",
		RevokeURL:    "https://kapi.kakao.com/v1/user/logout",
		UsePKCE:      true,
		RevokeStyle:  RevokeBearer,
		AuthInParams: true,
	},
	userinfo.ProviderNaver: {
		Name:         userinfo.ProviderNaver,
		AuthURL:      "https://nid.naver.com/oauth2.0/authorize",
		TokenURL:     "https://nid.naver.com/oauth2.0/token",
		UserInfoURL:  "https://openapi.naver.com/v1/nid/me",
		RevokeURL:    "https://nid.naver.com/oauth2.0/token",
		RevokeStyle:  RevokeDeleteGrant,
		AuthInParams: true,
	},
}

// Defaults devuelve los endpoints conocidos del provider.
func Defaults(name string) (Registration, bool) {
	r, ok := defaults[strings.ToLower(name)]
	if ok {
		r.Scopes = append([]string(nil), r.Scopes...)
	}
	return r, ok
}

// WithDefaults completa los campos vacíos con los valores conocidos del provider.
func (r Registration) WithDefaults() Registration {
	r.Name = strings.ToLower(strings.TrimSpace(r.Name))
	d, ok := Defaults(r.Name)
	if !ok {
		return r
	}
	if len(r.Scopes) == 0 {
		r.Scopes = d.Scopes
	}
	if r.AuthURL == "" {
		r.AuthURL = d.AuthURL
	}
	if r.TokenURL == "" {
		r.TokenURL = d.TokenURL
	}
	if r.UserInfoURL == "" {
		r.UserInfoURL = d.UserInfoURL
	}
	if r.RevokeURL == "" {
		r.RevokeURL = d.RevokeURL
	}
	if r.RevokeStyle == RevokeNone {
		r.RevokeStyle = d.RevokeStyle
	}
	r.UsePKCE = r.UsePKCE || d.UsePKCE
	r.AuthInParams = r.AuthInParams || d.AuthInParams
	return r
}
