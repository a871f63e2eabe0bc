// Package idptest levanta un identity provider falso con httptest para
// probar el authorization code flow de punta a punta.
package idptest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
)

const (
	GoodCode    = "good-code"
	AccessToken = "prov-at"
)

type Provider struct {
	Server *httptest.Server

	mu           sync.Mutex
	profile      any
	revokeStatus int
	verifiers    []string
	revoked      []string
}

// New arranca el servidor; se cierra con t.Cleanup.
func New(t testing.TB, profile any) *Provider {
	t.Helper()
	p := &Provider{profile: profile, revokeStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", p.token)
	mux.HandleFunc("/me", p.me)
	mux.HandleFunc("/revoke", p.revoke)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// Registration apunta todos los endpoints del provider name a este servidor.
func (p *Provider) Registration(name string) idp.Registration {
	return idp.Registration{
		Name:         name,
		ClientID:     "client-" + name,
		ClientSecret: "secret-" + name,
		RedirectURI:  "http://localhost/login/oauth2/code/" + name,
		AuthURL:      p.Server.URL + "/authorize",
		TokenURL:     p.Server.URL + "/token",
		UserInfoURL:  p.Server.URL + "/me",
		RevokeURL:    p.Server.URL + "/revoke",
	}
}

func (p *Provider) SetRevokeStatus(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revokeStatus = code
}

// Verifiers devuelve los code_verifier recibidos en /token.
func (p *Provider) Verifiers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.verifiers...)
}

// Revoked devuelve los access tokens recibidos en /revoke.
func (p *Provider) Revoked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.revoked...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (p *Provider) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != GoodCode {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}
	p.mu.Lock()
	p.verifiers = append(p.verifiers, r.PostForm.Get("code_verifier"))
	p.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": AccessToken,
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func (p *Provider) me(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+AccessToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	}
	p.mu.Lock()
	profile := p.profile
	p.mu.Unlock()
	writeJSON(w, http.StatusOK, profile)
}

func (p *Provider) revoke(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	tok := r.PostForm.Get("token")
	if tok == "" {
		tok = r.PostForm.Get("access_token")
	}
	if tok == "" {
		if ah := r.Header.Get("Authorization"); len(ah) > len("Bearer ") {
			tok = ah[len("Bearer "):]
		}
	}
	p.mu.Lock()
	p.revoked = append(p.revoked, tok)
	status := p.revokeStatus
	p.mu.Unlock()
	w.WriteHeader(status)
}
