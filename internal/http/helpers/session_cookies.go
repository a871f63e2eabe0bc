package helpers

import (
	"net/http"
	"time"
)

const (
	DefaultAccessCookie  = "accessToken"
	DefaultRefreshCookie = "refreshToken"
)

// SessionCookies escribe y borra el par de cookies de sesión. Set y Clear
// usan los mismos atributos.
type SessionCookies struct {
	AccessName  string
	RefreshName string
	Attrs       CookieAttrs
}

func (c SessionCookies) names() (string, string) {
	access, refresh := c.AccessName, c.RefreshName
	if access == "" {
		access = DefaultAccessCookie
	}
	if refresh == "" {
		refresh = DefaultRefreshCookie
	}
	return access, refresh
}

// Set escribe ambos tokens con max-age distintos.
func (c SessionCookies) Set(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration) {
	an, rn := c.names()
	http.SetCookie(w, BuildCookie(an, access, c.Attrs, accessTTL))
	http.SetCookie(w, BuildCookie(rn, refresh, c.Attrs, refreshTTL))
}

func (c SessionCookies) Clear(w http.ResponseWriter) {
	an, rn := c.names()
	http.SetCookie(w, BuildDeletionCookie(an, c.Attrs))
	http.SetCookie(w, BuildDeletionCookie(rn, c.Attrs))
}

// Read devuelve los valores presentes ("" si falta alguno).
func (c SessionCookies) Read(r *http.Request) (access, refresh string) {
	an, rn := c.names()
	return ReadCookie(r, an), ReadCookie(r, rn)
}
