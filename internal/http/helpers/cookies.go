package helpers

import (
	"net/http"
	"strings"
	"time"
)

// CookieAttrs agrupa los atributos que deben coincidir exactamente entre
// el Set-Cookie que crea y el que borra; si difieren el navegador no borra.
type CookieAttrs struct {
	Domain   string
	SameSite string
	Secure   bool
	HttpOnly bool
}

func ParseSameSite(s string) http.SameSite {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func BuildCookie(name, value string, a CookieAttrs, ttl time.Duration) *http.Cookie {
	ck := base(name, value, a)
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

// BuildDeletionCookie emite Max-Age=0 con los mismos atributos que BuildCookie.
func BuildDeletionCookie(name string, a CookieAttrs) *http.Cookie {
	ck := base(name, "", a)
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

// ReadCookie devuelve "" si la cookie no está.
func ReadCookie(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func base(name, value string, a CookieAttrs) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: a.HttpOnly,
		Secure:   a.Secure,
		SameSite: ParseSameSite(a.SameSite),
	}
	if strings.TrimSpace(a.Domain) != "" {
		ck.Domain = a.Domain
	}
	return ck
}
