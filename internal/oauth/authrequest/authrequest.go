// Package authrequest persiste el authorization request en curso en una
// cookie sellada, de modo que el callback pueda validarlo sin estado en
// el servidor.
//
// Formato del valor: secretbox.Seal(JSON {"v":1,"iat":<unix>,"req":{...}}).
// El sobre versionado es estable entre implementaciones; iat permite
// rechazar cookies reenviadas después del TTL aunque el navegador las conserve.
package authrequest

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/socialgate/internal/http/helpers"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
)

const (
	envelopeVersion   = 1
	DefaultCookieName = "oauth2_auth_request"
	DefaultTTL        = 5 * time.Hour
	// KeyInfo es el contexto HKDF del que se deriva la clave de la cookie.
	KeyInfo = "socialgate/authrequest"
)

// AuthorizationRequest es el intento de login en vuelo.
type AuthorizationRequest struct {
	AuthorizationURI     string            `json:"authorizationUri"`
	ClientID             string            `json:"clientId"`
	RedirectURI          string            `json:"redirectUri"`
	Scopes               []string          `json:"scopes,omitempty"`
	State                string            `json:"state"`
	RegistrationID       string            `json:"registrationId"`
	AdditionalParameters map[string]string `json:"additionalParameters,omitempty"`
}

// MatchesState compara en tiempo constante.
func (a *AuthorizationRequest) MatchesState(state string) bool {
	if a == nil || a.State == "" || state == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.State), []byte(state)) == 1
}

type envelope struct {
	V   int                   `json:"v"`
	IAT int64                 `json:"iat"`
	Req *AuthorizationRequest `json:"req"`
}

type Config struct {
	CookieName string
	TTL        time.Duration
	Cookie     helpers.CookieAttrs
}

// Store es seguro para uso concurrente: no guarda estado mutable.
type Store struct {
	cfg Config
	box *secretbox.Box
	now func() time.Time
}

func NewStore(cfg Config, box *secretbox.Box) (*Store, error) {
	if box == nil {
		return nil, fmt.Errorf("authrequest: secretbox is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Store{cfg: cfg, box: box, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Save escribe el request en la cookie. Con req == nil borra la cookie.
func (s *Store) Save(w http.ResponseWriter, req *AuthorizationRequest) error {
	if req == nil {
		http.SetCookie(w, helpers.BuildDeletionCookie(s.cfg.CookieName, s.cfg.Cookie))
		return nil
	}
	if req.State == "" {
		return fmt.Errorf("authrequest: state is required")
	}
	raw, err := json.Marshal(envelope{V: envelopeVersion, IAT: s.now().Unix(), Req: req})
	if err != nil {
		return fmt.Errorf("authrequest: encode: %w", err)
	}
	sealed, err := s.box.Seal(raw)
	if err != nil {
		return fmt.Errorf("authrequest: seal: %w", err)
	}
	http.SetCookie(w, helpers.BuildCookie(s.cfg.CookieName, sealed, s.cfg.Cookie, s.cfg.TTL))
	return nil
}

// Load devuelve nil si no hay cookie o si no se puede usar (alterada,
// versión desconocida, vencida). Nunca falla.
func (s *Store) Load(r *http.Request) *AuthorizationRequest {
	value := helpers.ReadCookie(r, s.cfg.CookieName)
	if value == "" {
		return nil
	}
	log := logger.From(r.Context()).With(logger.Component("authrequest"))

	plain, err := s.box.Open(value)
	if err != nil {
		log.Debug("auth request cookie rejected", logger.Reason("unsealable"))
		return nil
	}
	var env envelope
	if err := json.Unmarshal(plain, &env); err != nil || env.V != envelopeVersion || env.Req == nil || env.Req.State == "" {
		log.Debug("auth request cookie rejected", logger.Reason("malformed"))
		return nil
	}
	age := s.now().Sub(time.Unix(env.IAT, 0))
	if age > s.cfg.TTL || age < -time.Minute {
		log.Debug("auth request cookie rejected", logger.Reason("expired"), logger.Duration("age", age))
		return nil
	}
	return env.Req
}

// Remove carga y borra. El borrado ocurre aunque Load devuelva nil.
func (s *Store) Remove(w http.ResponseWriter, r *http.Request) *AuthorizationRequest {
	req := s.Load(r)
	http.SetCookie(w, helpers.BuildDeletionCookie(s.cfg.CookieName, s.cfg.Cookie))
	return req
}
