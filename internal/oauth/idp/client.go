// Package idp habla con los endpoints de cada identity provider:
// autorización, intercambio de code, perfil y logout/unlink.
//
// No reintenta: los timeouts vienen del *http.Client y los errores suben
// al handler, que decide si el fallo es fatal.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/socialgate/internal/oauth/authrequest"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/security/token"
)

const (
	paramNonce        = "nonce"
	paramCodeVerifier = "code_verifier"
	defaultTimeout    = 10 * time.Second
	maxProfileBytes   = 1 << 20
)

// ErrProviderStatus: el provider respondió con un status no exitoso.
var ErrProviderStatus = errors.New("idp: unexpected provider status")

type Client struct {
	reg  Registration
	cfg  *oauth2.Config
	http *http.Client
}

func NewClient(reg Registration, httpClient *http.Client) (*Client, error) {
	reg = reg.WithDefaults()
	if reg.Name == "" || reg.ClientID == "" || reg.RedirectURI == "" {
		return nil, fmt.Errorf("idp: name, client id and redirect uri are required")
	}
	if reg.AuthURL == "" || reg.TokenURL == "" || reg.UserInfoURL == "" {
		return nil, fmt.Errorf("idp %s: endpoints are required", reg.Name)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	style := oauth2.AuthStyleAutoDetect
	if reg.AuthInParams {
		style = oauth2.AuthStyleInParams
	}
	return &Client{
		reg: reg,
		cfg: &oauth2.Config{
			ClientID:     reg.ClientID,
			ClientSecret: reg.ClientSecret,
			RedirectURL:  reg.RedirectURI,
			Scopes:       reg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   reg.AuthURL,
				TokenURL:  reg.TokenURL,
				AuthStyle: style,
			},
		},
		http: httpClient,
	}, nil
}

func (c *Client) Name() string { return c.reg.Name }

func randomToken() (string, error) {
	return tokens.GenerateOpaqueToken(32)
}

// NewAuthorizationRequest abre un intento: state y nonce aleatorios y,
// si corresponde, el code verifier PKCE (nunca sale del servidor salvo
// dentro de la cookie sellada).
func (c *Client) NewAuthorizationRequest() (*authrequest.AuthorizationRequest, error) {
	state, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("idp: state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("idp: nonce: %w", err)
	}
	params := map[string]string{paramNonce: nonce}
	if c.reg.UsePKCE {
		params[paramCodeVerifier] = oauth2.GenerateVerifier()
	}
	return &authrequest.AuthorizationRequest{
		AuthorizationURI:     c.reg.AuthURL,
		ClientID:             c.reg.ClientID,
		RedirectURI:          c.reg.RedirectURI,
		Scopes:               append([]string(nil), c.reg.Scopes...),
		State:                state,
		RegistrationID:       c.reg.Name,
		AdditionalParameters: params,
	}, nil
}

// AuthCodeURL arma la URL de consentimiento para req.
func (c *Client) AuthCodeURL(req *authrequest.AuthorizationRequest) string {
	var opts []oauth2.AuthCodeOption
	if nonce := req.AdditionalParameters[paramNonce]; nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam(paramNonce, nonce))
	}
	if v := req.AdditionalParameters[paramCodeVerifier]; v != "" {
		opts = append(opts, oauth2.S256ChallengeOption(v))
	}
	return c.cfg.AuthCodeURL(req.State, opts...)
}

// Exchange canjea el code. req es el intento ya validado por el caller.
func (c *Client) Exchange(ctx context.Context, code string, req *authrequest.AuthorizationRequest) (*oauth2.Token, error) {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("state", req.State)}
	if v := req.AdditionalParameters[paramCodeVerifier]; v != "" {
		opts = append(opts, oauth2.VerifierOption(v))
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("idp %s: exchange code: %w", c.reg.Name, err)
	}
	return tok, nil
}

// FetchProfile trae el perfil crudo. Los números quedan como json.Number
// para no perder precisión en ids largos.
func (c *Client) FetchProfile(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.reg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("idp %s: profile request: %w", c.reg.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("idp %s: profile: %w", c.reg.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s profile %d", ErrProviderStatus, c.reg.Name, resp.StatusCode)
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("idp %s: decode profile: %w", c.reg.Name, err)
	}
	return raw, nil
}

// Revoke llama al logout/unlink del provider. El caller lo trata como best-effort.
func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	if c.reg.RevokeStyle == RevokeNone || c.reg.RevokeURL == "" || accessToken == "" {
		return nil
	}
	var (
		body   io.Reader
		bearer bool
	)
	switch c.reg.RevokeStyle {
	case RevokeForm:
		body = strings.NewReader(url.Values{"token": {accessToken}}.Encode())
	case RevokeBearer:
		bearer = true
	case RevokeDeleteGrant:
		body = strings.NewReader(url.Values{
			"grant_type":       {"delete"},
			"client_id":        {c.reg.ClientID},
			"client_secret":    {c.reg.ClientSecret},
			"access_token":     {accessToken},
			"service_provider": {strings.ToUpper(c.reg.Name)},
		}.Encode())
	default:
		return fmt.Errorf("idp %s: unknown revoke style %q", c.reg.Name, c.reg.RevokeStyle)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.reg.RevokeURL, body)
	if err != nil {
		return fmt.Errorf("idp %s: revoke request: %w", c.reg.Name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if bearer {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("idp %s: revoke: %w", c.reg.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s revoke %d", ErrProviderStatus, c.reg.Name, resp.StatusCode)
	}
	return nil
}

// Clients indexa los clientes habilitados por nombre de provider.
type Clients struct {
	byName map[string]*Client
}

func NewClients(clients ...*Client) *Clients {
	m := make(map[string]*Client, len(clients))
	for _, c := range clients {
		m[c.Name()] = c
	}
	return &Clients{byName: m}
}

// Get busca sin distinguir mayúsculas; desconocido => *userinfo.UnsupportedProviderError.
func (cs *Clients) Get(name string) (*Client, error) {
	if c, ok := cs.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return nil, &userinfo.UnsupportedProviderError{Name: name}
}

func (cs *Clients) Names() []string {
	out := make([]string, 0, len(cs.byName))
	for n := range cs.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
