package idp_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp/idptest"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
)

var kakaoProfile = map[string]any{
	"id":            4012345678,
	"kakao_account": map[string]any{"profile": map[string]any{"nickname": "Jane"}},
}

func TestDefaultsFillEmptyFields(t *testing.T) {
	reg := idp.Registration{Name: "Kakao", ClientID: "c", RedirectURI: "http://x/cb"}.WithDefaults()
	assert.Equal(t, "kakao", reg.Name)
	assert.Equal(t, "https://kauth.kakao.com/oauth/token", reg.TokenURL)
	assert.Equal(t, idp.RevokeBearer, reg.RevokeStyle)
	assert.True(t, reg.UsePKCE)
	assert.True(t, reg.AuthInParams)

	_, ok := idp.Defaults("bogus")
	assert.False(t, ok)
}

func TestAuthCodeURLCarriesStateAndChallenge(t *testing.T) {
	c, err := idp.NewClient(idp.Registration{Name: "google", ClientID: "cid", RedirectURI: "http://localhost/cb"}, nil)
	require.NoError(t, err)

	req, err := c.NewAuthorizationRequest()
	require.NoError(t, err)
	assert.Len(t, req.State, 43)
	assert.Equal(t, "google", req.RegistrationID)
	verifier := req.AdditionalParameters["code_verifier"]
	require.NotEmpty(t, verifier)

	u, err := url.Parse(c.AuthCodeURL(req))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, req.State, q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotContains(t, u.String(), verifier)
	assert.Equal(t, req.AdditionalParameters["nonce"], q.Get("nonce"))

	other, err := c.NewAuthorizationRequest()
	require.NoError(t, err)
	assert.NotEqual(t, req.State, other.State)
}

func TestExchangeFetchAndRevoke(t *testing.T) {
	ctx := context.Background()
	fake := idptest.New(t, kakaoProfile)
	c, err := idp.NewClient(fake.Registration("kakao"), nil)
	require.NoError(t, err)

	req, err := c.NewAuthorizationRequest()
	require.NoError(t, err)

	tok, err := c.Exchange(ctx, idptest.GoodCode, req)
	require.NoError(t, err)
	assert.Equal(t, idptest.AccessToken, tok.AccessToken)
	assert.Equal(t, []string{req.AdditionalParameters["code_verifier"]}, fake.Verifiers())

	raw, err := c.FetchProfile(ctx, tok)
	require.NoError(t, err)
	info, err := userinfo.Kakao{}.ExtractUserInfo(raw)
	require.NoError(t, err)
	assert.Equal(t, "4012345678", info.ProviderID)

	require.NoError(t, c.Revoke(ctx, tok.AccessToken))
	assert.Equal(t, []string{idptest.AccessToken}, fake.Revoked())

	fake.SetRevokeStatus(http.StatusInternalServerError)
	assert.ErrorIs(t, c.Revoke(ctx, tok.AccessToken), idp.ErrProviderStatus)
}

func TestExchangeBadCode(t *testing.T) {
	fake := idptest.New(t, kakaoProfile)
	c, err := idp.NewClient(fake.Registration("kakao"), nil)
	require.NoError(t, err)
	req, err := c.NewAuthorizationRequest()
	require.NoError(t, err)

	_, err = c.Exchange(context.Background(), "bad", req)
	assert.Error(t, err)
}

func TestClientsLookup(t *testing.T) {
	fake := idptest.New(t, kakaoProfile)
	c, err := idp.NewClient(fake.Registration("naver"), nil)
	require.NoError(t, err)
	cs := idp.NewClients(c)

	got, err := cs.Get("NAVER")
	require.NoError(t, err)
	assert.Equal(t, "naver", got.Name())

	_, err = cs.Get("bogus")
	assert.ErrorIs(t, err, userinfo.ErrUnsupportedProvider)
	assert.Equal(t, []string{"naver"}, cs.Names())
}
