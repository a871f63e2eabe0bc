package social

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialgate/internal/account"
	"github.com/dropDatabas3/socialgate/internal/cache"
	"github.com/dropDatabas3/socialgate/internal/jwt"
	"github.com/dropDatabas3/socialgate/internal/metrics"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp"
	"github.com/dropDatabas3/socialgate/internal/oauth/idp/idptest"
	"github.com/dropDatabas3/socialgate/internal/oauth/userinfo"
	"github.com/dropDatabas3/socialgate/internal/security/secretbox"
	"github.com/dropDatabas3/socialgate/internal/tokenstore"
)

var testSecret = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("s"), 32))

func kakaoRaw() map[string]any {
	return map[string]any{
		"id": "12345",
		"kakao_account": map[string]any{
			"profile": map[string]any{"nickname": "Jane"},
			"email":   "jane@x.com",
		},
	}
}

func TestHandleLoginIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := account.NewMemoryDirectory()
	svc := NewLoginService(LoginDeps{Registry: userinfo.DefaultRegistry(), Accounts: dir})

	first, err := svc.HandleLogin(ctx, "kakao", kakaoRaw())
	require.NoError(t, err)
	second, err := svc.HandleLogin(ctx, "KAKAO", kakaoRaw())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, dir.Len())

	acc, err := dir.FindByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, account.ProviderKakao, acc.ProviderType)
	assert.Equal(t, "12345", acc.ProviderID)
	assert.Equal(t, "Jane", acc.DisplayName)
	assert.Equal(t, "jane@x.com", acc.Email)
}

func TestHandleLoginSameIDDifferentProviders(t *testing.T) {
	ctx := context.Background()
	dir := account.NewMemoryDirectory()
	svc := NewLoginService(LoginDeps{Registry: userinfo.DefaultRegistry(), Accounts: dir})

	k, err := svc.HandleLogin(ctx, "kakao", kakaoRaw())
	require.NoError(t, err)
	g, err := svc.HandleLogin(ctx, "google", map[string]any{"sub": "12345", "name": "Jane"})
	require.NoError(t, err)

	assert.NotEqual(t, k, g)
	assert.Equal(t, 2, dir.Len())
}

func TestHandleLoginErrors(t *testing.T) {
	ctx := context.Background()
	dir := account.NewMemoryDirectory()
	svc := NewLoginService(LoginDeps{Registry: userinfo.DefaultRegistry(), Accounts: dir})

	_, err := svc.HandleLogin(ctx, "bogus", kakaoRaw())
	assert.ErrorIs(t, err, userinfo.ErrUnsupportedProvider)

	_, err = svc.HandleLogin(ctx, "kakao", map[string]any{"kakao_account": map[string]any{}})
	assert.ErrorIs(t, err, userinfo.ErrProfileExtraction)
	assert.Zero(t, dir.Len())
}

// racyDirectory simula que otro request creó la cuenta entre find y create.
type racyDirectory struct {
	*account.MemoryDirectory
	lookupErr error
	raced     bool
}

func (d *racyDirectory) FindByProvider(ctx context.Context, pt account.ProviderType, id string) (*account.Account, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	return d.MemoryDirectory.FindByProvider(ctx, pt, id)
}

func (d *racyDirectory) Create(ctx context.Context, p *userinfo.OAuthUserInfo, pt account.ProviderType) (*account.Account, error) {
	if !d.raced {
		d.raced = true
		if _, err := d.MemoryDirectory.Create(ctx, p, pt); err != nil {
			return nil, err
		}
		return nil, account.ErrAlreadyExists
	}
	return d.MemoryDirectory.Create(ctx, p, pt)
}

func TestHandleLoginConcurrentCreate(t *testing.T) {
	dir := &racyDirectory{MemoryDirectory: account.NewMemoryDirectory()}
	svc := NewLoginService(LoginDeps{Registry: userinfo.DefaultRegistry(), Accounts: dir})

	id, err := svc.HandleLogin(context.Background(), "kakao", kakaoRaw())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, dir.Len())
}

func TestHandleLoginDirectoryFailure(t *testing.T) {
	boom := errors.New("connection refused")
	dir := &racyDirectory{MemoryDirectory: account.NewMemoryDirectory(), lookupErr: boom}
	svc := NewLoginService(LoginDeps{Registry: userinfo.DefaultRegistry(), Accounts: dir})

	_, err := svc.HandleLogin(context.Background(), "kakao", kakaoRaw())
	assert.ErrorIs(t, err, ErrAccountResolution)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, FailureLoginFailed, FailureCode(err))
}

type callbackFixture struct {
	svc      Services
	fake     *idptest.Provider
	codec    *jwt.Codec
	accounts *account.MemoryDirectory
	memo     *tokenstore.ProviderTokens
}

func newCallbackFixture(t *testing.T) *callbackFixture {
	t.Helper()
	fake := idptest.New(t, kakaoRaw())
	client, err := idp.NewClient(fake.Registration("kakao"), nil)
	require.NoError(t, err)

	store := cache.NewMemory("")
	codec, err := jwt.NewCodec(jwt.Config{Secret: testSecret}, tokenstore.NewRevocationStore(store), tokenstore.NewRefreshStore(store))
	require.NoError(t, err)
	box, err := secretbox.New(bytes.Repeat([]byte("b"), 32))
	require.NoError(t, err)

	f := &callbackFixture{
		fake:     fake,
		codec:    codec,
		accounts: account.NewMemoryDirectory(),
		memo:     tokenstore.NewProviderTokens(store, box),
	}
	f.svc = NewServices(Deps{
		Registry:       userinfo.DefaultRegistry(),
		Accounts:       f.accounts,
		Clients:        idp.NewClients(client),
		Codec:          codec,
		ProviderTokens: f.memo,
	})
	return f
}

func TestStartBuildsConsentURL(t *testing.T) {
	f := newCallbackFixture(t)

	req, consent, err := f.svc.Start.Start(context.Background(), "kakao")
	require.NoError(t, err)
	u, err := url.Parse(consent)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, req.State, u.Query().Get("state"))

	_, _, err = f.svc.Start.Start(context.Background(), "bogus")
	assert.ErrorIs(t, err, userinfo.ErrUnsupportedProvider)
}

func TestCallbackIssuesSession(t *testing.T) {
	ctx := context.Background()
	f := newCallbackFixture(t)
	req, _, err := f.svc.Start.Start(ctx, "kakao")
	require.NoError(t, err)

	res, err := f.svc.Callback.Callback(ctx, CallbackRequest{
		Provider: "kakao", Code: idptest.GoodCode, State: req.State, AuthRequest: req,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.accounts.Len())
	assert.True(t, f.codec.Verify(ctx, res.Tokens.AccessToken))
	sub, err := f.codec.ExtractSubject(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.SubjectID, sub)

	memo, err := f.memo.Take(ctx, res.SubjectID)
	require.NoError(t, err)
	require.NotNil(t, memo)
	assert.Equal(t, idptest.AccessToken, memo.AccessToken)
	assert.Equal(t, "kakao", memo.Provider)
}

func TestCallbackFailures(t *testing.T) {
	ctx := context.Background()
	f := newCallbackFixture(t)
	req, _, err := f.svc.Start.Start(ctx, "kakao")
	require.NoError(t, err)

	cases := []struct {
		name string
		in   CallbackRequest
		code string
	}{
		{"provider error", CallbackRequest{Provider: "kakao", Error: "access_denied", State: req.State, AuthRequest: req}, FailureAccessDenied},
		{"no attempt", CallbackRequest{Provider: "kakao", Code: idptest.GoodCode, State: req.State}, FailureInvalidState},
		{"state mismatch", CallbackRequest{Provider: "kakao", Code: idptest.GoodCode, State: "other", AuthRequest: req}, FailureInvalidState},
		{"missing code", CallbackRequest{Provider: "kakao", State: req.State, AuthRequest: req}, FailureInvalidState},
		{"unknown provider", CallbackRequest{Provider: "bogus", Code: idptest.GoodCode, State: req.State, AuthRequest: req}, FailureUnsupportedProvider},
		{"bad code", CallbackRequest{Provider: "kakao", Code: "bad", State: req.State, AuthRequest: req}, FailureLoginFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.svc.Callback.Callback(ctx, tc.in)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tc.code, FailureCode(err))
		})
	}
	assert.Zero(t, f.accounts.Len())
}

func TestCallbackRejectsAttemptFromOtherProvider(t *testing.T) {
	ctx := context.Background()
	f := newCallbackFixture(t)
	req, _, err := f.svc.Start.Start(ctx, "kakao")
	require.NoError(t, err)
	req.RegistrationID = "google"

	_, err = f.svc.Callback.Callback(ctx, CallbackRequest{
		Provider: "kakao", Code: idptest.GoodCode, State: req.State, AuthRequest: req,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCallbackMetricsIgnoreUnknownProviderNames(t *testing.T) {
	ctx := context.Background()
	f := newCallbackFixture(t)
	before := testutil.CollectAndCount(metrics.SocialLogins)

	for i := 0; i < 200; i++ {
		_, err := f.svc.Callback.Callback(ctx, CallbackRequest{Provider: fmt.Sprintf("x%d", i), Code: idptest.GoodCode})
		require.ErrorIs(t, err, userinfo.ErrUnsupportedProvider)
	}

	// A lo sumo aparece la serie provider="unknown",result="failure".
	assert.LessOrEqual(t, testutil.CollectAndCount(metrics.SocialLogins), before+1)
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.SocialLogins.WithLabelValues(metrics.UnknownProvider, "failure")), float64(200))
}

func TestCallbackMetricsUseRegisteredName(t *testing.T) {
	ctx := context.Background()
	f := newCallbackFixture(t)
	success := metrics.SocialLogins.WithLabelValues("kakao", "success")
	before := testutil.ToFloat64(success)

	req, _, err := f.svc.Start.Start(ctx, "kakao")
	require.NoError(t, err)
	_, err = f.svc.Callback.Callback(ctx, CallbackRequest{
		Provider: "  KAKAO ", Code: idptest.GoodCode, State: req.State, AuthRequest: req,
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(success))
}
