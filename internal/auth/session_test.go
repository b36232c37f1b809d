package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/dghubble/oauth1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagekit/lp/internal/client"
	"github.com/engagekit/lp/internal/errs"
	"github.com/engagekit/lp/internal/testutil"
)

func passwordCred() PasswordCredential {
	return PasswordCredential{Account: testutil.AccountID, Username: "agent", Password: "secret"}
}

func oauthCred() OAuthCredential {
	return OAuthCredential{
		Account:           testutil.AccountID,
		ConsumerKey:       "key",
		ConsumerSecret:    "consumer-secret",
		AccessToken:       "token",
		AccessTokenSecret: "token-secret",
	}
}

func newSession(t *testing.T, srv *testutil.Server, creds Credentials) *Session {
	t.Helper()
	c := srv.Client(t)
	s, err := NewSession(c, srv.Resolver(c), creds)
	require.NoError(t, err)
	return s
}

func TestLogin_SetsBearerHeader(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, passwordCred())
	assert.Equal(t, StateUnauthenticated, s.State())

	require.NoError(t, s.Login(context.Background()))
	assert.Equal(t, StateBearer, s.State())
	assert.Equal(t, uint64(1), s.Generation())
	assert.True(t, s.CanRelogin())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	hc, err := s.Authorize(req)
	require.NoError(t, err)
	assert.NotNil(t, hc)
	assert.Equal(t, "Bearer "+srv.Bearer(), req.Header.Get("Authorization"))
}

func TestOpen_PasswordLogsIn(t *testing.T) {
	srv := testutil.NewServer(t)
	c := srv.Client(t)

	s, err := Open(context.Background(), c, srv.Resolver(c), passwordCred())
	require.NoError(t, err)
	assert.Equal(t, StateBearer, s.State())
	assert.Equal(t, 1, srv.Logins())
}

func TestLogin_Rejected(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.LoginStatus = http.StatusUnauthorized
	s := newSession(t, srv, passwordCred())

	err := s.Login(context.Background())

	var ae *errs.AuthenticationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "login", ae.Op)
	assert.Equal(t, http.StatusUnauthorized, ae.StatusCode)
	assert.Contains(t, ae.Body, "invalid credentials")
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Equal(t, 1, srv.Logins())
}

func TestRefresh_AdoptsRotatedTokens(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.RotateOnRefresh = true
	s := newSession(t, srv, passwordCred())
	require.NoError(t, s.Login(context.Background()))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, srv.Refreshes())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	_, err := s.Authorize(req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+srv.Bearer(), req.Header.Get("Authorization"))

	// the rotated csrf is what the next call sends
	require.NoError(t, s.Refresh(context.Background()))
}

func TestLogout_ResetsState(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, passwordCred())
	require.NoError(t, s.Login(context.Background()))

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, 1, srv.Logouts())
	assert.Equal(t, StateUnauthenticated, s.State())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	_, err := s.Authorize(req)
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestRefreshAndLogout_RequireBearer(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, passwordCred())

	for name, call := range map[string]func(context.Context) error{
		"refresh": s.Refresh,
		"logout":  s.Logout,
	} {
		t.Run(name, func(t *testing.T) {
			err := call(context.Background())
			var ae *errs.AuthenticationError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, name, ae.Op)
			assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
		})
	}
	assert.Equal(t, 0, srv.TotalRequests())
}

func TestOAuth_SignsWithoutNetwork(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, oauthCred())

	assert.Equal(t, StateOAuth, s.State())
	assert.False(t, s.CanRelogin())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	hc, err := s.Authorize(req)
	require.NoError(t, err)
	_, ok := hc.Transport.(*oauth1.Transport)
	assert.True(t, ok, "expected an oauth1 signing transport, got %T", hc.Transport)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, 0, srv.TotalRequests())
}

func TestOAuth_RequestCarriesSignature(t *testing.T) {
	srv := testutil.NewServer(t)
	var got string
	srv.Handle(http.MethodGet, "/probe", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		testutil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s := newSession(t, srv, oauthCred())

	err := s.Client().Do(context.Background(), client.Request{Method: http.MethodGet, URL: srv.URL + "/probe"}, s, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "OAuth "), "authorization header %q", got)
	assert.Contains(t, got, `oauth_consumer_key="key"`)
	assert.Contains(t, got, `oauth_token="token"`)
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, passwordCred())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	_, err := s.Authorize(req)
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestRelogin_ConcurrentExpiriesShareOneLogin(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, passwordCred())
	require.NoError(t, s.Login(context.Background()))
	seen := s.Generation()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Relogin(context.Background(), seen))
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, srv.Logins())
	assert.Equal(t, seen+1, s.Generation())
}

func TestRelogin_OAuthCannotRelogin(t *testing.T) {
	srv := testutil.NewServer(t)
	s := newSession(t, srv, oauthCred())

	err := s.Relogin(context.Background(), s.Generation())
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
	assert.Equal(t, 0, srv.Logins())
}

func TestNewSession_Validation(t *testing.T) {
	srv := testutil.NewServer(t)
	c := srv.Client(t)
	r := srv.Resolver(c)

	_, err := NewSession(c, r, nil)
	assert.Error(t, err)

	_, err = NewSession(c, r, PasswordCredential{Account: testutil.AccountID, Username: "agent"})
	assert.Error(t, err)

	_, err = NewSession(c, r, OAuthCredential{Account: testutil.AccountID, ConsumerKey: "k"})
	assert.Error(t, err)

	other := passwordCred()
	other.Account = "9999"
	_, err = NewSession(c, r, other)
	assert.ErrorContains(t, err, "9999")
}
