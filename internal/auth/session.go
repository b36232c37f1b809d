package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"

	"github.com/engagekit/lp/internal/client"
	"github.com/engagekit/lp/internal/errs"
)

const loginAPIVersion = "1.3"

// State is the authentication state of a Session.
type State int

const (
	StateUnauthenticated State = iota
	StateBearer
	StateOAuth
)

func (s State) String() string {
	switch s {
	case StateBearer:
		return "bearer"
	case StateOAuth:
		return "oauth"
	default:
		return "unauthenticated"
	}
}

// Session holds the credential state of one account. It is safe for
// concurrent use: readers snapshot the token under a read lock, and logins
// are serialised so simultaneous expiries trigger a single re-login.
type Session struct {
	client   *client.Client
	resolver *client.Resolver
	logger   *zap.Logger

	loginMu sync.Mutex

	mu         sync.RWMutex
	creds      Credentials
	state      State
	bearer     string
	csrf       string
	oauth      *http.Client
	generation uint64
}

// NewSession builds a Session for creds. OAuth credentials produce a ready
// OAuth session without any network call; password credentials start
// unauthenticated until Login is called.
func NewSession(c *client.Client, resolver *client.Resolver, creds Credentials) (*Session, error) {
	if creds == nil {
		return nil, errors.New("no credentials configured")
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if creds.AccountID() != resolver.AccountID() {
		return nil, fmt.Errorf("credentials are for account %q but resolver serves %q", creds.AccountID(), resolver.AccountID())
	}

	s := &Session{
		client:   c,
		resolver: resolver,
		logger:   c.Logger().Named("session"),
		creds:    creds,
	}

	switch cr := creds.(type) {
	case OAuthCredential:
		s.ConfigureOAuth(cr)
	case PasswordCredential:
	default:
		return nil, fmt.Errorf("unsupported credential type %T", creds)
	}
	return s, nil
}

// Open builds a Session and, for password credentials, logs in.
func Open(ctx context.Context, c *client.Client, resolver *client.Resolver, creds Credentials) (*Session, error) {
	s, err := NewSession(c, resolver, creds)
	if err != nil {
		return nil, err
	}
	if _, ok := creds.(PasswordCredential); ok {
		if err := s.Login(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AccountID returns the account the session is scoped to.
func (s *Session) AccountID() string {
	return s.resolver.AccountID()
}

// Resolver returns the domain resolver shared by the session.
func (s *Session) Resolver() *client.Resolver {
	return s.resolver
}

// Client returns the HTTP client shared by the session.
func (s *Session) Client() *client.Client {
	return s.client
}

// State reports the current authentication state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Generation is incremented on every successful login.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// CanRelogin reports whether an expired session can be recovered by logging
// in again with stored password credentials.
func (s *Session) CanRelogin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.creds.(PasswordCredential)
	return ok && s.state == StateBearer
}

type tokenResponse struct {
	Bearer string `json:"bearer"`
	CSRF   string `json:"csrf"`
}

// Login logs in with the stored password credentials.
func (s *Session) Login(ctx context.Context) error {
	s.mu.RLock()
	cred, ok := s.creds.(PasswordCredential)
	s.mu.RUnlock()
	if !ok {
		return errors.New("login requires username/password credentials")
	}
	return s.LoginWithPassword(ctx, cred.Username, cred.Password)
}

// LoginWithPassword exchanges username and password for a bearer session.
// A rejected login is returned as *errs.AuthenticationError and not retried.
func (s *Session) LoginWithPassword(ctx context.Context, username, password string) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()
	return s.login(ctx, username, password)
}

func (s *Session) login(ctx context.Context, username, password string) error {
	base, err := s.accountURL(ctx)
	if err != nil {
		return err
	}

	var resp tokenResponse
	err = s.client.Do(ctx, client.Request{
		Method: http.MethodPost,
		URL:    base + "/login",
		Query:  url.Values{"v": {loginAPIVersion}},
		Body:   map[string]string{"username": username, "password": password},
	}, nil, &resp)
	if err != nil {
		return authError("login", err)
	}
	if resp.Bearer == "" {
		return &errs.AuthenticationError{Op: "login", StatusCode: http.StatusOK, Body: "response has no bearer token"}
	}

	s.mu.Lock()
	s.creds = PasswordCredential{Account: s.resolver.AccountID(), Username: username, Password: password}
	s.state = StateBearer
	s.bearer = resp.Bearer
	s.csrf = resp.CSRF
	s.oauth = nil
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("account", s.resolver.AccountID()), zap.Uint64("generation", gen))
	return nil
}

// Relogin logs in again after an authentication failure observed at
// generation seen. If another caller already logged in since then, it
// returns immediately so concurrent expiries share one login.
func (s *Session) Relogin(ctx context.Context, seen uint64) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	s.mu.RLock()
	current := s.generation
	cred, ok := s.creds.(PasswordCredential)
	s.mu.RUnlock()

	if current != seen {
		return nil
	}
	if !ok {
		return fmt.Errorf("re-login: %w", errs.ErrNotAuthenticated)
	}
	s.logger.Info("re-login after session expiry", zap.Uint64("generation", seen))
	return s.login(ctx, cred.Username, cred.Password)
}

// ConfigureOAuth switches the session to OAuth1 request signing. No network
// call is made.
func (s *Session) ConfigureOAuth(cred OAuthCredential) {
	base := s.client.HTTPClient()
	config := oauth1.NewConfig(cred.ConsumerKey, cred.ConsumerSecret)
	token := oauth1.NewToken(cred.AccessToken, cred.AccessTokenSecret)
	signing := config.Client(context.WithValue(context.Background(), oauth1.HTTPClient, base), token)
	signing.Timeout = base.Timeout

	s.mu.Lock()
	s.creds = cred
	s.state = StateOAuth
	s.bearer = ""
	s.csrf = ""
	s.oauth = signing
	s.mu.Unlock()

	s.logger.Info("configured oauth1 signing", zap.String("account", cred.Account))
}

// Refresh extends the bearer session server-side. Rotated tokens in the
// response replace the current ones.
func (s *Session) Refresh(ctx context.Context) error {
	resp, err := s.csrfCall(ctx, "refresh")
	if err != nil {
		return err
	}

	s.mu.Lock()
	if resp.Bearer != "" {
		s.bearer = resp.Bearer
	}
	if resp.CSRF != "" {
		s.csrf = resp.CSRF
	}
	s.mu.Unlock()

	s.logger.Info("refreshed bearer session")
	return nil
}

// Logout invalidates the bearer session server-side and returns the session
// to the unauthenticated state.
func (s *Session) Logout(ctx context.Context) error {
	if _, err := s.csrfCall(ctx, "logout"); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.bearer = ""
	s.csrf = ""
	s.mu.Unlock()

	s.logger.Info("logged out")
	return nil
}

// csrfCall posts the CSRF token to a login-service operation. The body field
// is spelled "csfr" on the wire.
func (s *Session) csrfCall(ctx context.Context, op string) (tokenResponse, error) {
	s.mu.RLock()
	state, csrf := s.state, s.csrf
	s.mu.RUnlock()

	if state != StateBearer {
		return tokenResponse{}, &errs.AuthenticationError{Op: op, Err: errs.ErrNotAuthenticated}
	}

	base, err := s.accountURL(ctx)
	if err != nil {
		return tokenResponse{}, err
	}

	var resp tokenResponse
	err = s.client.Do(ctx, client.Request{
		Method: http.MethodPost,
		URL:    base + "/" + op,
		Body:   map[string]string{"csfr": csrf},
	}, nil, &resp)
	if err != nil {
		return tokenResponse{}, authError(op, err)
	}
	return resp, nil
}

// Authorize implements client.Authorizer. Bearer sessions set the
// Authorization header; OAuth sessions return a client that signs the
// request when it is sent.
func (s *Session) Authorize(req *http.Request) (*http.Client, error) {
	s.mu.RLock()
	state, bearer, signing := s.state, s.bearer, s.oauth
	s.mu.RUnlock()

	switch state {
	case StateBearer:
		req.Header.Set("Authorization", "Bearer "+bearer)
		return s.client.HTTPClient(), nil
	case StateOAuth:
		return signing, nil
	default:
		return nil, errs.ErrNotAuthenticated
	}
}

func (s *Session) accountURL(ctx context.Context) (string, error) {
	domain, err := s.resolver.Resolve(ctx, client.ServiceLogin)
	if err != nil {
		return "", err
	}
	return "https://" + domain + "/api/account/" + url.PathEscape(s.resolver.AccountID()), nil
}

func authError(op string, err error) error {
	var ee *errs.EndpointError
	if errors.As(err, &ee) {
		return &errs.AuthenticationError{Op: op, StatusCode: ee.StatusCode, Body: ee.Body}
	}
	return &errs.AuthenticationError{Op: op, Err: err}
}
