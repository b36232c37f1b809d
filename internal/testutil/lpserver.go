// Package testutil provides a fake engagement platform for tests: domain
// discovery, the login service, and registrable business endpoints, all on
// one TLS test server.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/engagekit/lp/internal/client"
)

// AccountID is the account every fake endpoint is registered under.
const AccountID = "1234"

// Call is one request observed by the fake server.
type Call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// Server is a fake platform. All services resolve to the server's own host.
type Server struct {
	*httptest.Server
	Host string

	mu          sync.Mutex
	handlers    map[string]http.HandlerFunc
	calls       []Call
	logins      int
	refreshes   int
	logouts     int
	discoveries int

	// LoginStatus, when non-zero, makes every login fail with that status.
	LoginStatus int
	// RotateOnRefresh makes refresh issue a new bearer and csrf.
	RotateOnRefresh bool
}

// NewServer starts a fake platform that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{handlers: map[string]http.HandlerFunc{}}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(s.serve))
	s.Host = strings.TrimPrefix(s.Server.URL, "https://")
	t.Cleanup(s.Server.Close)
	return s
}

// Client returns an API client that trusts the server's certificate.
func (s *Server) Client(t *testing.T) *client.Client {
	return client.New(client.WithHTTPClient(s.Server.Client()), client.WithLogger(zaptest.NewLogger(t)))
}

// Resolver returns a resolver that discovers services through the server.
func (s *Server) Resolver(c *client.Client) *client.Resolver {
	r := client.NewResolver(c, AccountID, client.WithDiscoveryURL(s.Server.URL))
	r.Pin(client.ServiceDataAccess, s.Host)
	return r
}

// Handle registers h for method and path.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method+" "+path] = h
}

// HandleJSON registers a handler that writes v as a 200 JSON response.
func (s *Server) HandleJSON(method, path string, v any) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, v)
	})
}

// Bearer returns the token issued by the most recent login.
func (s *Server) Bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bearerFor(s.logins)
}

// Authorized reports whether r carries the current bearer token.
func (s *Server) Authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+s.Bearer()
}

// Logins returns the number of successful and failed login calls.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Refreshes returns the number of refresh calls.
func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Logouts returns the number of logout calls.
func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

// Discoveries returns the number of domain discovery calls.
func (s *Server) Discoveries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discoveries
}

// Calls returns the business-endpoint requests seen so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// TotalRequests returns the number of requests that reached the server.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discoveries + s.logins + s.refreshes + s.logouts + len(s.calls)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bearerFor(n int) string {
	return fmt.Sprintf("bearer-%d", n)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	accountPrefix := "/api/account/" + AccountID
	raw, _ := io.ReadAll(r.Body)

	switch {
	case strings.HasPrefix(r.URL.Path, accountPrefix+"/service/") && strings.HasSuffix(r.URL.Path, "/baseURI.json"):
		s.mu.Lock()
		s.discoveries++
		s.mu.Unlock()
		WriteJSON(w, http.StatusOK, map[string]string{"baseURI": s.Host})
		return

	case r.Method == http.MethodPost && r.URL.Path == accountPrefix+"/login":
		s.mu.Lock()
		s.logins++
		n, status := s.logins, s.LoginStatus
		s.mu.Unlock()
		if status != 0 {
			WriteJSON(w, status, map[string]string{"error": "invalid credentials"})
			return
		}
		var body map[string]string
		_ = json.Unmarshal(raw, &body)
		if body["username"] == "" || body["password"] == "" || r.URL.Query().Get("v") != "1.3" {
			WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed login"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"bearer": bearerFor(n), "csrf": fmt.Sprintf("csrf-%d", n)})
		return

	case r.Method == http.MethodPost && (r.URL.Path == accountPrefix+"/refresh" || r.URL.Path == accountPrefix+"/logout"):
		var body map[string]string
		_ = json.Unmarshal(raw, &body)
		s.mu.Lock()
		refresh := strings.HasSuffix(r.URL.Path, "/refresh")
		if refresh {
			s.refreshes++
		} else {
			s.logouts++
		}
		expected := fmt.Sprintf("csrf-%d", s.logins)
		rotate := s.RotateOnRefresh && refresh
		if rotate {
			s.logins++
		}
		n := s.logins
		s.mu.Unlock()

		if body["csfr"] != expected {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad csrf"})
			return
		}
		if rotate {
			WriteJSON(w, http.StatusOK, map[string]string{"bearer": bearerFor(n), "csrf": fmt.Sprintf("csrf-%d", n)})
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	call := Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h, ok := s.handlers[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no handler for " + r.Method + " " + r.URL.Path})
		return
	}
	h(w, r)
}
