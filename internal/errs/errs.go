// Package errs contains the error taxonomy shared by the resolver, session,
// endpoint clients, and the pagination helper.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAuthenticated is returned when an authorized call is attempted
// without an active bearer or OAuth session.
var ErrNotAuthenticated = errors.New("not authenticated")

// ServiceResolutionError reports a failed domain lookup.
type ServiceResolutionError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolving service %q: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("resolving service %q: HTTP %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *ServiceResolutionError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a rejected login, refresh, or logout.
type AuthenticationError struct {
	Op         string // "login", "refresh", "logout"
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// EndpointError is a non-2xx response from a business endpoint.
type EndpointError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("API error (HTTP %d) %s %s: %s", e.StatusCode, e.Method, e.URL, strings.TrimSpace(e.Body))
}

// PaginationError reports pages that still failed after the re-login retry.
type PaginationError struct {
	Count  int
	Failed []int // offsets
	Err    error
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("fetching %d records: %d page(s) failed at offsets %v: %v", e.Count, len(e.Failed), e.Failed, e.Err)
}

func (e *PaginationError) Unwrap() error {
	return e.Err
}

// IsAuthExpired reports whether err is an endpoint rejection caused by an
// expired or revoked session (HTTP 401 or 403).
func IsAuthExpired(err error) bool {
	var ee *EndpointError
	if !errors.As(err, &ee) {
		return false
	}
	return ee.StatusCode == http.StatusUnauthorized || ee.StatusCode == http.StatusForbidden
}
