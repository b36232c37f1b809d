package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthExpired(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthorized", &EndpointError{StatusCode: http.StatusUnauthorized}, true},
		{"forbidden", &EndpointError{StatusCode: http.StatusForbidden}, true},
		{"wrapped unauthorized", fmt.Errorf("page 3: %w", &EndpointError{StatusCode: 401}), true},
		{"server error", &EndpointError{StatusCode: http.StatusInternalServerError}, false},
		{"rate limited", &EndpointError{StatusCode: http.StatusTooManyRequests}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthExpired(tt.err))
		})
	}
}

func TestErrorMessagesCarryContext(t *testing.T) {
	ee := &EndpointError{Method: "POST", URL: "https://x/search", StatusCode: 500, Body: " oops \n"}
	assert.Equal(t, "API error (HTTP 500) POST https://x/search: oops", ee.Error())

	re := &ServiceResolutionError{Service: "msgHist", StatusCode: 404, Body: "no such account"}
	assert.Contains(t, re.Error(), "msgHist")
	assert.Contains(t, re.Error(), "no such account")

	ae := &AuthenticationError{Op: "login", StatusCode: 401, Body: `{"error":"bad password"}`}
	assert.Contains(t, ae.Error(), "login failed")
	assert.Contains(t, ae.Error(), "bad password")
}

func TestUnwrapChains(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	re := &ServiceResolutionError{Service: "agentVep", Err: cause}
	assert.ErrorIs(t, re, cause)

	ae := &AuthenticationError{Op: "refresh", Err: ErrNotAuthenticated}
	assert.ErrorIs(t, ae, ErrNotAuthenticated)

	pe := &PaginationError{Count: 250, Failed: []int{100}, Err: &EndpointError{StatusCode: 401}}
	assert.True(t, IsAuthExpired(pe))
	assert.Contains(t, pe.Error(), "[100]")
}
