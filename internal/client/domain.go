// Package client provides the HTTP core for the engagement APIs: JSON request
// execution, status-to-error mapping, and per-account service domain discovery.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/engagekit/lp/internal/errs"
)

// Service names understood by the domain discovery endpoint. They are case
// sensitive.
const (
	ServiceLogin             = "agentVep"
	ServiceMessagingHistory  = "msgHist"
	ServiceEngagementHistory = "engHistDomain"
	ServiceDataReporting     = "leDataReporting"
	ServiceAccountConfig     = "accountConfigReadWrite"
	ServiceDataAccess        = "dataAccess"
)

const (
	DefaultDiscoveryURL     = "http://api.liveperson.net"
	DefaultDataAccessDomain = "va.da.liveperson.net"

	discoveryPathFormat = "/api/account/%s/service/%s/baseURI.json"
	discoveryAPIVersion = "1.0"
)

// KnownServices lists the service names used by the endpoint clients.
func KnownServices() []string {
	return []string{
		ServiceLogin, ServiceMessagingHistory, ServiceEngagementHistory,
		ServiceDataReporting, ServiceAccountConfig, ServiceDataAccess,
	}
}

// Resolver maps service names to base domains for one account. Lookups are
// cached for the lifetime of the Resolver.
type Resolver struct {
	client       *Client
	accountID    string
	discoveryURL string

	mu    sync.Mutex
	cache map[string]string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDiscoveryURL overrides the discovery host (scheme and authority).
func WithDiscoveryURL(u string) ResolverOption {
	return func(r *Resolver) { r.discoveryURL = strings.TrimRight(u, "/") }
}

// NewResolver creates a Resolver for accountID. The Data Access service has
// no discovery entry and is pinned to its fixed domain.
func NewResolver(c *Client, accountID string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:       c,
		accountID:    accountID,
		discoveryURL: DefaultDiscoveryURL,
		cache:        map[string]string{ServiceDataAccess: DefaultDataAccessDomain},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AccountID returns the account the resolver serves.
func (r *Resolver) AccountID() string {
	return r.accountID
}

// Client returns the HTTP client used for lookups.
func (r *Resolver) Client() *Client {
	return r.client
}

// Pin seeds the cache so that service resolves to domain without a lookup.
func (r *Resolver) Pin(service, domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[service] = domain
}

type baseURIResponse struct {
	BaseURI string `json:"baseURI"`
}

// Resolve returns the base domain for service, performing one
// unauthenticated discovery call on a cache miss. Failures are not retried.
func (r *Resolver) Resolve(ctx context.Context, service string) (string, error) {
	r.mu.Lock()
	domain, ok := r.cache[service]
	r.mu.Unlock()
	if ok {
		return domain, nil
	}

	endpoint := r.discoveryURL + fmt.Sprintf(discoveryPathFormat, url.PathEscape(r.accountID), url.PathEscape(service))
	var resp baseURIResponse
	err := r.client.Do(ctx, Request{
		Method: http.MethodGet,
		URL:    endpoint,
		Query:  url.Values{"version": {discoveryAPIVersion}},
	}, nil, &resp)
	if err != nil {
		var ee *errs.EndpointError
		if errors.As(err, &ee) {
			return "", &errs.ServiceResolutionError{Service: service, StatusCode: ee.StatusCode, Body: ee.Body}
		}
		return "", &errs.ServiceResolutionError{Service: service, Err: err}
	}
	if resp.BaseURI == "" {
		return "", &errs.ServiceResolutionError{Service: service, StatusCode: http.StatusOK, Body: "response has no baseURI"}
	}

	r.mu.Lock()
	r.cache[service] = resp.BaseURI
	r.mu.Unlock()

	r.client.logger.Debug("resolved service domain", zap.String("service", service), zap.String("domain", resp.BaseURI))
	return resp.BaseURI, nil
}
