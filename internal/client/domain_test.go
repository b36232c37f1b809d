package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagekit/lp/internal/errs"
)

func newDiscoveryServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "1.0", r.URL.Query().Get("version"))
		switch r.URL.Path {
		case "/api/account/1234/service/msgHist/baseURI.json":
			_, _ = w.Write([]byte(`{"service":"msgHist","account":"1234","baseURI":"va.msghist.liveperson.net"}`))
		case "/api/account/1234/service/emptyBase/baseURI.json":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"unknown service"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_CachesLookups(t *testing.T) {
	var hits int32
	srv := newDiscoveryServer(t, &hits)
	r := NewResolver(New(WithHTTPClient(srv.Client())), "1234", WithDiscoveryURL(srv.URL+"/"))

	for i := 0; i < 3; i++ {
		domain, err := r.Resolve(context.Background(), ServiceMessagingHistory)
		require.NoError(t, err)
		assert.Equal(t, "va.msghist.liveperson.net", domain)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolve_ConcurrentCallers(t *testing.T) {
	var hits int32
	srv := newDiscoveryServer(t, &hits)
	r := NewResolver(New(WithHTTPClient(srv.Client())), "1234", WithDiscoveryURL(srv.URL))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			domain, err := r.Resolve(context.Background(), ServiceMessagingHistory)
			assert.NoError(t, err)
			assert.Equal(t, "va.msghist.liveperson.net", domain)
		}()
	}
	wg.Wait()
}

func TestResolve_FailureSurfacesBody(t *testing.T) {
	var hits int32
	srv := newDiscoveryServer(t, &hits)
	r := NewResolver(New(WithHTTPClient(srv.Client())), "1234", WithDiscoveryURL(srv.URL))

	_, err := r.Resolve(context.Background(), "nope")

	var sre *errs.ServiceResolutionError
	require.ErrorAs(t, err, &sre)
	assert.Equal(t, "nope", sre.Service)
	assert.Equal(t, http.StatusNotFound, sre.StatusCode)
	assert.Contains(t, sre.Body, "unknown service")

	// failures are not cached
	_, _ = r.Resolve(context.Background(), "nope")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestResolve_MissingBaseURI(t *testing.T) {
	var hits int32
	srv := newDiscoveryServer(t, &hits)
	r := NewResolver(New(WithHTTPClient(srv.Client())), "1234", WithDiscoveryURL(srv.URL))

	_, err := r.Resolve(context.Background(), "emptyBase")
	var sre *errs.ServiceResolutionError
	require.ErrorAs(t, err, &sre)
}

func TestResolve_PinnedAndDataAccess(t *testing.T) {
	var hits int32
	srv := newDiscoveryServer(t, &hits)
	r := NewResolver(New(WithHTTPClient(srv.Client())), "1234", WithDiscoveryURL(srv.URL))

	domain, err := r.Resolve(context.Background(), ServiceDataAccess)
	require.NoError(t, err)
	assert.Equal(t, DefaultDataAccessDomain, domain)

	r.Pin(ServiceAccountConfig, "pinned.example.com")
	domain, err = r.Resolve(context.Background(), ServiceAccountConfig)
	require.NoError(t, err)
	assert.Equal(t, "pinned.example.com", domain)

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}
