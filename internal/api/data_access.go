package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

// DataAccess exports raw activity files. Its domain is fixed per region
// rather than discovered.
type DataAccess struct {
	service
}

// NewDataAccess returns a Data Access client.
func NewDataAccess(ctx context.Context, session *auth.Session) (*DataAccess, error) {
	s, err := newService(ctx, session, client.ServiceDataAccess)
	if err != nil {
		return nil, err
	}
	return &DataAccess{service: s}, nil
}

// AgentActivity lists agent activity export files between two millisecond epochs.
func (d *DataAccess) AgentActivity(ctx context.Context, from, to int64) (any, error) {
	return d.call(ctx, http.MethodGet, d.accountPath("/data_access_le/account/%s/le/agentActivity"), timeRange(from, to), nil)
}

// WebSession lists web session export files between two millisecond epochs.
func (d *DataAccess) WebSession(ctx context.Context, from, to int64) (any, error) {
	return d.call(ctx, http.MethodGet, d.accountPath("/data_access_le/account/%s/le/webSession"), timeRange(from, to), nil)
}

func timeRange(from, to int64) url.Values {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(from, 10))
	params.Set("endTime", strconv.FormatInt(to, 10))
	return params
}
