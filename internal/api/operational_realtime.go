package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

// OperationalRealtime reports contact center performance over the last 24
// hours, refreshed every few seconds.
type OperationalRealtime struct {
	service
}

// NewOperationalRealtime resolves the data reporting domain and returns a client.
func NewOperationalRealtime(ctx context.Context, session *auth.Session) (*OperationalRealtime, error) {
	s, err := newService(ctx, session, client.ServiceDataReporting)
	if err != nil {
		return nil, err
	}
	return &OperationalRealtime{service: s}, nil
}

// QueueHealth returns queue metrics at the account or skill level.
func (o *OperationalRealtime) QueueHealth(ctx context.Context, q OperationsQuery) (any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return o.call(ctx, http.MethodGet, o.accountPath("/operations/api/account/%s/queuehealth"),
		q.values("timeframe", "skillIds", "interval"), nil)
}

// EngagementActivity returns engagement metrics at the account, skill or agent level.
func (o *OperationalRealtime) EngagementActivity(ctx context.Context, q OperationsQuery) (any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return o.call(ctx, http.MethodGet, o.accountPath("/operations/api/account/%s/engactivity"),
		q.values("timeframe", "agentIds", "skillIds", "interval"), nil)
}

// AgentActivity returns the agent state distribution. AgentIDs is required.
func (o *OperationalRealtime) AgentActivity(ctx context.Context, q OperationsQuery) (any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if q.AgentIDs == "" {
		return nil, errors.New("agent activity needs agent ids (or \"all\")")
	}
	body := map[string]any{
		"timeframe": q.Timeframe,
		"agentIds":  q.AgentIDs,
		"v":         q.version(),
		"interval":  nullable(q.Interval),
	}
	return o.call(ctx, http.MethodPost, o.accountPath("/operations/api/account/%s/agentactivity"), nil, body)
}

// CurrentQueueState returns the current queue size and available slots per skill.
// Timeframe is not used.
func (o *OperationalRealtime) CurrentQueueState(ctx context.Context, q OperationsQuery) (any, error) {
	return o.call(ctx, http.MethodGet, o.accountPath("/operations/api/account/%s/queuestate"),
		q.values("skillIds"), nil)
}

// SLAHistogram returns the distribution of consumer wait time before the
// first agent reply. Histogram bucket bounds are seconds in multiples of 5.
func (o *OperationalRealtime) SLAHistogram(ctx context.Context, q OperationsQuery) (any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return o.call(ctx, http.MethodGet, o.accountPath("/operations/api/account/%s/sla"),
		q.values("timeframe", "skillIds", "groupIds", "histogram"), nil)
}
