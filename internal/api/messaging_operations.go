package api

import (
	"context"
	"net/http"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

// MessagingOperations reports closed-conversation metrics at the account,
// skill or agent level.
type MessagingOperations struct {
	service
}

// NewMessagingOperations resolves the data reporting domain and returns a client.
func NewMessagingOperations(ctx context.Context, session *auth.Session) (*MessagingOperations, error) {
	s, err := newService(ctx, session, client.ServiceDataReporting)
	if err != nil {
		return nil, err
	}
	return &MessagingOperations{service: s}, nil
}

// MessagingConversation returns messaging conversation metrics.
func (m *MessagingOperations) MessagingConversation(ctx context.Context, q OperationsQuery) (any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	body := map[string]any{
		"timeframe": q.Timeframe,
		"v":         q.version(),
		"skillIds":  nullable(q.SkillIDs),
		"agentIds":  nullable(q.AgentIDs),
		"interval":  nullable(q.Interval),
	}
	return m.call(ctx, http.MethodPost, m.accountPath("/operations/api/account/%s/msgconversation"), nil, body)
}

// CSATDistribution returns the customer satisfaction score distribution.
func (m *MessagingOperations) CSATDistribution(ctx context.Context, q OperationsQuery) (any, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return m.call(ctx, http.MethodGet, m.accountPath("/operations/api/account/%s/msgcsatdistribution"),
		q.values("timeframe", "skillIds", "agentIds"), nil)
}
