package api

import (
	"context"
	"net/http"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

// AgentFilter narrows agent metrics. Empty lists are sent as null, which the
// service reads as "all".
type AgentFilter struct {
	Status        []string `json:"status"`
	AgentIDs      []string `json:"agentIds"`
	SkillIDs      []string `json:"skillIds"`
	AgentGroupIDs []string `json:"agentGroupIds"`
}

// AgentMetrics reports the current state of messaging agents.
type AgentMetrics struct {
	service
}

// NewAgentMetrics resolves the messaging history domain and returns a client.
func NewAgentMetrics(ctx context.Context, session *auth.Session) (*AgentMetrics, error) {
	s, err := newService(ctx, session, client.ServiceMessagingHistory)
	if err != nil {
		return nil, err
	}
	return &AgentMetrics{service: s}, nil
}

// AgentStatus returns logged-in agents with their status, load and skills.
func (a *AgentMetrics) AgentStatus(ctx context.Context, filter AgentFilter) (any, error) {
	return a.call(ctx, http.MethodPost, a.accountPath("/messaging_history/api/account/%s/agent-view/status"), nil, filter)
}

// Summary returns agent counts per status and the weighted average load.
func (a *AgentMetrics) Summary(ctx context.Context, filter AgentFilter) (any, error) {
	return a.call(ctx, http.MethodPost, a.accountPath("/messaging_history/api/account/%s/agent-view/summary"), nil, filter)
}
