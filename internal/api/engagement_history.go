package api

import (
	"context"
	"net/http"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

const engagementRecordsKey = "interactionHistoryRecords"

// EngagementHistory searches chat engagement transcripts.
type EngagementHistory struct {
	service
}

// NewEngagementHistory resolves the engagement history domain and returns a client.
func NewEngagementHistory(ctx context.Context, session *auth.Session) (*EngagementHistory, error) {
	s, err := newService(ctx, session, client.ServiceEngagementHistory)
	if err != nil {
		return nil, err
	}
	return &EngagementHistory{service: s}, nil
}

func (e *EngagementHistory) searchPath() string {
	return e.accountPath("/interaction_history/api/account/%s/interactions/search")
}

// Engagements returns one page of engagements matching body, for example
// {"start": {"from": 1491004800000, "to": 1491091199000}}.
func (e *EngagementHistory) Engagements(ctx context.Context, body any, page PageParams) (any, error) {
	return e.call(ctx, http.MethodPost, e.searchPath(), page.values(), body)
}

// AllEngagements returns every engagement matching body.
func (e *EngagementHistory) AllEngagements(ctx context.Context, body any, opts FanOutOptions) ([]map[string]any, error) {
	return FetchAll(ctx, e.session, e.search(e.searchPath(), body, opts.Sort, engagementRecordsKey), opts)
}
