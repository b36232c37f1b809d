package api

import (
	"context"
	"net/http"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

const conversationRecordsKey = "conversationHistoryRecords"

// MessagingInteractions searches messaging conversations.
type MessagingInteractions struct {
	service
}

// NewMessagingInteractions resolves the messaging history domain and returns a client.
func NewMessagingInteractions(ctx context.Context, session *auth.Session) (*MessagingInteractions, error) {
	s, err := newService(ctx, session, client.ServiceMessagingHistory)
	if err != nil {
		return nil, err
	}
	return &MessagingInteractions{service: s}, nil
}

func (m *MessagingInteractions) searchPath() string {
	return m.accountPath("/messaging_history/api/account/%s/conversations/search")
}

// Conversations returns one page of conversations matching body.
func (m *MessagingInteractions) Conversations(ctx context.Context, body any, page PageParams) (any, error) {
	return m.call(ctx, http.MethodPost, m.searchPath(), page.values(), body)
}

// AllConversations returns every conversation matching body.
func (m *MessagingInteractions) AllConversations(ctx context.Context, body any, opts FanOutOptions) ([]map[string]any, error) {
	return FetchAll(ctx, m.session, m.search(m.searchPath(), body, opts.Sort, conversationRecordsKey), opts)
}

// ConversationByID returns a single conversation.
func (m *MessagingInteractions) ConversationByID(ctx context.Context, conversationID string) (any, error) {
	return m.call(ctx, http.MethodPost,
		m.accountPath("/messaging_history/api/account/%s/conversations/conversation/search"),
		nil, map[string]string{"conversationId": conversationID})
}

// ConversationsByConsumerID returns the conversations of one consumer,
// optionally limited to the given statuses (OPEN, CLOSE).
func (m *MessagingInteractions) ConversationsByConsumerID(ctx context.Context, consumerID string, status []string) (any, error) {
	return m.call(ctx, http.MethodPost,
		m.accountPath("/messaging_history/api/account/%s/conversations/consumer/search"),
		nil, map[string]any{"consumer": consumerID, "status": status})
}
