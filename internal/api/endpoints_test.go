package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
	"github.com/engagekit/lp/internal/errs"
	"github.com/engagekit/lp/internal/testutil"
)

func boolPtr(b bool) *bool { return &b }

type clients struct {
	agents     *AgentMetrics
	engagement *EngagementHistory
	messaging  *MessagingInteractions
	operations *MessagingOperations
	realtime   *OperationalRealtime
	content    *PredefinedContent
	categories *PredefinedCategories
	dataAccess *DataAccess
}

func newClients(t *testing.T, session *auth.Session) clients {
	t.Helper()
	ctx := context.Background()
	var c clients
	var err error
	c.agents, err = NewAgentMetrics(ctx, session)
	require.NoError(t, err)
	c.engagement, err = NewEngagementHistory(ctx, session)
	require.NoError(t, err)
	c.messaging, err = NewMessagingInteractions(ctx, session)
	require.NoError(t, err)
	c.operations, err = NewMessagingOperations(ctx, session)
	require.NoError(t, err)
	c.realtime, err = NewOperationalRealtime(ctx, session)
	require.NoError(t, err)
	c.content, err = NewPredefinedContent(ctx, session)
	require.NoError(t, err)
	c.categories, err = NewPredefinedCategories(ctx, session)
	require.NoError(t, err)
	c.dataAccess, err = NewDataAccess(ctx, session)
	require.NoError(t, err)
	return c
}

func TestEndpoints_WireContract(t *testing.T) {
	ctx := context.Background()
	q := OperationsQuery{Timeframe: 60, SkillIDs: "4,15", AgentIDs: "all", GroupIDs: "7", Interval: 30, Histogram: "0,50,100"}

	tests := []struct {
		name   string
		method string
		path   string
		call   func(c clients) (any, error)
		query  url.Values
		body   map[string]any
	}{
		{
			name:   "agent status",
			method: http.MethodPost,
			path:   "/messaging_history/api/account/1234/agent-view/status",
			call: func(c clients) (any, error) {
				return c.agents.AgentStatus(ctx, AgentFilter{Status: []string{"ONLINE"}})
			},
			query: url.Values{},
			body:  map[string]any{"status": []any{"ONLINE"}, "agentIds": nil, "skillIds": nil, "agentGroupIds": nil},
		},
		{
			name:   "agent summary",
			method: http.MethodPost,
			path:   "/messaging_history/api/account/1234/agent-view/summary",
			call: func(c clients) (any, error) {
				return c.agents.Summary(ctx, AgentFilter{SkillIDs: []string{"12"}})
			},
			query: url.Values{},
			body:  map[string]any{"status": nil, "agentIds": nil, "skillIds": []any{"12"}, "agentGroupIds": nil},
		},
		{
			name:   "engagements page",
			method: http.MethodPost,
			path:   "/interaction_history/api/account/1234/interactions/search",
			call: func(c clients) (any, error) {
				return c.engagement.Engagements(ctx, map[string]any{"start": map[string]int64{"from": 1, "to": 2}}, PageParams{Offset: 200})
			},
			query: url.Values{"offset": {"200"}, "limit": {"100"}},
			body:  map[string]any{"start": map[string]any{"from": float64(1), "to": float64(2)}},
		},
		{
			name:   "conversations page",
			method: http.MethodPost,
			path:   "/messaging_history/api/account/1234/conversations/search",
			call: func(c clients) (any, error) {
				return c.messaging.Conversations(ctx, map[string]any{"status": []string{"CLOSE"}}, PageParams{Limit: 50, Sort: "start:asc"})
			},
			query: url.Values{"offset": {"0"}, "limit": {"50"}, "sort": {"start:asc"}},
			body:  map[string]any{"status": []any{"CLOSE"}},
		},
		{
			name:   "conversation by id",
			method: http.MethodPost,
			path:   "/messaging_history/api/account/1234/conversations/conversation/search",
			call:   func(c clients) (any, error) { return c.messaging.ConversationByID(ctx, "abc-123") },
			query:  url.Values{},
			body:   map[string]any{"conversationId": "abc-123"},
		},
		{
			name:   "conversations by consumer",
			method: http.MethodPost,
			path:   "/messaging_history/api/account/1234/conversations/consumer/search",
			call:   func(c clients) (any, error) { return c.messaging.ConversationsByConsumerID(ctx, "consumer-9", nil) },
			query:  url.Values{},
			body:   map[string]any{"consumer": "consumer-9", "status": nil},
		},
		{
			name:   "messaging conversation",
			method: http.MethodPost,
			path:   "/operations/api/account/1234/msgconversation",
			call:   func(c clients) (any, error) { return c.operations.MessagingConversation(ctx, OperationsQuery{Timeframe: 1440}) },
			query:  url.Values{},
			body:   map[string]any{"timeframe": float64(1440), "v": float64(1), "skillIds": nil, "agentIds": nil, "interval": nil},
		},
		{
			name:   "csat distribution",
			method: http.MethodGet,
			path:   "/operations/api/account/1234/msgcsatdistribution",
			call:   func(c clients) (any, error) { return c.operations.CSATDistribution(ctx, q) },
			query:  url.Values{"timeframe": {"60"}, "v": {"1"}, "skillIds": {"4,15"}, "agentIds": {"all"}},
		},
		{
			name:   "queue health",
			method: http.MethodGet,
			path:   "/operations/api/account/1234/queuehealth",
			call:   func(c clients) (any, error) { return c.realtime.QueueHealth(ctx, q) },
			query:  url.Values{"timeframe": {"60"}, "v": {"1"}, "skillIds": {"4,15"}, "interval": {"30"}},
		},
		{
			name:   "engagement activity",
			method: http.MethodGet,
			path:   "/operations/api/account/1234/engactivity",
			call:   func(c clients) (any, error) { return c.realtime.EngagementActivity(ctx, q) },
			query:  url.Values{"timeframe": {"60"}, "v": {"1"}, "skillIds": {"4,15"}, "agentIds": {"all"}, "interval": {"30"}},
		},
		{
			name:   "agent activity",
			method: http.MethodPost,
			path:   "/operations/api/account/1234/agentactivity",
			call:   func(c clients) (any, error) { return c.realtime.AgentActivity(ctx, q) },
			query:  url.Values{},
			body:   map[string]any{"timeframe": float64(60), "agentIds": "all", "v": float64(1), "interval": float64(30)},
		},
		{
			name:   "current queue state",
			method: http.MethodGet,
			path:   "/operations/api/account/1234/queuestate",
			call:   func(c clients) (any, error) { return c.realtime.CurrentQueueState(ctx, OperationsQuery{Version: 2}) },
			query:  url.Values{"v": {"2"}},
		},
		{
			name:   "sla histogram",
			method: http.MethodGet,
			path:   "/operations/api/account/1234/sla",
			call:   func(c clients) (any, error) { return c.realtime.SLAHistogram(ctx, q) },
			query:  url.Values{"timeframe": {"60"}, "v": {"1"}, "skillIds": {"4,15"}, "groupIds": {"7"}, "histogram": {"0,50,100"}},
		},
		{
			name:   "content items",
			method: http.MethodGet,
			path:   "/api/account/1234/configuration/engagement-window/canned-responses",
			call: func(c clients) (any, error) {
				return c.content.Items(ctx, ContentQuery{IncludeDeleted: boolPtr(true), Lang: "en-US", GroupBy: "CATEGORIES"})
			},
			query: url.Values{"include_deleted": {"true"}, "lang": {"en-US"}, "group_by": {"CATEGORIES"}},
		},
		{
			name:   "content item by id",
			method: http.MethodGet,
			path:   "/api/account/1234/configuration/engagement-window/canned-responses/42",
			call:   func(c clients) (any, error) { return c.content.ItemByID(ctx, "42", ContentQuery{}) },
			query:  url.Values{"v": {"2.0"}},
		},
		{
			name:   "default items",
			method: http.MethodGet,
			path:   "/api/account/1234/configuration/defaults/engagement-window/canned-responses",
			call:   func(c clients) (any, error) { return c.content.DefaultItems(ctx) },
			query:  url.Values{},
		},
		{
			name:   "default item by id",
			method: http.MethodGet,
			path:   "/api/account/1234/configuration/defaults/engagement-window/canned-responses/tpl-1",
			call:   func(c clients) (any, error) { return c.content.DefaultItemByID(ctx, "tpl-1") },
			query:  url.Values{},
		},
		{
			name:   "categories",
			method: http.MethodGet,
			path:   "/api/account/1234/configuration/le-categories/categories",
			call: func(c clients) (any, error) {
				return c.categories.List(ctx, CategoryQuery{Select: "id,name", IncludeDeleted: boolPtr(false)})
			},
			query: url.Values{"v": {"2.0"}, "select": {"id,name"}, "include_deleted": {"false"}},
		},
		{
			name:   "data access agent activity",
			method: http.MethodGet,
			path:   "/data_access_le/account/1234/le/agentActivity",
			call:   func(c clients) (any, error) { return c.dataAccess.AgentActivity(ctx, 1000, 2000) },
			query:  url.Values{"startTime": {"1000"}, "endTime": {"2000"}},
		},
		{
			name:   "data access web session",
			method: http.MethodGet,
			path:   "/data_access_le/account/1234/le/webSession",
			call:   func(c clients) (any, error) { return c.dataAccess.WebSession(ctx, 1000, 2000) },
			query:  url.Values{"startTime": {"1000"}, "endTime": {"2000"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewServer(t)
			srv.HandleJSON(tt.method, tt.path, map[string]any{"ok": true})
			c := newClients(t, openSession(t, srv))

			out, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"ok": true}, out)

			calls := srv.Calls()
			require.Len(t, calls, 1)
			call := calls[0]
			assert.Equal(t, tt.method, call.Method)
			assert.Equal(t, tt.path, call.Path)
			assert.Equal(t, "Bearer "+srv.Bearer(), call.Auth)

			query, err := url.ParseQuery(call.Query)
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			if tt.body != nil {
				assert.Equal(t, tt.body, call.Body)
			} else {
				assert.Nil(t, call.Body)
			}
		})
	}
}

func TestEndpoints_ErrorStatusSurfaces(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Handle(http.MethodPost, "/messaging_history/api/account/1234/agent-view/summary", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "missing permission"})
	})
	agents, err := NewAgentMetrics(context.Background(), openSession(t, srv))
	require.NoError(t, err)

	_, err = agents.Summary(context.Background(), AgentFilter{})

	var ee *errs.EndpointError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, http.StatusForbidden, ee.StatusCode)
	assert.Contains(t, ee.Body, "missing permission")
}

func TestEndpoints_ValidateBeforeRequest(t *testing.T) {
	srv := testutil.NewServer(t)
	realtime, err := NewOperationalRealtime(context.Background(), openSession(t, srv))
	require.NoError(t, err)

	for name, q := range map[string]OperationsQuery{
		"zero timeframe":      {},
		"timeframe too long":  {Timeframe: 1441},
		"interval too long":   {Timeframe: 60, Interval: 61},
		"interval not divide": {Timeframe: 60, Interval: 31},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := realtime.QueueHealth(context.Background(), q)
			assert.Error(t, err)
		})
	}

	_, err = realtime.AgentActivity(context.Background(), OperationsQuery{Timeframe: 60})
	assert.ErrorContains(t, err, "agent ids")
	assert.Empty(t, srv.Calls())
}

func TestNewClient_FailsFastOnResolution(t *testing.T) {
	srv := testutil.NewServer(t)
	c := srv.Client(t)
	resolver := client.NewResolver(c, testutil.AccountID, client.WithDiscoveryURL(srv.URL+"/nowhere"))
	session, err := auth.NewSession(c, resolver, auth.OAuthCredential{
		Account:           testutil.AccountID,
		ConsumerKey:       "k",
		ConsumerSecret:    "s",
		AccessToken:       "t",
		AccessTokenSecret: "ts",
	})
	require.NoError(t, err)

	_, err = NewMessagingOperations(context.Background(), session)
	var sre *errs.ServiceResolutionError
	require.ErrorAs(t, err, &sre)
	assert.Equal(t, client.ServiceDataReporting, sre.Service)
	assert.Equal(t, http.StatusNotFound, sre.StatusCode)
}

func TestDataAccess_UsesPinnedDomain(t *testing.T) {
	srv := testutil.NewServer(t)
	c := srv.Client(t)
	resolver := client.NewResolver(c, testutil.AccountID, client.WithDiscoveryURL(srv.URL))
	session, err := auth.NewSession(c, resolver, auth.OAuthCredential{
		Account:           testutil.AccountID,
		ConsumerKey:       "k",
		ConsumerSecret:    "s",
		AccessToken:       "t",
		AccessTokenSecret: "ts",
	})
	require.NoError(t, err)

	da, err := NewDataAccess(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, client.DefaultDataAccessDomain, da.Domain())
	assert.Equal(t, 0, srv.Discoveries())
}
