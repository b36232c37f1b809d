package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

const defaultConfigVersion = "2.0"

// ContentQuery filters predefined content items.
type ContentQuery struct {
	Version        string
	IncludeDeleted *bool
	SanitizeData   *bool
	Lang           string // comma separated, e.g. "en-US,en-UK"
	Select         string
	GroupBy        string // e.g. "CATEGORIES"
	SkillIDs       string
	IDs            string
}

func (q ContentQuery) values() url.Values {
	params := url.Values{}
	setString(params, "v", q.Version)
	setBool(params, "include_deleted", q.IncludeDeleted)
	setBool(params, "sanitize_data", q.SanitizeData)
	setString(params, "lang", q.Lang)
	setString(params, "select", q.Select)
	setString(params, "group_by", q.GroupBy)
	setString(params, "skill_ids", q.SkillIDs)
	setString(params, "ids", q.IDs)
	return params
}

// CategoryQuery filters predefined categories.
type CategoryQuery struct {
	Version        string
	Select         string
	IncludeDeleted *bool
}

// PredefinedContent reads canned responses from the account configuration.
type PredefinedContent struct {
	service
}

// NewPredefinedContent resolves the account configuration domain and returns a client.
func NewPredefinedContent(ctx context.Context, session *auth.Session) (*PredefinedContent, error) {
	s, err := newService(ctx, session, client.ServiceAccountConfig)
	if err != nil {
		return nil, err
	}
	return &PredefinedContent{service: s}, nil
}

// Items lists predefined content items.
func (p *PredefinedContent) Items(ctx context.Context, q ContentQuery) (any, error) {
	return p.call(ctx, http.MethodGet,
		p.accountPath("/api/account/%s/configuration/engagement-window/canned-responses"), q.values(), nil)
}

// ItemByID returns one predefined content item.
func (p *PredefinedContent) ItemByID(ctx context.Context, id string, q ContentQuery) (any, error) {
	if q.Version == "" {
		q.Version = defaultConfigVersion
	}
	return p.call(ctx, http.MethodGet,
		p.accountPath("/api/account/%s/configuration/engagement-window/canned-responses/%s", url.PathEscape(id)),
		q.values(), nil)
}

// DefaultItems lists the platform default content templates.
func (p *PredefinedContent) DefaultItems(ctx context.Context) (any, error) {
	return p.call(ctx, http.MethodGet,
		p.accountPath("/api/account/%s/configuration/defaults/engagement-window/canned-responses"), nil, nil)
}

// DefaultItemByID returns one default content template.
func (p *PredefinedContent) DefaultItemByID(ctx context.Context, templateID string) (any, error) {
	return p.call(ctx, http.MethodGet,
		p.accountPath("/api/account/%s/configuration/defaults/engagement-window/canned-responses/%s", url.PathEscape(templateID)),
		nil, nil)
}

// PredefinedCategories reads the categories predefined content is filed under.
type PredefinedCategories struct {
	service
}

// NewPredefinedCategories resolves the account configuration domain and returns a client.
func NewPredefinedCategories(ctx context.Context, session *auth.Session) (*PredefinedCategories, error) {
	s, err := newService(ctx, session, client.ServiceAccountConfig)
	if err != nil {
		return nil, err
	}
	return &PredefinedCategories{service: s}, nil
}

// List returns the categories of the account.
func (p *PredefinedCategories) List(ctx context.Context, q CategoryQuery) (any, error) {
	version := q.Version
	if version == "" {
		version = defaultConfigVersion
	}
	params := url.Values{}
	params.Set("v", version)
	setString(params, "select", q.Select)
	setBool(params, "include_deleted", q.IncludeDeleted)
	return p.call(ctx, http.MethodGet,
		p.accountPath("/api/account/%s/configuration/le-categories/categories"), params, nil)
}
