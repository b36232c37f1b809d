// Package api implements one client per engagement API family. Each client
// resolves its service domain when it is constructed and returns decoded
// response bodies unmodified.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
)

// service is the shared base of every endpoint client.
type service struct {
	session *auth.Session
	name    string
	domain  string
}

func newService(ctx context.Context, session *auth.Session, name string) (service, error) {
	domain, err := session.Resolver().Resolve(ctx, name)
	if err != nil {
		return service{}, err
	}
	return service{session: session, name: name, domain: domain}, nil
}

// Domain returns the resolved service domain.
func (s service) Domain() string {
	return s.domain
}

// accountPath formats an account-scoped path. format must contain one %s
// for the account id, followed by any extra args.
func (s service) accountPath(format string, args ...any) string {
	all := append([]any{url.PathEscape(s.session.AccountID())}, args...)
	return fmt.Sprintf(format, all...)
}

func (s service) call(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	var out any
	if err := s.callInto(ctx, method, path, query, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s service) callInto(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return s.session.Client().Do(ctx, client.Request{
		Method: method,
		URL:    "https://" + s.domain + path,
		Query:  query,
		Body:   body,
	}, s.session, out)
}

// search returns a PageFunc over an offset-paginated POST search whose
// records live under key.
func (s service) search(path string, body any, sort, key string) PageFunc {
	return func(ctx context.Context, offset int) (Page, error) {
		var envelope map[string]json.RawMessage
		query := PageParams{Offset: offset, Limit: PageLimit, Sort: sort}.values()
		if err := s.callInto(ctx, http.MethodPost, path, query, body, &envelope); err != nil {
			return Page{}, err
		}
		return decodePage(envelope, key)
	}
}

// PageParams selects one page of a search.
type PageParams struct {
	Offset int
	Limit  int
	Sort   string
}

func (p PageParams) values() url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = PageLimit
	}
	params := url.Values{}
	params.Set("offset", strconv.Itoa(p.Offset))
	params.Set("limit", strconv.Itoa(limit))
	setString(params, "sort", p.Sort)
	return params
}

func setString(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setInt(params url.Values, key string, value int) {
	if value != 0 {
		params.Set(key, strconv.Itoa(value))
	}
}

func setBool(params url.Values, key string, value *bool) {
	if value != nil {
		params.Set(key, strconv.FormatBool(*value))
	}
}

// nullable maps zero values to nil so they encode as JSON null.
func nullable[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}
