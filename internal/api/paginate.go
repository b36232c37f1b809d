package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/errs"
)

const (
	// PageLimit is the fixed page size of offset-paginated searches.
	PageLimit = 100
	// DefaultMaxConcurrency bounds parallel page requests; higher values
	// trip upstream rate limiting.
	DefaultMaxConcurrency = 5
)

// Page is one decoded page of a paginated search.
type Page struct {
	Count   int
	Records []map[string]any
}

// PageFunc fetches the page starting at offset.
type PageFunc func(ctx context.Context, offset int) (Page, error)

// FanOutOptions controls FetchAll.
type FanOutOptions struct {
	MaxConcurrency int
	Sort           string
	// OnPage is called after each page completes, from the fetching goroutine.
	OnPage func(done, total int)
}

// FetchAll retrieves every page of a paginated search. The first page is
// fetched synchronously to learn the record count and is reused; the
// remaining pages are fetched concurrently. A page that fails with an
// expired session is retried once after a shared re-login. If any page
// still fails, no records are returned.
//
// Records are merged in ascending offset order.
func FetchAll(ctx context.Context, session *auth.Session, fetch PageFunc, opts FanOutOptions) ([]map[string]any, error) {
	logger := session.Client().Logger().Named("fanout")

	first, err := fetchPage(ctx, session, fetch, 0)
	if err != nil {
		return nil, &errs.PaginationError{Failed: []int{0}, Err: err}
	}
	if first.Count == 0 {
		return []map[string]any{}, nil
	}

	offsets := pageOffsets(first.Count)
	pages := make([][]map[string]any, len(offsets))
	pages[0] = first.Records

	var (
		mu     sync.Mutex
		done   = 1
		failed []int
	)
	progress := func() {
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		if opts.OnPage != nil {
			opts.OnPage(n, len(offsets))
		}
	}
	if opts.OnPage != nil {
		opts.OnPage(1, len(offsets))
	}

	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	logger.Debug("fan-out",
		zap.Int("count", first.Count),
		zap.Int("pages", len(offsets)),
		zap.Int("max_concurrency", maxConcurrency),
	)

	p := pool.New().WithErrors().WithMaxGoroutines(maxConcurrency)
	for i := 1; i < len(offsets); i++ {
		offset := offsets[i]
		p.Go(func() error {
			page, err := fetchPage(ctx, session, fetch, offset)
			if err != nil {
				mu.Lock()
				failed = append(failed, offset)
				mu.Unlock()
				logger.Debug("page failed", zap.Int("offset", offset), zap.Error(err))
				return fmt.Errorf("offset %d: %w", offset, err)
			}
			pages[i] = page.Records
			logger.Debug("page done", zap.Int("offset", offset), zap.Int("records", len(page.Records)))
			progress()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		sort.Ints(failed)
		return nil, &errs.PaginationError{Count: first.Count, Failed: failed, Err: err}
	}

	merged := make([]map[string]any, 0, first.Count)
	for _, records := range pages {
		merged = append(merged, records...)
	}
	return merged, nil
}

// fetchPage fetches one page, re-logging in and retrying once when the
// session has expired.
func fetchPage(ctx context.Context, session *auth.Session, fetch PageFunc, offset int) (Page, error) {
	seen := session.Generation()
	page, err := fetch(ctx, offset)
	if err == nil || !errs.IsAuthExpired(err) || !session.CanRelogin() {
		return page, err
	}
	if err := session.Relogin(ctx, seen); err != nil {
		return Page{}, err
	}
	return fetch(ctx, offset)
}

func pageOffsets(count int) []int {
	offsets := make([]int, 0, (count+PageLimit-1)/PageLimit)
	for offset := 0; offset < count; offset += PageLimit {
		offsets = append(offsets, offset)
	}
	return offsets
}

type metadata struct {
	Count int `json:"count"`
}

// decodePage extracts _metadata.count and the records under key from a
// search response envelope.
func decodePage(envelope map[string]json.RawMessage, key string) (Page, error) {
	m, ok := envelope["_metadata"]
	if !ok {
		return Page{}, fmt.Errorf("response has no _metadata")
	}
	var md metadata
	if err := json.Unmarshal(m, &md); err != nil {
		return Page{}, fmt.Errorf("decoding _metadata: %w", err)
	}

	page := Page{Count: md.Count}
	if r, ok := envelope[key]; ok && string(r) != "null" {
		dec := json.NewDecoder(bytes.NewReader(r))
		dec.UseNumber()
		if err := dec.Decode(&page.Records); err != nil {
			return Page{}, fmt.Errorf("decoding %s: %w", key, err)
		}
	}
	return page, nil
}
