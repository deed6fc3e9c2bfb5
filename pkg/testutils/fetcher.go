package testutils

import (
	"context"
	"sync"

	"github.com/biolinks/biolinks/pkg/fetchers"
)

type FetchCall struct {
	Query     string
	Variables map[string]interface{}
}

// FakeFetcher records calls and answers with Handler. Without a Handler it
// returns the query it was given wrapped in a slice.
type FakeFetcher struct {
	FetcherKind fetchers.Kind
	Handler     func(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error)

	mu    sync.Mutex
	calls []FetchCall
}

func (f *FakeFetcher) Kind() fetchers.Kind {
	return f.FetcherKind
}

func (f *FakeFetcher) Fetch(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FetchCall{Query: query, Variables: variables})
	f.mu.Unlock()

	if f.Handler == nil {
		return []interface{}{query}, nil
	}
	return f.Handler(ctx, query, variables)
}

func (f *FakeFetcher) Calls() []FetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchCall(nil), f.calls...)
}

func (f *FakeFetcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// NewFetcherRegistry registers fetchers by name, given as name/fetcher pairs.
func NewFetcherRegistry(named map[string]fetchers.Fetcher) *fetchers.Registry {
	r := fetchers.NewRegistry()
	for name, f := range named {
		r.Register(name, f)
	}
	return r
}
