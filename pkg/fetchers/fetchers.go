package fetchers

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Kind tells the orchestrator how a fetcher consumes template variables.
type Kind int

const (
	// QueryStringKind fetchers take plain query text; variables are substituted
	// into `{{var}}` tokens before the call.
	QueryStringKind Kind = iota
	// StructuredKind fetchers receive the variables alongside the query.
	StructuredKind
)

func (k Kind) String() string {
	switch k {
	case QueryStringKind:
		return "query-string"
	case StructuredKind:
		return "structured"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Fetcher interface {
	Kind() Kind
	Fetch(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error)
}

// Registry maps data source types to fetchers. Fetchers may be registered at any
// time; asking for an unregistered type is an error at fetch time only.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[string]Fetcher),
	}
}

func (r *Registry) Register(name string, fetcher Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetchers[name] = fetcher
}

func (r *Registry) Get(name string) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fetcher, ok := r.fetchers[name]
	if !ok || fetcher == nil {
		return nil, NewUnknownFetcherError(name)
	}

	return fetcher, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
