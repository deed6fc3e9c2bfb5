package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/biolinks/biolinks/pkg/metrics"
	"github.com/biolinks/biolinks/pkg/template"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()

	// ErrUnauthorized is returned for a data request without a caller.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrLayerUnauthorized is the per-layer failure for a caller below the
	// layer's required level.
	ErrLayerUnauthorized = errors.New("Unauthorized")
)

const (
	UnknownErrorMessage = "Unknown error"
)

type Orchestrator struct {
	registry       *layers.Registry
	fetchers       *fetchers.Registry
	timeout        time.Duration
	maxConcurrency int
	metrics        *metrics.Recorder
}

type Option func(o *Orchestrator)

// WithFetchTimeout bounds every adapter call. Zero leaves calls bounded only by
// the request context.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = timeout
	}
}

// WithMaxConcurrency limits how many layers are fetched at once. Zero is unbounded.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.maxConcurrency = n
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = recorder
	}
}

func NewOrchestrator(registry *layers.Registry, fetcherRegistry *fetchers.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		fetchers: fetcherRegistry,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Registry() *layers.Registry {
	return o.registry
}

// FetchLayerData runs one layer's pipeline. Failures, including panics in
// builders, adapters and transforms, are returned in the Result.
func (o *Orchestrator) FetchLayerData(ctx context.Context, layer *layers.LayerDefinition, caller *auth.CallerContext) (result Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = Result{ID: layer.ID, Err: fmt.Errorf("panic: %v", r)}
		}
		o.observe(result, time.Since(start))
	}()

	ds := layer.DataSource
	if ds == nil {
		return Result{ID: layer.ID, Data: []interface{}{}}
	}

	if !auth.CheckAuth(ds.RequiresAuth, caller) {
		return Result{ID: layer.ID, Err: ErrLayerUnauthorized}
	}

	data, err := o.fetch(ctx, ds, caller)
	if err != nil {
		return Result{ID: layer.ID, Err: err}
	}

	return Result{ID: layer.ID, Data: data}
}

func (o *Orchestrator) fetch(ctx context.Context, ds *layers.DataSource, caller *auth.CallerContext) (interface{}, error) {
	query := ds.ResolveQuery(caller)

	fetcher, lookupErr := o.fetchers.Get(ds.Type)

	variables := make(map[string]interface{})
	if ds.TemplateVars != nil {
		if vars := ds.TemplateVars(caller); vars != nil {
			variables = vars
		}
		if lookupErr == nil && fetcher.Kind() == fetchers.QueryStringKind {
			query = template.ApplyTemplate(query, template.Stringify(variables))
		}
	}

	if lookupErr != nil {
		return nil, lookupErr
	}

	zaplog.Sugar().Debugf("fetching %s: %s", ds.Type, query)

	fetchCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	raw, err := fetcher.Fetch(fetchCtx, query, variables)
	if err != nil {
		return nil, err
	}

	if ds.Transform == nil {
		return raw, nil
	}

	return ds.Transform(ctx, raw)
}

// Fetch resolves ids and fetches every resolved layer concurrently. One layer
// failing never affects another. Unknown ids are dropped and duplicates are
// fetched once per occurrence.
func (o *Orchestrator) Fetch(ctx context.Context, caller *auth.CallerContext, ids []string) (*Response, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	response := NewResponse()
	if len(ids) == 0 {
		return response, nil
	}

	toFetch := o.registry.GetLayersByIds(ids)
	if len(toFetch) == 0 {
		return response, nil
	}

	results := make([]Result, len(toFetch))

	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}
	for i, layer := range toFetch {
		i, layer := i, layer
		g.Go(func() error {
			results[i] = o.FetchLayerData(ctx, layer, caller)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, result := range results {
		response.add(result)
	}

	return response, nil
}

func (o *Orchestrator) observe(result Result, elapsed time.Duration) {
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(result.Err, ErrLayerUnauthorized):
		outcome = metrics.OutcomeUnauthorized
		zaplog.Sugar().Debugf("layer %s: unauthorized", result.ID)
	case result.Err != nil:
		outcome = metrics.OutcomeError
		zaplog.Sugar().Warnf("error fetching data for layer %s: %s", result.ID, result.Message())
	default:
		zaplog.Sugar().Debugf("fetched layer %s in %s", result.ID, elapsed)
	}
	o.metrics.ObserveLayerFetch(result.ID, outcome, elapsed)
}
