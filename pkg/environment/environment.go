package environment

import (
	"errors"
	"fmt"
	"io"

	"github.com/biolinks/biolinks/pkg/catalog"
	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/fetchers/file"
	"github.com/biolinks/biolinks/pkg/fetchers/fulcrum"
	"github.com/biolinks/biolinks/pkg/fetchers/graphql"
	"github.com/biolinks/biolinks/pkg/fetchers/sqlite"
	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/biolinks/biolinks/pkg/manifest"
	"github.com/biolinks/biolinks/pkg/metrics"
	"github.com/biolinks/biolinks/pkg/orchestrator"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

type initializer interface {
	fetchers.Fetcher
	Init(params map[string]string) error
}

// Environment is everything the server and CLI need, built from configuration.
type Environment struct {
	Config       *config.BiolinksConfiguration
	Fetchers     *fetchers.Registry
	Layers       *layers.Registry
	Orchestrator *orchestrator.Orchestrator
	Metrics      *metrics.Recorder
	closers      []io.Closer
}

func NewFetcher(name string, params map[string]string) (fetchers.Fetcher, error) {
	var f initializer
	switch name {
	case fulcrum.FulcrumFetcherName:
		f = fulcrum.NewFulcrumFetcher()
	case graphql.GraphQLFetcherName:
		f = graphql.NewGraphQLFetcher()
	case file.FileFetcherName:
		f = file.NewFileFetcher()
	case sqlite.SQLiteFetcherName:
		f = sqlite.NewSQLiteFetcher()
	default:
		return nil, fmt.Errorf("unknown fetcher '%s'", name)
	}

	if err := f.Init(params); err != nil {
		return nil, fmt.Errorf("failed to initialize fetcher '%s': %w", name, err)
	}

	return f, nil
}

// NewEnvironment registers every adapter the configuration enables and builds
// the layer registry from the catalog plus configured layers. The sqlite adapter
// is only registered when a dsn is configured; layers using it fail at fetch
// time otherwise.
func NewEnvironment(cfg *config.BiolinksConfiguration) (*Environment, error) {
	return NewEnvironmentWithMetrics(cfg, metrics.NewRecorder())
}

// NewEnvironmentWithMetrics is NewEnvironment recording into an existing
// recorder, so a reloaded environment keeps the counters of the one it replaces.
func NewEnvironmentWithMetrics(cfg *config.BiolinksConfiguration, recorder *metrics.Recorder) (*Environment, error) {
	env := &Environment{
		Config:   cfg,
		Fetchers: fetchers.NewRegistry(),
		Metrics:  recorder,
	}

	names := []string{fulcrum.FulcrumFetcherName, graphql.GraphQLFetcherName, file.FileFetcherName}
	if cfg.Fetchers.SQLite["dsn"] != "" {
		names = append(names, sqlite.SQLiteFetcherName)
	}

	for _, name := range names {
		f, err := NewFetcher(name, cfg.FetcherParams(name))
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		env.Fetchers.Register(name, f)
		if closer, ok := f.(io.Closer); ok {
			env.closers = append(env.closers, closer)
		}
	}

	zaplog.Sugar().Debugf("registered fetchers: %v", env.Fetchers.Names())

	registry, err := NewLayerRegistry(cfg, env.Fetchers)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.Layers = registry

	fetchTimeout, err := cfg.FetchTimeout()
	if err != nil {
		_ = env.Close()
		return nil, err
	}

	env.Orchestrator = orchestrator.NewOrchestrator(
		registry,
		env.Fetchers,
		orchestrator.WithFetchTimeout(fetchTimeout),
		orchestrator.WithMaxConcurrency(cfg.Orchestrator.MaxConcurrency),
		orchestrator.WithMetrics(env.Metrics),
	)

	return env, nil
}

func NewLayerRegistry(cfg *config.BiolinksConfiguration, fetcherRegistry *fetchers.Registry) (*layers.Registry, error) {
	groups := catalog.NewGroupMapping(cfg.Groups)
	c := catalog.NewCatalog(fetcherRegistry, groups)

	pages, err := manifest.Apply(cfg.Layers, c.Pages(), groups, fetcherRegistry)
	if err != nil {
		return nil, fmt.Errorf("invalid layers configuration: %w", err)
	}

	registry, err := layers.NewRegistry(pages...)
	if err != nil {
		return nil, err
	}

	zaplog.Sugar().Debugf("loaded %d layers on %d pages", len(registry.Layers()), len(registry.Pages()))

	return registry, nil
}

func (e *Environment) Close() error {
	var errs []error
	for _, closer := range e.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
