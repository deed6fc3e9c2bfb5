package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/biolinks/biolinks/pkg/fetchers"
	biolinks_http "github.com/biolinks/biolinks/pkg/http"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	GraphQLFetcherName string = "graphql"
	DefaultEndpoint    string = "https://app.birdweather.com/graphql"
	DefaultTimeout            = 30 * time.Second
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type response struct {
	Data   interface{} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// GraphQLFetcher posts {query, variables} to a fixed endpoint and returns the
// "data" portion of the response.
type GraphQLFetcher struct {
	endpoint string
	client   *retryablehttp.Client
	cache    *fetchers.ResponseCache
}

func NewGraphQLFetcher() *GraphQLFetcher {
	return &GraphQLFetcher{
		endpoint: DefaultEndpoint,
	}
}

func (f *GraphQLFetcher) Init(params map[string]string) error {
	if endpoint, ok := params["endpoint"]; ok && endpoint != "" {
		f.endpoint = endpoint
	}

	timeout, err := fetchers.DurationParam(params, fetchers.TimeoutParam, DefaultTimeout)
	if err != nil {
		return err
	}

	retryMax, err := fetchers.IntParam(params, fetchers.RetryMaxParam, biolinks_http.DefaultRetryMax)
	if err != nil {
		return err
	}

	ttl, err := fetchers.DurationParam(params, fetchers.CacheTTLParam, fetchers.ProductionCacheTTL)
	if err != nil {
		return err
	}

	f.client = biolinks_http.NewRetryableClient(timeout, retryMax)
	f.cache = fetchers.NewResponseCache(ttl)

	return nil
}

func (f *GraphQLFetcher) Kind() fetchers.Kind {
	return fetchers.StructuredKind
}

func (f *GraphQLFetcher) Fetch(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error) {
	if f.client == nil {
		return nil, fetchers.ErrNotInitialized
	}

	if variables == nil {
		variables = make(map[string]interface{})
	}

	cacheKey := f.cache.Key(GraphQLFetcherName, query, variables)
	if data, ok := f.cache.Get(cacheKey); ok {
		return data, nil
	}

	body, err := json.Marshal(&request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	req, err := biolinks_http.NewRequest(ctx, nethttp.MethodPost, f.endpoint, body, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GraphQL API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zaplog.Sugar().Debugf("GraphQL query failed with %s", resp.Status)
		return nil, fetchers.NewUpstreamError("GraphQL", resp.StatusCode, resp.Status)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode GraphQL response: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, errors.New(result.Errors[0].Message)
	}

	f.cache.Set(cacheKey, result.Data)

	return result.Data, nil
}
