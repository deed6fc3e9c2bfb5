package fulcrum

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/url"
	"os"
	"time"

	"github.com/biolinks/biolinks/pkg/fetchers"
	biolinks_http "github.com/biolinks/biolinks/pkg/http"
	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	FulcrumFetcherName string = "fulcrum"
	DefaultBaseUrl     string = "https://api.fulcrumapp.com/api/v2/query"
	DefaultTimeout            = 30 * time.Second

	queryOptions = "format=json&headers=true&metadata=false&arrays=false&page=1&per_page=20000"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// FulcrumFetcher runs query text against the Fulcrum query API and returns the
// "rows" portion of the response.
type FulcrumFetcher struct {
	baseUrl string
	token   string
	client  *retryablehttp.Client
	cache   *fetchers.ResponseCache
}

func NewFulcrumFetcher() *FulcrumFetcher {
	return &FulcrumFetcher{
		baseUrl: DefaultBaseUrl,
	}
}

func (f *FulcrumFetcher) Init(params map[string]string) error {
	if baseUrl, ok := params["base_url"]; ok && baseUrl != "" {
		f.baseUrl = baseUrl
	}

	f.token = params["token"]
	if f.token == "" {
		f.token = os.Getenv("FULCRUM_API_KEY")
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

func (f *FulcrumFetcher) Kind() fetchers.Kind {
	return fetchers.QueryStringKind
}

func (f *FulcrumFetcher) Fetch(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error) {
	if f.client == nil {
		return nil, fetchers.ErrNotInitialized
	}

	cacheKey := f.cache.Key(FulcrumFetcherName, query, nil)
	if rows, ok := f.cache.Get(cacheKey); ok {
		return rows, nil
	}

	requestUrl := fmt.Sprintf("%s?q=%s&%s", f.baseUrl, url.QueryEscape(query), queryOptions)

	req, err := biolinks_http.NewRequest(ctx, nethttp.MethodGet, requestUrl, nil, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to create Fulcrum request: %w", err)
	}
	req.Header.Set("X-ApiToken", f.token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Fulcrum API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zaplog.Sugar().Debugf("Fulcrum query failed with %s", resp.Status)
		return nil, fetchers.NewUpstreamError("Fulcrum", resp.StatusCode, resp.Status)
	}

	var body struct {
		Rows []interface{} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode Fulcrum response: %w", err)
	}

	rows := body.Rows
	if rows == nil {
		rows = make([]interface{}, 0)
	}

	f.cache.Set(cacheKey, rows)

	return rows, nil
}
