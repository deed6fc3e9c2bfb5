package activation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	biolinks_http "github.com/biolinks/biolinks/pkg/http"
	"github.com/biolinks/biolinks/pkg/orchestrator"
	"github.com/hashicorp/go-retryablehttp"
)

// DataClient fetches a batch of layers from the data endpoint.
type DataClient interface {
	FetchLayers(ctx context.Context, ids []string) (*orchestrator.Response, error)
}

type HTTPDataClient struct {
	baseUrl string
	token   string
	client  *retryablehttp.Client
}

// NewHTTPDataClient talks to the server at baseUrl, authenticating with token.
func NewHTTPDataClient(baseUrl string, token string, timeout time.Duration) *HTTPDataClient {
	return &HTTPDataClient{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		token:   token,
		client:  biolinks_http.NewRetryableClient(timeout, biolinks_http.DefaultRetryMax),
	}
}

func (c *HTTPDataClient) FetchLayers(ctx context.Context, ids []string) (*orchestrator.Response, error) {
	query := url.Values{biolinks_http.LayersQueryParam: ids}
	dataUrl := fmt.Sprintf("%s/api/data?%s", c.baseUrl, query.Encode())

	req, err := biolinks_http.NewRequest(ctx, http.MethodGet, dataUrl, nil, "application/json")
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, orchestrator.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("data endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	response := orchestrator.NewResponse()
	if err := json.Unmarshal(body, response); err != nil {
		return nil, fmt.Errorf("invalid data response: %w", err)
	}

	return response, nil
}
