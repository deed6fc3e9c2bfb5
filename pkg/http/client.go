package http

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"github.com/biolinks/biolinks/pkg/version"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 250 * time.Millisecond
	DefaultRetryWaitMax = 2 * time.Second
)

var _userAgent string

// NewRetryableClient returns the client used for every outbound call. Each attempt is
// bounded by timeout; connection errors and 5xx responses are retried up to retryMax
// times. Once retries run out the last response is passed through so callers can
// report the upstream status.
func NewRetryableClient(timeout time.Duration, retryMax int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = retryMax
	client.RetryWaitMin = DefaultRetryWaitMin
	client.RetryWaitMax = DefaultRetryWaitMax
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return client
}

func NewRequest(ctx context.Context, method string, url string, body interface{}, accept string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	req.Header.Set("User-Agent", UserAgent())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	return req, nil
}

func UserAgent() string {
	if _userAgent == "" {
		_userAgent = fmt.Sprintf("Biolinks/%s %s/%s (%s)", version.Version(), version.Component(), version.Version(), runtime.GOOS)
	}
	return _userAgent
}
