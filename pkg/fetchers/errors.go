package fetchers

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Fetch on an adapter whose Init was never called.
var ErrNotInitialized = errors.New("fetcher is not initialized")

type UnknownFetcherError struct {
	Type string
}

func (e *UnknownFetcherError) Error() string {
	return fmt.Sprintf("no fetcher found for type: %s", e.Type)
}

func NewUnknownFetcherError(fetcherType string) *UnknownFetcherError {
	return &UnknownFetcherError{
		Type: fetcherType,
	}
}

// UpstreamError is returned when an external API answers with a non-success status.
type UpstreamError struct {
	Source     string
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Source, e.Status)
}

func NewUpstreamError(source string, statusCode int, status string) *UpstreamError {
	if status == "" {
		status = fmt.Sprintf("%d", statusCode)
	}
	return &UpstreamError{
		Source:     source,
		StatusCode: statusCode,
		Status:     status,
	}
}
