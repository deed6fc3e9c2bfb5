package fetchers

import (
	"fmt"
	"strconv"
	"time"
)

const (
	TimeoutParam  = "timeout"
	CacheTTLParam = "cache_ttl"
	RetryMaxParam = "retry_max"
)

func DurationParam(params map[string]string, name string, fallback time.Duration) (time.Duration, error) {
	raw, ok := params[name]
	if !ok || raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter '%s': %w", name, raw, err)
	}

	return d, nil
}

func IntParam(params map[string]string, name string, fallback int) (int, error) {
	raw, ok := params[name]
	if !ok || raw == "" {
		return fallback, nil
	}

	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter '%s': %w", name, raw, err)
	}

	return i, nil
}
