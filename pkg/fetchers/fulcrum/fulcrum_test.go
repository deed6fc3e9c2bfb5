package fulcrum

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFulcrum(t *testing.T) {
	t.Run("Fetch() - Returns rows", testFetchRowsFunc())
	t.Run("Fetch() - Upstream failure", testFetchUpstreamFailureFunc())
	t.Run("Fetch() - Cached responses", testFetchCachedFunc())
	t.Run("Init() - Invalid timeout", testInitInvalidTimeoutFunc())
	t.Run("Fetch() - Without Init", testFetchWithoutInitFunc())
	t.Run("Kind()", testKindFunc())
}

func newFetcher(t *testing.T, server *httptest.Server, params map[string]string) *FulcrumFetcher {
	f := NewFulcrumFetcher()
	p := map[string]string{
		"base_url":  server.URL,
		"token":     "test-token",
		"retry_max": "0",
		"cache_ttl": "0s",
	}
	for k, v := range params {
		p[k] = v
	}
	require.NoError(t, f.Init(p))
	return f
}

func testFetchRowsFunc() func(*testing.T) {
	return func(t *testing.T) {
		query := `SELECT * FROM "Landcare Activity Tracking Form_Jallukar LCG" WHERE a = 'b&c'`

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, query, r.URL.Query().Get("q"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "20000", r.URL.Query().Get("per_page"))
			assert.Equal(t, "test-token", r.Header.Get("X-ApiToken"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"fields":[],"rows":[{"_record_id":"r1"},{"_record_id":"r2"}]}`))
		}))
		defer server.Close()

		f := newFetcher(t, server, nil)
		actual, err := f.Fetch(context.Background(), query, nil)
		require.NoError(t, err)

		rows, ok := actual.([]interface{})
		require.True(t, ok)
		assert.Equal(t, 2, len(rows))
		assert.Equal(t, map[string]interface{}{"_record_id": "r1"}, rows[0])
	}
}

func testFetchUpstreamFailureFunc() func(*testing.T) {
	return func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		f := newFetcher(t, server, nil)
		_, err := f.Fetch(context.Background(), "SELECT 1", nil)
		require.Error(t, err)
		assert.Equal(t, "Fulcrum API error: 403 Forbidden", err.Error())

		var upstream *fetchers.UpstreamError
		assert.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	}
}

func testFetchCachedFunc() func(*testing.T) {
	return func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			_, _ = w.Write([]byte(`{"rows":[]}`))
		}))
		defer server.Close()

		f := newFetcher(t, server, map[string]string{"cache_ttl": "1m"})
		for i := 0; i < 3; i++ {
			actual, err := f.Fetch(context.Background(), "SELECT 1", nil)
			require.NoError(t, err)
			assert.Equal(t, []interface{}{}, actual)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

		_, err := f.Fetch(context.Background(), "SELECT 2", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	}
}

func testInitInvalidTimeoutFunc() func(*testing.T) {
	return func(t *testing.T) {
		err := NewFulcrumFetcher().Init(map[string]string{"timeout": "forever"})
		assert.Error(t, err)
	}
}

func testKindFunc() func(*testing.T) {
	return func(t *testing.T) {
		assert.Equal(t, fetchers.QueryStringKind, NewFulcrumFetcher().Kind())
	}
}

func testFetchWithoutInitFunc() func(*testing.T) {
	return func(t *testing.T) {
		f := NewFulcrumFetcher()

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.Fetch(context.Background(), "SELECT 1", nil)
				assert.ErrorIs(t, err, fetchers.ErrNotInitialized)
			}()
		}
		wg.Wait()
	}
}
