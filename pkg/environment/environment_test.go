package environment

import (
	"path/filepath"
	"testing"

	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment(t *testing.T) {
	t.Run("NewEnvironment() - Registers configured fetchers", testNewEnvironmentFunc())
	t.Run("NewEnvironment() - Registers sqlite when a dsn is set", testNewEnvironmentSQLiteFunc())
	t.Run("NewEnvironment() - Invalid fetcher parameters", testNewEnvironmentInvalidFunc())
	t.Run("NewFetcher() - Unknown fetcher", testNewFetcherUnknownFunc())
	t.Run("NewLayerRegistry() - Catalog and configured layers", testNewLayerRegistryFunc())
	t.Run("NewLayerRegistry() - Invalid layers", testNewLayerRegistryInvalidFunc())
}

func testNewEnvironmentFunc() func(*testing.T) {
	return func(t *testing.T) {
		cfg := config.LoadDefaultConfiguration()
		cfg.Fetchers.File = map[string]string{"dir": t.TempDir(), "watch": "false"}

		env, err := NewEnvironment(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = env.Close() })

		assert.Equal(t, []string{"file", "fulcrum", "graphql"}, env.Fetchers.Names())
		assert.NotNil(t, env.Orchestrator)
		assert.Len(t, env.Layers.Pages(), 3)

		_, err = env.Fetchers.Get("sqlite")
		assert.EqualError(t, err, "no fetcher found for type: sqlite")
	}
}

func testNewEnvironmentSQLiteFunc() func(*testing.T) {
	return func(t *testing.T) {
		cfg := config.LoadDefaultConfiguration()
		cfg.Fetchers.File = map[string]string{"watch": "false"}
		cfg.Fetchers.SQLite = map[string]string{"dsn": filepath.Join(t.TempDir(), "local.db")}

		env, err := NewEnvironment(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = env.Close() })

		f, err := env.Fetchers.Get("sqlite")
		require.NoError(t, err)
		assert.Equal(t, fetchers.QueryStringKind, f.Kind())
	}
}

func testNewEnvironmentInvalidFunc() func(*testing.T) {
	return func(t *testing.T) {
		cfg := config.LoadDefaultConfiguration()
		cfg.Fetchers.Timeout = "forever"

		_, err := NewEnvironment(cfg)
		assert.Error(t, err)
	}
}

func testNewFetcherUnknownFunc() func(*testing.T) {
	return func(t *testing.T) {
		_, err := NewFetcher("influxdb", nil)
		assert.EqualError(t, err, "unknown fetcher 'influxdb'")
	}
}

func testNewLayerRegistryFunc() func(*testing.T) {
	return func(t *testing.T) {
		cfg := config.LoadDefaultConfiguration()
		cfg.Layers = []config.LayerSpec{
			{ID: "fireHistory", Name: "Fire History", Pages: []config.PageSpec{{Page: "heritage", DefaultVisible: true}}},
		}

		registry, err := NewLayerRegistry(cfg, fetchers.NewRegistry())
		require.NoError(t, err)

		heritage := registry.GetLayersForPage("heritage")
		require.Len(t, heritage, 3)
		assert.Equal(t, "fireHistory", heritage[2].Layer.ID)
	}
}

func testNewLayerRegistryInvalidFunc() func(*testing.T) {
	return func(t *testing.T) {
		cfg := config.LoadDefaultConfiguration()
		cfg.Layers = []config.LayerSpec{{ID: "vegetation", Pages: []config.PageSpec{{Page: "weeds"}}}}

		_, err := NewLayerRegistry(cfg, fetchers.NewRegistry())
		assert.Error(t, err)
	}
}
