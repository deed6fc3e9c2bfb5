package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteFetcher(t *testing.T) {
	t.Run("Init() - Requires dsn", testInitRequiresDsnFunc())
	t.Run("Fetch() - Returns column-keyed rows", testFetchRowsFunc())
	t.Run("Fetch() - Invalid SQL", testFetchInvalidSQLFunc())
	t.Run("Kind()", testKindFunc())
}

func seedDatabase(t *testing.T) string {
	dsn := filepath.Join(t.TempDir(), "surveys.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE weeds (species TEXT, cover INTEGER, notes BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO weeds VALUES ('Gorse', 40, 'roadside'), ('Blackberry', 15, NULL)`)
	require.NoError(t, err)

	return dsn
}

func testInitRequiresDsnFunc() func(*testing.T) {
	return func(t *testing.T) {
		err := NewSQLiteFetcher().Init(map[string]string{})
		assert.Error(t, err)
	}
}

func testFetchRowsFunc() func(*testing.T) {
	return func(t *testing.T) {
		f := NewSQLiteFetcher()
		require.NoError(t, f.Init(map[string]string{"dsn": seedDatabase(t)}))
		t.Cleanup(func() { _ = f.Close() })

		data, err := f.Fetch(context.Background(), "SELECT species, cover, notes FROM weeds ORDER BY cover DESC", nil)
		require.NoError(t, err)

		expected := []interface{}{
			map[string]interface{}{"species": "Gorse", "cover": int64(40), "notes": "roadside"},
			map[string]interface{}{"species": "Blackberry", "cover": int64(15), "notes": nil},
		}
		assert.Equal(t, expected, data)
	}
}

func testFetchInvalidSQLFunc() func(*testing.T) {
	return func(t *testing.T) {
		f := NewSQLiteFetcher()
		require.NoError(t, f.Init(map[string]string{"dsn": seedDatabase(t)}))
		t.Cleanup(func() { _ = f.Close() })

		_, err := f.Fetch(context.Background(), "SELECT * FROM missing_table", nil)
		assert.Error(t, err)
	}
}

func testKindFunc() func(*testing.T) {
	return func(t *testing.T) {
		assert.Equal(t, fetchers.QueryStringKind, NewSQLiteFetcher().Kind())
	}
}
