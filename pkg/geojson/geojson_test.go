package geojson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoJSON(t *testing.T) {
	t.Run("FromRows() - Builds features", testFromRowsFunc())
	t.Run("FromRows() - Skips rows without geometry", testFromRowsSkipsFunc())
	t.Run("FromRows() - Empty rows", testFromRowsEmptyFunc())
	t.Run("FeatureCount()", testFeatureCountFunc())
}

func testFromRowsFunc() func(*testing.T) {
	return func(t *testing.T) {
		rows := []interface{}{
			map[string]interface{}{
				"site_name":      "Mount William",
				"polygon_points": "1,2 3,4",
				"_geometry":      map[string]interface{}{"type": "Point", "coordinates": []interface{}{142.6, -37.3}},
			},
		}

		fc, skipped, err := FromRows(rows, "_geometry", "polygon_points")
		require.NoError(t, err)
		assert.Equal(t, 0, skipped)

		actual, err := json.Marshal(fc)
		require.NoError(t, err)

		expected := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"site_name":"Mount William"},"geometry":{"coordinates":[142.6,-37.3],"type":"Point"}}]}`
		assert.JSONEq(t, expected, string(actual))

		// source rows are left untouched
		assert.Contains(t, rows[0], "polygon_points")
	}
}

func testFromRowsSkipsFunc() func(*testing.T) {
	return func(t *testing.T) {
		rows := []interface{}{
			map[string]interface{}{"site_name": "No geometry"},
			map[string]interface{}{"site_name": "Null geometry", "_geometry": nil},
			"not a row",
			map[string]interface{}{"site_name": "Ok", "_geometry": map[string]interface{}{"type": "Point"}},
		}

		fc, skipped, err := FromRows(rows, "_geometry")
		require.NoError(t, err)
		assert.Equal(t, 3, skipped)
		require.Len(t, fc.Features, 1)
		assert.Equal(t, "Ok", fc.Features[0].Properties["site_name"])
	}
}

func testFromRowsEmptyFunc() func(*testing.T) {
	return func(t *testing.T) {
		fc, skipped, err := FromRows(nil, "_geometry")
		require.NoError(t, err)
		assert.Equal(t, 0, skipped)

		actual, err := json.Marshal(fc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(actual))
	}
}

func testFeatureCountFunc() func(*testing.T) {
	return func(t *testing.T) {
		count, ok := FeatureCount(NewFeatureCollection(NewFeature(nil, nil)))
		assert.True(t, ok)
		assert.Equal(t, 1, count)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(`{"type":"FeatureCollection","features":[{},{}]}`), &decoded))
		count, ok = FeatureCount(decoded)
		assert.True(t, ok)
		assert.Equal(t, 2, count)

		_, ok = FeatureCount([]interface{}{})
		assert.False(t, ok)
	}
}
