package geojson

import (
	"encoding/json"
	"fmt"
)

const (
	TypeNameFeature           = "Feature"
	TypeNameFeatureCollection = "FeatureCollection"
)

// Geometry is kept as raw JSON. Features are produced for display, so the
// coordinates are never inspected server side.
type Geometry = json.RawMessage

type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   Geometry               `json:"geometry"`
}

type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

func NewFeatureCollection(features ...*Feature) *FeatureCollection {
	if features == nil {
		features = make([]*Feature, 0)
	}
	return &FeatureCollection{
		Type:     TypeNameFeatureCollection,
		Features: features,
	}
}

func NewFeature(properties map[string]interface{}, geometry Geometry) *Feature {
	if properties == nil {
		properties = make(map[string]interface{})
	}
	return &Feature{
		Type:       TypeNameFeature,
		Properties: properties,
		Geometry:   geometry,
	}
}

// FromRows converts query rows into a FeatureCollection. The value under
// geometryKey becomes the feature geometry; it and any drop keys are removed
// from the properties. Rows that aren't objects or have no geometry are
// skipped and counted.
func FromRows(rows []interface{}, geometryKey string, drop ...string) (*FeatureCollection, int, error) {
	fc := NewFeatureCollection()
	skipped := 0

	for i, r := range rows {
		row, ok := r.(map[string]interface{})
		if !ok {
			skipped++
			continue
		}

		rawGeometry, ok := row[geometryKey]
		if !ok || rawGeometry == nil {
			skipped++
			continue
		}

		geometry, err := json.Marshal(rawGeometry)
		if err != nil {
			return nil, skipped, fmt.Errorf("invalid geometry in row %d: %w", i, err)
		}

		properties := make(map[string]interface{}, len(row))
		for k, v := range row {
			properties[k] = v
		}
		delete(properties, geometryKey)
		for _, k := range drop {
			delete(properties, k)
		}

		fc.Features = append(fc.Features, NewFeature(properties, geometry))
	}

	return fc, skipped, nil
}

// FeatureCount reports the number of features in data, accepting either a
// FeatureCollection or its decoded JSON form.
func FeatureCount(data interface{}) (int, bool) {
	switch d := data.(type) {
	case *FeatureCollection:
		if d == nil {
			return 0, false
		}
		return len(d.Features), true
	case map[string]interface{}:
		if d["type"] != TypeNameFeatureCollection {
			return 0, false
		}
		features, ok := d["features"].([]interface{})
		if !ok {
			return 0, true
		}
		return len(features), true
	}
	return 0, false
}
