package csv

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/biolinks/biolinks/pkg/loggers"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

const (
	LatitudeColumn  = "latitude"
	LongitudeColumn = "longitude"
	GeometryKey     = "_geometry"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// ProcessCsv reads a CSV document with a header line into rows keyed by
// column name, the same shape the survey APIs return. Numeric fields become
// float64 and empty fields nil. Rows with latitude and longitude columns get a
// GeoJSON point under "_geometry".
func ProcessCsv(input io.Reader) ([]interface{}, error) {
	records, err := gocsv.CSVToMaps(input)
	if err != nil {
		return nil, fmt.Errorf("failed to process csv: %w", err)
	}

	if len(records) == 0 {
		return nil, errors.New("failed to process csv: no data")
	}

	rows := make([]interface{}, 0, len(records))
	for line, record := range records {
		row := make(map[string]interface{}, len(record)+1)
		for column, field := range record {
			row[column] = parseField(field)
		}

		geometry, err := pointGeometry(row)
		if err != nil {
			zaplog.Sugar().Debugf("line %d: %s", line+2, err.Error())
		} else if geometry != nil {
			row[GeometryKey] = geometry
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseField(field string) interface{} {
	if field == "" {
		return nil
	}
	if val, err := strconv.ParseFloat(field, 64); err == nil {
		return val
	}
	return field
}

// pointGeometry returns nil when the row has no coordinate columns.
func pointGeometry(row map[string]interface{}) (map[string]interface{}, error) {
	latValue, hasLat := row[LatitudeColumn]
	lngValue, hasLng := row[LongitudeColumn]
	if !hasLat && !hasLng {
		return nil, nil
	}

	lat, latOk := latValue.(float64)
	lng, lngOk := lngValue.(float64)
	if !latOk || !lngOk {
		return nil, fmt.Errorf("invalid coordinates %v, %v", latValue, lngValue)
	}

	return map[string]interface{}{
		"type":        "Point",
		"coordinates": []interface{}{lng, lat},
	}, nil
}
