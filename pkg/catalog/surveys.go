package catalog

import (
	"context"
	"fmt"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/geojson"
)

const (
	squirrelGlidersQuery = `SELECT
    _child_record_id AS observation_id,
    _parent_id AS parent_record_id,
    common_name,
    scientific_name,
    number_of_individuals,
    behaviour_notes,
    _latitude,
    _longitude,
    _geometry
FROM
    "Project Platypus field crew logging/animals_observed"
WHERE
    common_name = 'Squirrel Glider '
ORDER BY
    _parent_id;`

	transectsQuery = `SELECT
    *
FROM
    "Project Platypus field crew logging"
WHERE
    'Glider survey' = ANY(activity_type)
    AND is_this_a_day_or_night_survey = 'night'
    AND is_this_a_day_or_night_survey IS NOT NULL`

	historicalSitesQuery = `SELECT
    *
FROM
    "LOOKUP TABLE Long Term Sites Jallukar LCG"`

	weedSurveysQuery = `SELECT
    Parent._record_id AS parent_record_id,
    Parent.date AS parent_date,
    Parent.name AS parent_name,
    Repeat.*
FROM
    "Landcare Activity Tracking Form_%[1]s" AS Parent
JOIN
    "Landcare Activity Tracking Form_%[1]s/weed_hotspot" AS Repeat
ON
    Parent._record_id = Repeat._parent_id;`
)

type Observation struct {
	ObservationID       interface{} `json:"observation_id"`
	ParentRecordID      interface{} `json:"parent_record_id"`
	CommonName          interface{} `json:"common_name"`
	ScientificName      interface{} `json:"scientific_name"`
	NumberOfIndividuals interface{} `json:"number_of_individuals"`
	BehaviourNotes      interface{} `json:"behaviour_notes"`
	Latitude            interface{} `json:"_latitude"`
	Longitude           interface{} `json:"_longitude"`
	Geometry            interface{} `json:"_geometry"`
}

func transformObservations(ctx context.Context, raw interface{}) (interface{}, error) {
	rows, err := asRows(raw)
	if err != nil {
		return nil, err
	}

	observations := make([]*Observation, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		observations = append(observations, &Observation{
			ObservationID:       row["observation_id"],
			ParentRecordID:      row["parent_record_id"],
			CommonName:          row["common_name"],
			ScientificName:      row["scientific_name"],
			NumberOfIndividuals: row["number_of_individuals"],
			BehaviourNotes:      row["behaviour_notes"],
			Latitude:            row["_latitude"],
			Longitude:           row["_longitude"],
			Geometry:            row["_geometry"],
		})
	}

	return observations, nil
}

func transformTransects(ctx context.Context, raw interface{}) (interface{}, error) {
	rows, err := asRows(raw)
	if err != nil {
		return nil, err
	}

	fc, skipped, err := geojson.FromRows(rows, geometryKey)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		zaplog.Sugar().Debugf("skipped %d transects without geometry", skipped)
	}

	return fc, nil
}

func transformHistoricalSites(ctx context.Context, raw interface{}) (interface{}, error) {
	rows, err := asRows(raw)
	if err != nil {
		return nil, err
	}

	fc, skipped, err := geojson.FromRows(rows, geometryKey, "polygon_points")
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		zaplog.Sugar().Warnf("skipped %d historical sites missing geometry", skipped)
	}

	return fc, nil
}

func (c *Catalog) weedSurveysQuery(caller *auth.CallerContext) string {
	group := ""
	if caller != nil {
		group = caller.LandcareGroup
	}
	return fmt.Sprintf(weedSurveysQuery, c.groups.FormNameForGroup(group))
}
