package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

const (
	stationsInBoxQuery = `query StationsInBox {
  stations(ne: {lat: -36.87034, lon: 143.157963}, sw: {lat: -37.25989, lon: 142.428217}) {
    nodes { id name location coords { lat lon } }
  }
}`

	dailySpeciesQuery = `query DailySpeciesBreakdown($stationId: [ID!]!, $timePeriod: InputDuration) {
  dailyDetectionCounts(stationIds: $stationId, period: $timePeriod) {
    date total counts { count species { id commonName scientificName } }
  }
}`

	maxStationQueries = 8
)

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Species struct {
	ID             string `json:"id"`
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
}

type SpeciesCount struct {
	Count   int     `json:"count"`
	Species Species `json:"species"`
}

type DailyCounts struct {
	Date   string          `json:"date"`
	Total  int             `json:"total"`
	Counts []*SpeciesCount `json:"counts"`
}

type Station struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Location    *string      `json:"location"`
	Coords      Coords       `json:"coords"`
	SpeciesData *DailyCounts `json:"speciesData"`
}

type stationsResponse struct {
	Stations struct {
		Nodes []*Station `json:"nodes"`
	} `json:"stations"`
}

type dailyCountsResponse struct {
	DailyDetectionCounts []*DailyCounts `json:"dailyDetectionCounts"`
}

// transformStations attaches the last day of detections to every station. A
// station whose breakdown can't be fetched is kept with no species data.
func (c *Catalog) transformStations(ctx context.Context, raw interface{}) (interface{}, error) {
	var resp stationsResponse
	if err := decodeInto(raw, &resp); err != nil {
		return nil, fmt.Errorf("unexpected stations response: %w", err)
	}

	stations := resp.Stations.Nodes
	if len(stations) == 0 {
		return []*Station{}, nil
	}

	fetcher, err := c.fetchers.Get(c.stationsFetcher)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxStationQueries)
	for _, station := range stations {
		station := station
		g.Go(func() error {
			variables := map[string]interface{}{
				"stationId":  []string{station.ID},
				"timePeriod": map[string]interface{}{"count": 1, "unit": "day"},
			}

			data, err := fetcher.Fetch(gctx, dailySpeciesQuery, variables)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zaplog.Sugar().Warnf("error fetching species for station %s: %s", station.ID, err.Error())
				return nil
			}

			var counts dailyCountsResponse
			if err := decodeInto(data, &counts); err != nil {
				zaplog.Sugar().Warnf("unexpected species response for station %s: %s", station.ID, err.Error())
				return nil
			}
			if len(counts.DailyDetectionCounts) > 0 && counts.DailyDetectionCounts[0] != nil {
				station.SpeciesData = counts.DailyDetectionCounts[0]
				SortSpeciesByCount(station.SpeciesData.Counts)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stations, nil
}

// SortSpeciesByCount orders counts from most to least detected.
func SortSpeciesByCount(counts []*SpeciesCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
}

func UniqueSpeciesCount(station *Station) int {
	if station == nil || station.SpeciesData == nil {
		return 0
	}
	return len(station.SpeciesData.Counts)
}

// MaxSpecies is the largest unique species count over stations, used to scale
// marker shading.
func MaxSpecies(stations []*Station) int {
	max := 0
	for _, station := range stations {
		if n := UniqueSpeciesCount(station); n > max {
			max = n
		}
	}
	return max
}

// StationPopupProperties is the detail shown when a station marker is opened.
func StationPopupProperties(station *Station) map[string]interface{} {
	properties := map[string]interface{}{
		"station_name":     station.Name,
		"unique_species":   UniqueSpeciesCount(station),
		"total_detections": nil,
		"date":             nil,
		"species_list":     []*SpeciesCount{},
	}
	if station.SpeciesData != nil {
		sorted := append([]*SpeciesCount(nil), station.SpeciesData.Counts...)
		SortSpeciesByCount(sorted)
		properties["total_detections"] = station.SpeciesData.Total
		properties["date"] = station.SpeciesData.Date
		properties["species_list"] = sorted
	}
	return properties
}

// decodeInto converts a decoded JSON value into a typed struct.
func decodeInto(raw interface{}, v interface{}) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
