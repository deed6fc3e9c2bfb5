package catalog

import (
	"fmt"
	"reflect"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/geojson"
	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/loggers"
	"go.uber.org/zap"
)

const (
	VegetationLayerID      = "vegetation"
	INaturalistLayerID     = "iNaturalist"
	BirdDataLayerID        = "birdData"
	SquirrelGlidersLayerID = "squirrelGliders"
	TransectsLayerID       = "transects"
	HistoricalSitesLayerID = "historicalSites"
	WeedSurveysLayerID     = "weedSurveys"

	BiolinksPageID = layers.DefaultPageID
	WeedsPageID    = "weeds"
	HeritagePageID = "heritage"

	fulcrumType = "fulcrum"
	graphqlType = "graphql"
	geometryKey = "_geometry"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// Catalog holds the built-in ecological layers and the pages they appear on.
type Catalog struct {
	fetchers        *fetchers.Registry
	groups          *GroupMapping
	stationsFetcher string

	vegetation      *layers.LayerDefinition
	iNaturalist     *layers.LayerDefinition
	birdData        *layers.LayerDefinition
	squirrelGliders *layers.LayerDefinition
	transects       *layers.LayerDefinition
	historicalSites *layers.LayerDefinition
	weedSurveys     *layers.LayerDefinition
}

// NewCatalog builds the layers. fetcherRegistry is consulted when the bird feed
// transform issues its per-station queries.
func NewCatalog(fetcherRegistry *fetchers.Registry, groups *GroupMapping) *Catalog {
	if groups == nil {
		groups = NewGroupMapping(nil)
	}

	c := &Catalog{
		fetchers:        fetcherRegistry,
		groups:          groups,
		stationsFetcher: graphqlType,
	}

	c.vegetation = &layers.LayerDefinition{
		ID:        VegetationLayerID,
		Name:      "Vegetation",
		Component: "VegetationLayer",
	}

	c.iNaturalist = &layers.LayerDefinition{
		ID:        INaturalistLayerID,
		Name:      "iNaturalist",
		Component: "INaturalistLayer",
	}

	c.birdData = &layers.LayerDefinition{
		ID:        BirdDataLayerID,
		Name:      "Bird Feed",
		Component: "BirdFeedLayer",
		DataSource: &layers.DataSource{
			Type:      graphqlType,
			Query:     stationsInBoxQuery,
			Transform: c.transformStations,
		},
	}

	c.squirrelGliders = &layers.LayerDefinition{
		ID:        SquirrelGlidersLayerID,
		Name:      "Squirrel Gliders",
		Component: "SquirrelGliderLayer",
		DataSource: &layers.DataSource{
			Type:         fulcrumType,
			RequiresAuth: auth.Admin,
			Query:        squirrelGlidersQuery,
			Transform:    transformObservations,
		},
		ShouldShow: NonEmpty,
	}

	c.transects = &layers.LayerDefinition{
		ID:        TransectsLayerID,
		Name:      "Transects",
		Component: "TransectLayer",
		DataSource: &layers.DataSource{
			Type:         fulcrumType,
			RequiresAuth: auth.Admin,
			Query:        transectsQuery,
			Transform:    transformTransects,
		},
		ShouldShow: HasFeatures,
	}

	c.historicalSites = &layers.LayerDefinition{
		ID:        HistoricalSitesLayerID,
		Name:      "Historical Sites",
		Component: "HistoricalSitesLayer",
		DataSource: &layers.DataSource{
			Type:         fulcrumType,
			RequiresAuth: auth.Admin,
			Query:        historicalSitesQuery,
			Transform:    transformHistoricalSites,
		},
		ShouldShow: HasFeatures,
	}

	c.weedSurveys = &layers.LayerDefinition{
		ID:        WeedSurveysLayerID,
		Name:      "Weed Surveys",
		Component: "WeedSurveyLayer",
		DataSource: &layers.DataSource{
			Type:         fulcrumType,
			RequiresAuth: auth.User,
			QueryBuilder: c.weedSurveysQuery,
		},
		ShouldShow: NonEmpty,
	}

	return c
}

func (c *Catalog) Groups() *GroupMapping {
	return c.groups
}

// Pages returns fresh page values so callers may append manifest layers.
func (c *Catalog) Pages() []*layers.Page {
	return []*layers.Page{
		{
			ID: BiolinksPageID,
			Layers: []layers.PageLayer{
				{Layer: c.vegetation, DefaultVisible: true},
				{Layer: c.iNaturalist, DefaultVisible: true},
				{Layer: c.birdData, DefaultVisible: true},
				{Layer: c.squirrelGliders, DefaultVisible: true},
				{Layer: c.transects, DefaultVisible: false},
				{Layer: c.historicalSites, DefaultVisible: false},
			},
		},
		{
			ID: WeedsPageID,
			Layers: []layers.PageLayer{
				{Layer: c.vegetation, DefaultVisible: true},
				{Layer: c.weedSurveys, DefaultVisible: true},
			},
		},
		{
			ID: HeritagePageID,
			Layers: []layers.PageLayer{
				{Layer: c.vegetation, DefaultVisible: true},
				{Layer: c.historicalSites, DefaultVisible: true},
			},
		},
	}
}

// NonEmpty reports whether data is a non-empty slice.
func NonEmpty(data interface{}) bool {
	if data == nil {
		return false
	}
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return false
	}
	return v.Len() > 0
}

// HasFeatures reports whether data is a FeatureCollection with features.
func HasFeatures(data interface{}) bool {
	count, ok := geojson.FeatureCount(data)
	return ok && count > 0
}

func asRows(raw interface{}) ([]interface{}, error) {
	switch rows := raw.(type) {
	case nil:
		return []interface{}{}, nil
	case []interface{}:
		return rows, nil
	}
	return nil, fmt.Errorf("expected rows, got %T", raw)
}
