package layers

import (
	"context"
	"fmt"

	"github.com/biolinks/biolinks/pkg/auth"
)

const (
	DefaultPageID string = "biolinks"
)

// DataSource describes how a layer's data is fetched and shaped.
type DataSource struct {
	// Type names the fetcher in the fetchers registry.
	Type         string
	RequiresAuth auth.Level
	Query        string
	// QueryBuilder takes precedence over Query when set.
	QueryBuilder func(caller *auth.CallerContext) string
	TemplateVars func(caller *auth.CallerContext) map[string]interface{}
	Transform    func(ctx context.Context, raw interface{}) (interface{}, error)
}

// ResolveQuery returns the query text for caller.
func (ds *DataSource) ResolveQuery(caller *auth.CallerContext) string {
	if ds.QueryBuilder != nil {
		return ds.QueryBuilder(caller)
	}
	return ds.Query
}

type LayerDefinition struct {
	ID        string
	Name      string
	Component string
	// DataSource is nil for layers rendered without fetched data.
	DataSource *DataSource
	ShouldShow func(data interface{}) bool
}

func (l *LayerDefinition) RequiredLevel() auth.Level {
	if l.DataSource == nil || l.DataSource.RequiresAuth == "" {
		return auth.Public
	}
	return l.DataSource.RequiresAuth
}

type PageLayer struct {
	Layer          *LayerDefinition
	DefaultVisible bool
}

type Page struct {
	ID     string
	Layers []PageLayer
}

type SubLayers struct {
	Source string `json:"source"`
	Fill   string `json:"fill"`
	Line   string `json:"line"`
	Marker string `json:"marker"`
}

// SubLayerIds derives the renderer ids for the parts of a layer.
func SubLayerIds(layerID string) SubLayers {
	return SubLayers{
		Source: fmt.Sprintf("%s-source", layerID),
		Fill:   fmt.Sprintf("%s-fill", layerID),
		Line:   fmt.Sprintf("%s-line", layerID),
		Marker: fmt.Sprintf("%s-marker", layerID),
	}
}
