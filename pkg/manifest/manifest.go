package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/catalog"
	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/validator"
	"github.com/ohler55/ojg/jp"
)

const (
	ShowAlways   = "always"
	ShowNonEmpty = "non_empty"
)

// Caller attributes a manifest template variable can be bound to.
const (
	AttributeName          = "name"
	AttributeEmail         = "email"
	AttributeGroup         = "group"
	AttributeLandcareGroup = "landcare_group"
	AttributeFormName      = "form_name"
)

// Apply builds the configured layers and places them on their pages after the
// existing layers. Pages that don't exist yet are created in the order they are
// first referenced. fetcherRegistry is used to tell structured sources from
// query-string ones and may be nil, in which case every source is treated as
// query-string.
func Apply(specs []config.LayerSpec, pages []*layers.Page, groups *catalog.GroupMapping, fetcherRegistry *fetchers.Registry) ([]*layers.Page, error) {
	if groups == nil {
		groups = catalog.NewGroupMapping(nil)
	}

	known := make(map[string]bool)
	byID := make(map[string]*layers.Page, len(pages))
	for _, page := range pages {
		byID[page.ID] = page
		for _, pl := range page.Layers {
			known[pl.Layer.ID] = true
		}
	}

	for i, spec := range specs {
		layer, err := buildLayer(spec, groups, fetcherRegistry)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if known[layer.ID] {
			return nil, fmt.Errorf("layer '%s' is already defined", layer.ID)
		}
		known[layer.ID] = true

		if len(spec.Pages) == 0 {
			return nil, fmt.Errorf("layer '%s' is not placed on any page", layer.ID)
		}

		for _, placement := range spec.Pages {
			if placement.Page == "" {
				return nil, fmt.Errorf("layer '%s' has a placement without a page", layer.ID)
			}
			if !validator.ValidatePageId(placement.Page) {
				return nil, fmt.Errorf("layer '%s': invalid page id '%s'", layer.ID, placement.Page)
			}
			page, ok := byID[placement.Page]
			if !ok {
				page = &layers.Page{ID: placement.Page}
				byID[placement.Page] = page
				pages = append(pages, page)
			}
			page.Layers = append(page.Layers, layers.PageLayer{Layer: layer, DefaultVisible: placement.DefaultVisible})
		}
	}

	return pages, nil
}

func buildLayer(spec config.LayerSpec, groups *catalog.GroupMapping, fetcherRegistry *fetchers.Registry) (*layers.LayerDefinition, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if !validator.ValidateLayerId(spec.ID) {
		return nil, fmt.Errorf("invalid layer id '%s'", spec.ID)
	}

	layer := &layers.LayerDefinition{
		ID:        spec.ID,
		Name:      spec.Name,
		Component: spec.Component,
	}
	if layer.Name == "" {
		layer.Name = spec.ID
	}

	switch spec.ShowWhen {
	case "", ShowAlways:
	case ShowNonEmpty:
		layer.ShouldShow = nonEmpty
	default:
		return nil, fmt.Errorf("layer '%s': unknown show_when '%s'", spec.ID, spec.ShowWhen)
	}

	if spec.DataSource == nil {
		return layer, nil
	}

	ds, err := buildDataSource(spec.ID, spec.DataSource, groups, fetcherRegistry)
	if err != nil {
		return nil, err
	}
	layer.DataSource = ds

	return layer, nil
}

func buildDataSource(layerID string, spec *config.DataSourceSpec, groups *catalog.GroupMapping, fetcherRegistry *fetchers.Registry) (*layers.DataSource, error) {
	if spec.Type == "" {
		return nil, fmt.Errorf("layer '%s': data_source.type is required", layerID)
	}

	level := auth.Level(spec.RequiresAuth)
	switch level {
	case "", auth.Public, auth.User, auth.Admin:
	default:
		return nil, fmt.Errorf("layer '%s': unknown requires_auth '%s'", layerID, spec.RequiresAuth)
	}

	ds := &layers.DataSource{
		Type:         spec.Type,
		RequiresAuth: level,
		Query:        spec.Query,
	}

	if len(spec.TemplateVars) > 0 {
		bindings := make(map[string]string, len(spec.TemplateVars))
		for _, v := range spec.TemplateVars {
			if v.Var == "" {
				return nil, fmt.Errorf("layer '%s': template variable without a name", layerID)
			}
			if !validator.ValidateTemplateKey(v.Var) {
				return nil, fmt.Errorf("layer '%s': invalid template variable '%s'", layerID, v.Var)
			}
			switch v.From {
			case AttributeName, AttributeEmail, AttributeGroup, AttributeLandcareGroup, AttributeFormName:
			default:
				return nil, fmt.Errorf("layer '%s': unknown caller attribute '%s' for '%s'", layerID, v.From, v.Var)
			}
			bindings[v.Var] = v.From
		}
		escape := !isStructured(spec.Type, fetcherRegistry)
		ds.TemplateVars = func(caller *auth.CallerContext) map[string]interface{} {
			vars := make(map[string]interface{}, len(bindings))
			for name, attribute := range bindings {
				value := callerAttribute(caller, attribute, groups)
				if escape && attribute != AttributeFormName {
					value = escapeQuotes(value)
				}
				vars[name] = value
			}
			return vars
		}
	}

	if spec.Select != "" {
		x, err := jp.ParseString(spec.Select)
		if err != nil {
			return nil, fmt.Errorf("layer '%s': invalid select '%s': %w", layerID, spec.Select, err)
		}
		ds.Transform = func(ctx context.Context, raw interface{}) (interface{}, error) {
			results := x.Get(raw)
			if len(results) == 1 {
				return results[0], nil
			}
			if results == nil {
				results = []interface{}{}
			}
			return results, nil
		}
	}

	return ds, nil
}

func callerAttribute(caller *auth.CallerContext, attribute string, groups *catalog.GroupMapping) string {
	if caller == nil {
		if attribute == AttributeFormName {
			return groups.FormNameForGroup("")
		}
		return ""
	}

	switch attribute {
	case AttributeName:
		if caller.User != nil {
			return caller.User.Name
		}
	case AttributeEmail:
		if caller.User != nil {
			return caller.User.Email
		}
	case AttributeGroup:
		return caller.Group
	case AttributeLandcareGroup:
		return caller.LandcareGroup
	case AttributeFormName:
		return groups.FormNameForGroup(caller.LandcareGroup)
	}
	return ""
}

func isStructured(fetcherType string, fetcherRegistry *fetchers.Registry) bool {
	if fetcherRegistry == nil {
		return false
	}
	f, err := fetcherRegistry.Get(fetcherType)
	if err != nil {
		return false
	}
	return f.Kind() == fetchers.StructuredKind
}

// escapeQuotes doubles single quotes so a claim substituted into query text
// stays inside its SQL string literal.
func escapeQuotes(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func nonEmpty(data interface{}) bool {
	return catalog.NonEmpty(data) || catalog.HasFeatures(data)
}
