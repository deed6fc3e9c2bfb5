package layers

import (
	"fmt"

	"github.com/biolinks/biolinks/pkg/auth"
)

// Registry is the static set of pages and the layers on them. It is built once
// and only read afterwards.
type Registry struct {
	pages  []*Page
	byPage map[string]*Page
	byID   map[string]*LayerDefinition
	order  []*LayerDefinition
}

// NewRegistry indexes pages in the order given. The same definition may be
// placed on several pages; two different definitions sharing an id are rejected.
func NewRegistry(pages ...*Page) (*Registry, error) {
	r := &Registry{
		byPage: make(map[string]*Page),
		byID:   make(map[string]*LayerDefinition),
	}

	for _, page := range pages {
		if page == nil || page.ID == "" {
			return nil, fmt.Errorf("page id is required")
		}
		if _, ok := r.byPage[page.ID]; ok {
			return nil, fmt.Errorf("duplicate page '%s'", page.ID)
		}

		seen := make(map[string]bool)
		for _, pl := range page.Layers {
			layer := pl.Layer
			if layer == nil || layer.ID == "" {
				return nil, fmt.Errorf("page '%s' contains a layer without an id", page.ID)
			}
			if seen[layer.ID] {
				return nil, fmt.Errorf("layer '%s' appears twice on page '%s'", layer.ID, page.ID)
			}
			seen[layer.ID] = true

			existing, ok := r.byID[layer.ID]
			if ok && existing != layer {
				return nil, fmt.Errorf("layer id '%s' is used by more than one definition", layer.ID)
			}
			if !ok {
				r.byID[layer.ID] = layer
				r.order = append(r.order, layer)
			}
		}

		r.pages = append(r.pages, page)
		r.byPage[page.ID] = page
	}

	return r, nil
}

func (r *Registry) Pages() []*Page {
	return r.pages
}

// Layers returns every distinct definition in first-seen order.
func (r *Registry) Layers() []*LayerDefinition {
	return r.order
}

func (r *Registry) GetLayerById(id string) (*LayerDefinition, bool) {
	layer, ok := r.byID[id]
	return layer, ok
}

// GetLayersByIds resolves ids in request order. Unknown ids are dropped and
// repeated ids resolve repeatedly.
func (r *Registry) GetLayersByIds(ids []string) []*LayerDefinition {
	result := make([]*LayerDefinition, 0, len(ids))
	for _, id := range ids {
		if layer, ok := r.byID[id]; ok {
			result = append(result, layer)
		}
	}
	return result
}

// GetLayersForPage returns the page's layers, or the default page's layers when
// pageID is unknown.
func (r *Registry) GetLayersForPage(pageID string) []PageLayer {
	if page, ok := r.byPage[pageID]; ok {
		return page.Layers
	}
	if page, ok := r.byPage[DefaultPageID]; ok {
		return page.Layers
	}
	return nil
}

func (r *Registry) HasPage(pageID string) bool {
	_, ok := r.byPage[pageID]
	return ok
}

// LayerInfo is the public description of a layer on a page.
type LayerInfo struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	DefaultVisible bool       `json:"default_visible"`
	HasDataSource  bool       `json:"has_data_source"`
	RequiresAuth   auth.Level `json:"requires_auth"`
	SubLayerIds    SubLayers  `json:"sub_layer_ids"`
}

func (r *Registry) Describe(pageID string) []LayerInfo {
	pageLayers := r.GetLayersForPage(pageID)
	infos := make([]LayerInfo, 0, len(pageLayers))
	for _, pl := range pageLayers {
		infos = append(infos, LayerInfo{
			ID:             pl.Layer.ID,
			Name:           pl.Layer.Name,
			DefaultVisible: pl.DefaultVisible,
			HasDataSource:  pl.Layer.DataSource != nil,
			RequiresAuth:   pl.Layer.RequiredLevel(),
			SubLayerIds:    SubLayerIds(pl.Layer.ID),
		})
	}
	return infos
}
