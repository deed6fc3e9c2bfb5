package activation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/loggers"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// PopupInfo is what a rendered layer reports when a feature is clicked.
type PopupInfo struct {
	Longitude  float64                `json:"longitude"`
	Latitude   float64                `json:"latitude"`
	Properties map[string]interface{} `json:"properties"`
	Type       string                 `json:"type"`
}

type LayerToggle struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsVisible bool   `json:"is_visible"`
	Toggle    func() `json:"-"`
}

type LayerProps struct {
	Data        interface{}     `json:"data,omitempty"`
	OnPopupOpen func(PopupInfo) `json:"-"`
	LayerID     string          `json:"layer_id"`
}

type ActiveLayer struct {
	ID        string     `json:"id"`
	Component string     `json:"component"`
	Props     LayerProps `json:"props"`
}

// LayerView holds the state of one page view: which layers are toggled on and
// the data last fetched for them.
type LayerView struct {
	registry    *layers.Registry
	onPopupOpen func(PopupInfo)

	mu         sync.RWMutex
	pageID     string
	pageLayers []layers.PageLayer
	visibility map[string]bool
	data       map[string]interface{}
	syncedKey  string
	stale      bool
}

func NewLayerView(registry *layers.Registry, pageID string, onPopupOpen func(PopupInfo)) *LayerView {
	v := &LayerView{
		registry:    registry,
		onPopupOpen: onPopupOpen,
		visibility:  make(map[string]bool),
		data:        make(map[string]interface{}),
	}
	v.setPage(pageID)
	return v
}

func (v *LayerView) PageID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pageID
}

// SetPage switches the view to another page. Layers new to the view start at
// their page default; layers already known keep their visibility.
func (v *LayerView) SetPage(pageID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setPage(pageID)
}

func (v *LayerView) setPage(pageID string) {
	v.pageID = pageID
	v.pageLayers = v.registry.GetLayersForPage(pageID)
	for _, pl := range v.pageLayers {
		if _, ok := v.visibility[pl.Layer.ID]; !ok {
			v.visibility[pl.Layer.ID] = pl.DefaultVisible
		}
	}
	v.stale = true
}

// Toggles lists the page's layers in page order.
func (v *LayerView) Toggles() []LayerToggle {
	v.mu.RLock()
	defer v.mu.RUnlock()

	toggles := make([]LayerToggle, 0, len(v.pageLayers))
	for _, pl := range v.pageLayers {
		id := pl.Layer.ID
		toggles = append(toggles, LayerToggle{
			ID:        id,
			Name:      pl.Layer.Name,
			IsVisible: v.visibility[id],
			Toggle:    func() { v.Toggle(id) },
		})
	}
	return toggles
}

func (v *LayerView) Toggle(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visibility[id] = !v.visibility[id]
}

func (v *LayerView) IsVisible(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.visibility[id]
}

// ActiveLayers returns the layers to render, in page order.
func (v *LayerView) ActiveLayers() []ActiveLayer {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var active []ActiveLayer
	for _, pl := range v.pageLayers {
		layer := pl.Layer
		if !v.visibility[layer.ID] {
			continue
		}

		var data interface{}
		if layer.DataSource != nil {
			d, ok := v.data[layer.ID]
			if !ok || d == nil {
				continue
			}
			if layer.ShouldShow != nil && !layer.ShouldShow(d) {
				continue
			}
			data = d
		}

		active = append(active, ActiveLayer{
			ID:        layer.ID,
			Component: layer.Component,
			Props: LayerProps{
				Data:        data,
				OnPopupOpen: v.onPopupOpen,
				LayerID:     layer.ID,
			},
		})
	}
	return active
}

// dataLayerIds returns the ids of the page's data source layers.
func (v *LayerView) dataLayerIds() []string {
	var ids []string
	for _, pl := range v.pageLayers {
		if pl.Layer.DataSource != nil {
			ids = append(ids, pl.Layer.ID)
		}
	}
	return ids
}

func layerSetKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// Sync fetches data for every data source layer of the page in one request.
// Nothing is fetched when the layer set matches the last sync and the page has
// not changed since. On failure all data is dropped and the error returned.
func (v *LayerView) Sync(ctx context.Context, client DataClient) error {
	v.mu.RLock()
	ids := v.dataLayerIds()
	key := layerSetKey(ids)
	upToDate := !v.stale && key == v.syncedKey
	v.mu.RUnlock()

	if upToDate {
		return nil
	}

	data := make(map[string]interface{})
	var fetchErr error
	if len(ids) > 0 {
		response, err := client.FetchLayers(ctx, ids)
		if err != nil {
			fetchErr = err
			zaplog.Sugar().Warnf("failed to fetch layers %v: %s", ids, err.Error())
		} else {
			for id, d := range response.Data {
				data[id] = d
			}
			for id, msg := range response.Errors {
				zaplog.Sugar().Debugf("layer %s failed: %s", id, msg)
			}
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if layerSetKey(v.dataLayerIds()) != key {
		// The page changed while fetching; the next Sync picks it up.
		return fetchErr
	}
	v.data = data
	v.syncedKey = key
	v.stale = false

	return fetchErr
}
