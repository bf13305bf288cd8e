// Package mapview builds the coverage and isochrone maps as a plain data
// model and renders that model into a standalone Leaflet HTML document.
package mapview

import (
	"github.com/paulmach/orb/geojson"
)

// TilesCartoPositron is the base layer used for every map.
const TilesCartoPositron = "cartodbpositron"

// DefaultZoom is the initial zoom level, wide enough for a health board area.
const DefaultZoom = 9

// Map is a renderable Leaflet map.
type Map struct {
	Center       LatLon         `json:"center"`
	Zoom         int            `json:"zoom"`
	Tiles        string         `json:"tiles"`
	Markers      []Marker       `json:"markers"`
	Overlays     []GeoJSONLayer `json:"overlays"`
	Groups       []FeatureGroup `json:"groups"`
	TileLayers   []string       `json:"tile_layers"`
	LayerControl bool           `json:"layer_control"`
}

// LatLon is a map position in Leaflet order.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Marker is a pharmacy pin with its detail popup.
type Marker struct {
	Position  LatLon `json:"position"`
	Color     string `json:"color"`
	IconColor string `json:"icon_color"`
	Icon      string `json:"icon"`
	Prefix    string `json:"prefix"`
	Tooltip   string `json:"tooltip"`
	Popup     Popup  `json:"popup"`
}

// Popup is the structured detail payload shown when a marker is clicked.
type Popup struct {
	Rows     []PopupRow `json:"rows"`
	MaxWidth int        `json:"max_width"`
}

// PopupRow is one "Label: value" line.
type PopupRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Style mirrors Leaflet path options.
type Style struct {
	Color       string  `json:"color,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
}

// GeoJSONLayer draws a feature collection with a fixed style and an optional
// hover style.
type GeoJSONLayer struct {
	Name      string                     `json:"name,omitempty"`
	Data      *geojson.FeatureCollection `json:"data"`
	Style     Style                      `json:"style"`
	Highlight *Style                     `json:"highlight,omitempty"`
}

// FeatureGroup is a named layer set the user can toggle from the layer control.
type FeatureGroup struct {
	Name   string         `json:"name"`
	Show   bool           `json:"show"`
	Layers []GeoJSONLayer `json:"layers"`
}

// Group returns the feature group with the given name, or nil.
func (m *Map) Group(name string) *FeatureGroup {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i]
		}
	}
	return nil
}
