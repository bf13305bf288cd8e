package mapview

import (
	"fmt"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// BoundaryGroupName labels the togglable boundary layer on isochrone maps.
const BoundaryGroupName = "Show Boundary"

var isochroneStyle = Style{
	Color:       "#009900",
	FillColor:   "#009900",
	Weight:      1,
	FillOpacity: 0.3,
}

// GroupName is the layer-control label for a travel-time band.
func GroupName(mode domain.TravelMode, minutes int) string {
	return fmt.Sprintf("%d mins by %s", minutes, mode)
}

// AddIsochroneLayers adds one togglable layer per mode and duration, in the
// order given, holding the non-empty contours for that band. It then adds a
// togglable boundary layer, a base tile layer and the layer control. Contours
// for bands not listed are ignored.
func AddIsochroneLayers(m *Map, modes []domain.TravelMode, minutes []int, result domain.IsochroneResult, boundary *geojson.FeatureCollection) {
	for _, mode := range modes {
		for _, mins := range minutes {
			m.Groups = append(m.Groups, bandGroup(mode, mins, result))
		}
	}

	boundaryGroup := FeatureGroup{Name: BoundaryGroupName, Show: true}
	if boundary != nil {
		boundaryGroup.Layers = []GeoJSONLayer{{Data: boundary, Style: boundaryStyle}}
	}
	m.Groups = append(m.Groups, boundaryGroup)

	m.TileLayers = append(m.TileLayers, TilesCartoPositron)
	m.LayerControl = true
}

func bandGroup(mode domain.TravelMode, minutes int, result domain.IsochroneResult) FeatureGroup {
	band := FeatureGroup{Name: GroupName(mode, minutes), Show: true}
	key := domain.ContourKey(mode, minutes)
	name := domain.BandName(minutes)
	for _, entry := range result {
		fc := entry.Contours[key]
		if fc == nil || len(fc.Features) == 0 {
			continue
		}
		band.Layers = append(band.Layers, GeoJSONLayer{Name: name, Data: fc, Style: isochroneStyle})
	}
	return band
}

// PolygonCount returns the number of contour layers drawn on the map.
func (m *Map) PolygonCount() int {
	n := 0
	for _, g := range m.Groups {
		if g.Name == BoundaryGroupName {
			continue
		}
		n += len(g.Layers)
	}
	return n
}
