package mapview

import (
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/paulmach/orb/geojson"
)

var (
	boundaryStyle = Style{
		FillColor:   "#ffffff",
		Color:       "#000000",
		FillOpacity: 0.1,
		Weight:      1,
	}
	boundaryHighlight = Style{
		FillColor:   "#000000",
		Color:       "#000000",
		FillOpacity: 0.5,
		Weight:      0.1,
	}
)

const (
	markerIcon      = "hospital"
	markerPrefix    = "fa"
	markerIconColor = "white"
	markerTooltip   = "Click for more details"
	popupMaxWidth   = 300
)

// BuildCoverageMap places one marker per pharmacy, coloured by region, on a
// map centred at the mean pharmacy position, and overlays the boundary with a
// hover highlight. The boundary overlay is not listed in the layer control.
func BuildCoverageMap(pharmacies []domain.NormalizedPharmacy, boundary *geojson.FeatureCollection, colors domain.RegionColorMap) (*Map, error) {
	if len(pharmacies) == 0 {
		return nil, &domain.EmptyInputError{What: "pharmacies"}
	}

	var sumLat, sumLon float64
	for _, p := range pharmacies {
		sumLat += p.Latitude
		sumLon += p.Longitude
	}
	n := float64(len(pharmacies))

	m := &Map{
		Center:  LatLon{Lat: sumLat / n, Lon: sumLon / n},
		Zoom:    DefaultZoom,
		Tiles:   TilesCartoPositron,
		Markers: make([]Marker, 0, len(pharmacies)),
	}

	for _, p := range pharmacies {
		m.Markers = append(m.Markers, Marker{
			Position:  LatLon{Lat: p.Latitude, Lon: p.Longitude},
			Color:     colors.Color(p.Region),
			IconColor: markerIconColor,
			Icon:      markerIcon,
			Prefix:    markerPrefix,
			Tooltip:   markerTooltip,
			Popup:     Popup{Rows: popupRows(p), MaxWidth: popupMaxWidth},
		})
	}

	if boundary != nil {
		highlight := boundaryHighlight
		m.Overlays = append(m.Overlays, GeoJSONLayer{
			Data:      boundary,
			Style:     boundaryStyle,
			Highlight: &highlight,
		})
	}
	return m, nil
}

func popupRows(p domain.NormalizedPharmacy) []PopupRow {
	rows := []PopupRow{
		{Label: "Code", Value: p.Code},
		{Label: "Name", Value: p.Address},
		{Label: "Local Authority", Value: p.Region},
		{Label: "Organisation Type", Value: p.OrganisationType},
	}
	for _, d := range domain.WeekOrder {
		rows = append(rows, PopupRow{Label: "Opening Hours " + d.String(), Value: p.Hours.Day(d)})
	}
	return append(rows, PopupRow{Label: "Total Opening Hours", Value: p.TotalHours})
}
