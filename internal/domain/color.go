package domain

// FallbackColor is used for regions missing from a RegionColorMap.
const FallbackColor = "black"

// DefaultPalette is the marker colour set supported by Leaflet awesome-markers.
var DefaultPalette = []string{
	"lightgreen", "purple", "red", "blue", "green", "orange",
	"darkred", "lightred", "beige", "darkblue", "darkgreen",
	"cadetblue", "darkpurple", "pink", "lightblue",
	"gray", "black", "lightgray",
}

// RegionColorMap maps a region label to a marker colour.
type RegionColorMap map[string]string

// Color returns the colour for region, or FallbackColor.
func (m RegionColorMap) Color(region string) string {
	if c, ok := m[region]; ok {
		return c
	}
	return FallbackColor
}

// DistinctRegions returns each region once, in first-seen order.
func DistinctRegions(pharmacies []NormalizedPharmacy) []string {
	seen := make(map[string]struct{}, len(pharmacies))
	var regions []string
	for _, p := range pharmacies {
		if _, ok := seen[p.Region]; ok {
			continue
		}
		seen[p.Region] = struct{}{}
		regions = append(regions, p.Region)
	}
	return regions
}

// AssignColors gives the region at index i the colour palette[i mod len(palette)].
// The assignment is deterministic for a given region order and palette.
func AssignColors(regions []string, palette []string) RegionColorMap {
	colors := make(RegionColorMap, len(regions))
	if len(palette) == 0 {
		return colors
	}
	for i, r := range regions {
		if _, ok := colors[r]; ok {
			continue
		}
		colors[r] = palette[i%len(palette)]
	}
	return colors
}
