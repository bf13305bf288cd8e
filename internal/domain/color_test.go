package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignColors_Deterministic(t *testing.T) {
	regions := []string{"Leeds", "York", "Bradford"}

	first := AssignColors(regions, DefaultPalette)
	second := AssignColors(regions, DefaultPalette)

	assert.Equal(t, first, second)
	assert.Equal(t, RegionColorMap{"Leeds": "lightgreen", "York": "purple", "Bradford": "red"}, first)
}

func TestAssignColors_WrapsAroundPalette(t *testing.T) {
	palette := []string{"red", "blue", "green"}
	regions := make([]string, 8)
	for i := range regions {
		regions[i] = fmt.Sprintf("region-%d", i)
	}

	colors := AssignColors(regions, palette)

	assert.Len(t, colors, len(regions))
	for i, r := range regions {
		assert.Equal(t, palette[i%len(palette)], colors[r], r)
	}
}

func TestAssignColors_Empty(t *testing.T) {
	assert.Empty(t, AssignColors(nil, DefaultPalette))
	assert.Empty(t, AssignColors([]string{"Leeds"}, nil))
}

func TestRegionColorMap_Fallback(t *testing.T) {
	colors := RegionColorMap{"Leeds": "red"}
	assert.Equal(t, "red", colors.Color("Leeds"))
	assert.Equal(t, FallbackColor, colors.Color("Wakefield"))
}

func TestDistinctRegions_FirstSeenOrder(t *testing.T) {
	pharmacies := []NormalizedPharmacy{
		{Region: "York"}, {Region: "Leeds"}, {Region: "York"}, {Region: "Hull"}, {Region: "Leeds"},
	}
	assert.Equal(t, []string{"York", "Leeds", "Hull"}, DistinctRegions(pharmacies))
}

func TestDefaultPalette_Size(t *testing.T) {
	assert.Len(t, DefaultPalette, 18)
}
