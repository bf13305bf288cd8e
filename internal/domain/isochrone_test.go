package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContourKey(t *testing.T) {
	assert.Equal(t, "driving_20mins", ContourKey(Driving, 20))
	assert.Equal(t, "driving-traffic_5mins", ContourKey(DrivingTraffic, 5))
}

func TestScenario_Validate(t *testing.T) {
	require.NoError(t, DefaultScenario().Validate())
	assert.Equal(t, Scenario{Day: Weekday, Mode: Driving, Minutes: 20}, DefaultScenario())

	assert.Error(t, Scenario{Day: "Monday", Mode: Driving, Minutes: 20}.Validate())
	assert.Error(t, Scenario{Day: Weekday, Mode: "flying", Minutes: 20}.Validate())
	assert.Error(t, Scenario{Day: Weekday, Mode: Walking, Minutes: 7}.Validate())
}

func TestParseDayType(t *testing.T) {
	d, err := ParseDayType("Weekend_Saturday")
	require.NoError(t, err)
	assert.Equal(t, WeekendSaturday, d)

	_, err = ParseDayType("weekend_saturday")
	assert.Error(t, err)
}

func TestEmptyCollection(t *testing.T) {
	fc := EmptyCollection()
	require.NotNil(t, fc)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Empty(t, fc.Features)
}
