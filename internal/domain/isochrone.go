package domain

import (
	"context"
	"fmt"
	"slices"

	"github.com/paulmach/orb/geojson"
)

// TravelMode is a routing profile understood by the isochrone provider.
type TravelMode string

const (
	Walking        TravelMode = "walking"
	Cycling        TravelMode = "cycling"
	Driving        TravelMode = "driving"
	DrivingTraffic TravelMode = "driving-traffic"
)

// TravelModes lists the selectable profiles in display order.
var TravelModes = []TravelMode{Walking, Cycling, Driving, DrivingTraffic}

// TravelTimes lists the selectable contour durations in minutes.
var TravelTimes = []int{5, 10, 15, 20, 25, 30}

const (
	DefaultTravelMode    = Driving
	DefaultTravelMinutes = 20
)

// ParseTravelMode validates a travel profile.
func ParseTravelMode(s string) (TravelMode, error) {
	for _, m := range TravelModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown travel mode %q", s)
}

// Scenario is one day type / travel mode / duration selection.
type Scenario struct {
	Day     DayType    `json:"day"`
	Mode    TravelMode `json:"mode"`
	Minutes int        `json:"minutes"`
}

// DefaultScenario is the initial selection offered to users.
func DefaultScenario() Scenario {
	return Scenario{Day: Weekday, Mode: DefaultTravelMode, Minutes: DefaultTravelMinutes}
}

// Validate checks every field against the allowed values.
func (s Scenario) Validate() error {
	if _, err := ParseDayType(string(s.Day)); err != nil {
		return err
	}
	if _, err := ParseTravelMode(string(s.Mode)); err != nil {
		return err
	}
	if !slices.Contains(TravelTimes, s.Minutes) {
		return fmt.Errorf("unsupported travel time %d minutes", s.Minutes)
	}
	return nil
}

// ContourKey labels a result as "<mode>_<minutes>mins".
func ContourKey(mode TravelMode, minutes int) string {
	return fmt.Sprintf("%s_%dmins", mode, minutes)
}

// BandName is the travel-time band label, e.g. "20mins".
func BandName(minutes int) string {
	return fmt.Sprintf("%dmins", minutes)
}

// IsochroneRequest identifies one contour to fetch.
type IsochroneRequest struct {
	Lon     float64
	Lat     float64
	Mode    TravelMode
	Minutes int
}

// IsochroneProvider computes reachability polygons.
type IsochroneProvider interface {
	Isochrone(ctx context.Context, req IsochroneRequest) (*geojson.FeatureCollection, error)
}

// EmptyCollection is the placeholder for closed sites and failed requests.
func EmptyCollection() *geojson.FeatureCollection {
	return geojson.NewFeatureCollection()
}

// PharmacyIsochrones pairs a pharmacy with its contours keyed by ContourKey.
type PharmacyIsochrones struct {
	Pharmacy NormalizedPharmacy
	Contours map[string]*geojson.FeatureCollection
}

// IsochroneResult holds contours for every pharmacy, in pharmacy order.
type IsochroneResult []PharmacyIsochrones
