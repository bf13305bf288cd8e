package domain

import (
	"fmt"
	"time"
)

// RawPharmacyRecord is one row of the uploaded pharmacy CSV, untyped.
type RawPharmacyRecord struct {
	OrganisationName string
	Address1         string
	Address2         string
	Address3         string
	Address4         string
	Postcode         string

	HoursMonday    string
	HoursTuesday   string
	HoursWednesday string
	HoursThursday  string
	HoursFriday    string
	HoursSaturday  string
	HoursSunday    string

	WeeklyTotal  string
	ContractType string
	HealthBoard  string
	SiteCode     string
}

// Status is the open/closed activity flag for a day type.
type Status string

const (
	StatusOpened Status = "Opened"
	StatusClosed Status = "Closed"
)

// DayType selects which activity flag drives isochrone fetching.
type DayType string

const (
	Weekday         DayType = "Weekday"
	WeekendSaturday DayType = "Weekend_Saturday"
	WeekendSunday   DayType = "Weekend_Sunday"
)

// DayTypes lists the selectable day types in display order.
var DayTypes = []DayType{Weekday, WeekendSaturday, WeekendSunday}

// ParseDayType validates a day type label.
func ParseDayType(s string) (DayType, error) {
	for _, d := range DayTypes {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day type %q", s)
}

// OpeningHours holds the per-day opening hours strings.
type OpeningHours struct {
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
	Saturday  string `json:"saturday"`
	Sunday    string `json:"sunday"`
}

// Day returns the hours for the given weekday.
func (h OpeningHours) Day(d time.Weekday) string {
	switch d {
	case time.Monday:
		return h.Monday
	case time.Tuesday:
		return h.Tuesday
	case time.Wednesday:
		return h.Wednesday
	case time.Thursday:
		return h.Thursday
	case time.Friday:
		return h.Friday
	case time.Saturday:
		return h.Saturday
	default:
		return h.Sunday
	}
}

// WeekOrder is Monday through Sunday, the order hours are displayed in.
var WeekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// NormalizedPharmacy is a pharmacy joined to its postcode coordinates and
// reshaped into the canonical display schema.
type NormalizedPharmacy struct {
	Code             string       `json:"code"`
	Address          string       `json:"address"`
	OrganisationType string       `json:"organisation_type"`
	Region           string       `json:"region"`
	Hours            OpeningHours `json:"hours_by_day"`
	TotalHours       string       `json:"total_hours"`
	WeekdayStatus    Status       `json:"weekday_status"`
	SaturdayStatus   Status       `json:"saturday_status"`
	SundayStatus     Status       `json:"sunday_status"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
}

// StatusFor returns the activity flag for a day type.
func (p NormalizedPharmacy) StatusFor(day DayType) Status {
	switch day {
	case WeekendSaturday:
		return p.SaturdayStatus
	case WeekendSunday:
		return p.SundayStatus
	default:
		return p.WeekdayStatus
	}
}
