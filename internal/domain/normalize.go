package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field names a canonical NormalizedPharmacy text field.
type Field string

const (
	FieldCode             Field = "code"
	FieldAddress          Field = "address"
	FieldOrganisationType Field = "organisation_type"
	FieldRegion           Field = "region"
	FieldHoursMonday      Field = "hours_monday"
	FieldHoursTuesday     Field = "hours_tuesday"
	FieldHoursWednesday   Field = "hours_wednesday"
	FieldHoursThursday    Field = "hours_thursday"
	FieldHoursFriday      Field = "hours_friday"
	FieldHoursSaturday    Field = "hours_saturday"
	FieldHoursSunday      Field = "hours_sunday"
	FieldTotalHours       Field = "total_hours"
)

// Transform rewrites a single field value.
type Transform func(string) string

// Verbatim returns the value unchanged.
func Verbatim(s string) string { return s }

// TitleCase upper-cases the first letter of each word and lower-cases the
// rest. Applying it twice yields the same string as applying it once.
func TitleCase(s string) string {
	// cases.Caser is stateful, so one per call.
	return cases.Title(language.English).String(s)
}

// fieldTransforms is applied to every normalized record. The site code is an
// identifier and must survive untouched.
var fieldTransforms = map[Field]Transform{
	FieldCode:             Verbatim,
	FieldAddress:          TitleCase,
	FieldOrganisationType: TitleCase,
	FieldRegion:           TitleCase,
	FieldHoursMonday:      TitleCase,
	FieldHoursTuesday:     TitleCase,
	FieldHoursWednesday:   TitleCase,
	FieldHoursThursday:    TitleCase,
	FieldHoursFriday:      TitleCase,
	FieldHoursSaturday:    TitleCase,
	FieldHoursSunday:      TitleCase,
	FieldTotalHours:       TitleCase,
}

// ApplyTransform runs the configured transform for a field. Fields without an
// entry pass through unchanged.
func ApplyTransform(f Field, value string) string {
	if t, ok := fieldTransforms[f]; ok {
		return t(value)
	}
	return value
}

// NormalizeResult is the output of Normalize.
type NormalizeResult struct {
	Pharmacies []NormalizedPharmacy
	Unmatched  []UnmatchedPostcode
}

// Normalize joins raw records to the postcode index and reshapes matched
// records into the canonical schema. Output order follows input order.
// Records whose postcode is not in the index are left out of Pharmacies and
// listed in Unmatched.
func Normalize(records []RawPharmacyRecord, postcodes *PostcodeIndex) NormalizeResult {
	res := NormalizeResult{Pharmacies: make([]NormalizedPharmacy, 0, len(records))}
	for _, rec := range records {
		coord, ok := postcodes.Lookup(rec.Postcode)
		if !ok {
			res.Unmatched = append(res.Unmatched, UnmatchedPostcode{Code: rec.SiteCode, Postcode: rec.Postcode})
			continue
		}
		res.Pharmacies = append(res.Pharmacies, normalizeRecord(rec, coord))
	}
	return res
}

func normalizeRecord(rec RawPharmacyRecord, coord Coordinate) NormalizedPharmacy {
	p := NormalizedPharmacy{
		Code:             ApplyTransform(FieldCode, rec.SiteCode),
		Address:          ApplyTransform(FieldAddress, ConcatAddress(rec)),
		OrganisationType: ApplyTransform(FieldOrganisationType, rec.ContractType),
		Region:           ApplyTransform(FieldRegion, rec.HealthBoard),
		Hours: OpeningHours{
			Monday:    ApplyTransform(FieldHoursMonday, rec.HoursMonday),
			Tuesday:   ApplyTransform(FieldHoursTuesday, rec.HoursTuesday),
			Wednesday: ApplyTransform(FieldHoursWednesday, rec.HoursWednesday),
			Thursday:  ApplyTransform(FieldHoursThursday, rec.HoursThursday),
			Friday:    ApplyTransform(FieldHoursFriday, rec.HoursFriday),
			Saturday:  ApplyTransform(FieldHoursSaturday, rec.HoursSaturday),
			Sunday:    ApplyTransform(FieldHoursSunday, rec.HoursSunday),
		},
		TotalHours: ApplyTransform(FieldTotalHours, rec.WeeklyTotal),
		Latitude:   coord.Lat,
		Longitude:  coord.Lon,
	}
	// Status is derived after casing so "CLOSED" and "closed" count too.
	p.WeekdayStatus = StatusOpened
	p.SaturdayStatus = activity(p.Hours.Saturday)
	p.SundayStatus = activity(p.Hours.Sunday)
	return p
}

func activity(hours string) Status {
	if hours == string(StatusClosed) {
		return StatusClosed
	}
	return StatusOpened
}

// ConcatAddress joins the organisation name, address lines and postcode with
// commas, skipping blank fields.
func ConcatAddress(rec RawPharmacyRecord) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{rec.OrganisationName, rec.Address1, rec.Address2, rec.Address3, rec.Address4, rec.Postcode} {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}
