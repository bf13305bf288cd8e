// Package domain models community pharmacy data used for Pharmaceutical Needs
// Assessment (PNA) coverage mapping.
//
// # Data Source
//
// Pharmacy datasets are NHS Business Services Authority exports of the
// pharmacy contract list, uploaded as CSV. One row describes one dispensing
// site. Coordinates are not part of the export; they come from a bundled UK
// postcode table (ukpostcodes.csv.gz) joined on the POST_CODE column.
//
// # Column Conventions
//
// Address:
//
//	ORGANISATION_NAME, ADDRESS_FIELD_1..ADDRESS_FIELD_4, POST_CODE
//	are concatenated with "," into a single display address. Blank fields are
//	skipped, so "Boots", "", "High Street" yields "Boots,High Street".
//
// Opening hours:
//
//	PHARMACY_OPENING_HOURS_<DAY> holds a free-text range such as
//	"09:00-18:00" or the literal "Closed". Weekday closures are not modelled;
//	only Saturday and Sunday derive an Opened/Closed status.
//
// Site code:
//
//	PHARMACY_ODS_CODE__F_CODE_ is the ODS "F code" (e.g. "FA123"). It is an
//	identifier and is never case-transformed. Every other text field is
//	title-cased for display.
//
// Region:
//
//	HEALTH_AND_WELLBEING_BOARD is the local authority grouping used to colour
//	markers. Colours are assigned in first-seen order from a fixed palette
//	and wrap around when there are more regions than colours.
//
// # Isochrones
//
// Travel-time polygons are computed by an external routing provider and
// treated as opaque GeoJSON feature collections. Results are keyed
// "<mode>_<minutes>mins" (e.g. "driving_20mins"). A site that is closed on the
// selected day type receives an empty collection instead of a provider call.
package domain
