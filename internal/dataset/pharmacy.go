// Package dataset reads the three input files the map generator works from:
// the pharmacy list, the postcode reference table and the boundary GeoJSON.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
)

const pharmacySource = "pharmacy data"

// pharmacyColumns binds each required NHSBSA column to its record field.
var pharmacyColumns = []struct {
	name string
	set  func(*domain.RawPharmacyRecord, string)
}{
	{"ORGANISATION_NAME", func(r *domain.RawPharmacyRecord, v string) { r.OrganisationName = v }},
	{"ADDRESS_FIELD_1", func(r *domain.RawPharmacyRecord, v string) { r.Address1 = v }},
	{"ADDRESS_FIELD_2", func(r *domain.RawPharmacyRecord, v string) { r.Address2 = v }},
	{"ADDRESS_FIELD_3", func(r *domain.RawPharmacyRecord, v string) { r.Address3 = v }},
	{"ADDRESS_FIELD_4", func(r *domain.RawPharmacyRecord, v string) { r.Address4 = v }},
	{"POST_CODE", func(r *domain.RawPharmacyRecord, v string) { r.Postcode = v }},
	{"PHARMACY_OPENING_HOURS_MONDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursMonday = v }},
	{"PHARMACY_OPENING_HOURS_TUESDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursTuesday = v }},
	{"PHARMACY_OPENING_HOURS_WEDNESDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursWednesday = v }},
	{"PHARMACY_OPENING_HOURS_THURSDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursThursday = v }},
	{"PHARMACY_OPENING_HOURS_FRIDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursFriday = v }},
	{"PHARMACY_OPENING_HOURS_SATURDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursSaturday = v }},
	{"PHARMACY_OPENING_HOURS_SUNDAY", func(r *domain.RawPharmacyRecord, v string) { r.HoursSunday = v }},
	{"WEEKLY_TOTAL", func(r *domain.RawPharmacyRecord, v string) { r.WeeklyTotal = v }},
	{"CONTRACT_TYPE", func(r *domain.RawPharmacyRecord, v string) { r.ContractType = v }},
	{"HEALTH_AND_WELLBEING_BOARD", func(r *domain.RawPharmacyRecord, v string) { r.HealthBoard = v }},
	{"PHARMACY_ODS_CODE__F_CODE_", func(r *domain.RawPharmacyRecord, v string) { r.SiteCode = v }},
}

// PharmacyColumns returns the header names a pharmacy CSV must contain.
func PharmacyColumns() []string {
	names := make([]string, len(pharmacyColumns))
	for i, c := range pharmacyColumns {
		names[i] = c.name
	}
	return names
}

// ReadPharmacyCSV parses an NHSBSA pharmacy list. Columns are matched by
// header name and extra columns are ignored. A header missing any required
// column yields a *domain.SchemaError listing all of them.
func ReadPharmacyCSV(r io.Reader) ([]domain.RawPharmacyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.SchemaError{Source: pharmacySource, Missing: PharmacyColumns()}
	}
	if err != nil {
		return nil, fmt.Errorf("read pharmacy header: %w", err)
	}

	index := headerIndex(header)
	cols := make([]int, len(pharmacyColumns))
	var missing []string
	for i, c := range pharmacyColumns {
		j, ok := index[c.name]
		if !ok {
			missing = append(missing, c.name)
			continue
		}
		cols[i] = j
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Source: pharmacySource, Missing: missing}
	}

	var records []domain.RawPharmacyRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pharmacy row %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}

		var rec domain.RawPharmacyRecord
		for i, c := range pharmacyColumns {
			c.set(&rec, field(row, cols[i]))
		}
		records = append(records, rec)
	}
	return records, nil
}

// headerIndex maps trimmed header names to their column position. A UTF-8
// byte order mark on the first cell is dropped.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
