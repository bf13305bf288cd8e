package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "PHARMACY_ODS_CODE__F_CODE_,ORGANISATION_NAME,ADDRESS_FIELD_1,ADDRESS_FIELD_2,ADDRESS_FIELD_3,ADDRESS_FIELD_4,POST_CODE," +
	"PHARMACY_OPENING_HOURS_MONDAY,PHARMACY_OPENING_HOURS_TUESDAY,PHARMACY_OPENING_HOURS_WEDNESDAY,PHARMACY_OPENING_HOURS_THURSDAY," +
	"PHARMACY_OPENING_HOURS_FRIDAY,PHARMACY_OPENING_HOURS_SATURDAY,PHARMACY_OPENING_HOURS_SUNDAY,WEEKLY_TOTAL,CONTRACT_TYPE,HEALTH_AND_WELLBEING_BOARD\n"

const boundary = `{"type":"Polygon","coordinates":[[[-2.0,53.5],[-1.2,53.5],[-1.2,54.0],[-2.0,54.0],[-2.0,53.5]]]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writePostcodes(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "postcodes.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("postcode,latitude,longitude\nLS1 1AA,53.8,-1.5\nYO1 1AA,53.96,-1.08\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestRun_AllPass(t *testing.T) {
	dir := t.TempDir()
	pharmacies := writeFile(t, dir, "p.csv", header+
		"FA123,BOOTS,1 HIGH STREET,,LEEDS,,LS1 1AA,9-5,9-5,9-5,9-5,9-5,9-1,CLOSED,46,COMMUNITY PHARMACY,LEEDS\n")

	var out bytes.Buffer
	code := run(&out, pharmacies, writePostcodes(t, dir), writeFile(t, dir, "b.geojson", boundary))

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All checks passed.")
	assert.Contains(t, out.String(), "1 of 1 pharmacies matched (100.0%)")
	assert.NotContains(t, out.String(), "outside the boundary")
}

func TestRun_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	pharmacies := writeFile(t, dir, "p.csv", header+
		"FA123,BOOTS,1 HIGH STREET,,LEEDS,,LS1 1AA,9-5,9-5,9-5,9-5,9-5,9-1,CLOSED,46,COMMUNITY PHARMACY,LEEDS\n"+
		"FA123,BOOTS,2 HIGH STREET,,LEEDS,,ZZ9 9ZZ,9-5,9-5,9-5,9-5,9-5,9-1,CLOSED,46,COMMUNITY PHARMACY,LEEDS\n"+
		"FY999,WELL,1 STONEGATE,,YORK,,YO1 1AA,9-5,9-5,9-5,9-5,9-5,9-1,CLOSED,46,COMMUNITY PHARMACY,\n")

	var out bytes.Buffer
	code := run(&out, pharmacies, writePostcodes(t, dir), writeFile(t, dir, "b.geojson", boundary))

	assert.Equal(t, 1, code)
	s := out.String()
	assert.Contains(t, s, `FA123: postcode "ZZ9 9ZZ" not in postcode table`)
	assert.Contains(t, s, "row 3: site code FA123 duplicates row 2")
	assert.Contains(t, s, "row 4 (FY999): blank health and wellbeing board")
	assert.Contains(t, s, "FY999 lies outside the boundary")
	assert.Contains(t, s, "Check FAILED.")
}

func TestRun_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	pharmacies := writeFile(t, dir, "p.csv", "ORGANISATION_NAME,POST_CODE\nBOOTS,LS1 1AA\n")

	var out bytes.Buffer
	code := run(&out, pharmacies, writePostcodes(t, dir), "")

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "missing required columns")
	assert.NotContains(t, out.String(), "Phase 2")
}

func TestRun_MissingPostcodeTable(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, "p.csv", filepath.Join(t.TempDir(), "nope.csv.gz"), "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL")
}

func TestContains(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.MultiPolygon{square}))

	assert.True(t, contains(fc, orb.Point{0.5, 0.5}))
	assert.False(t, contains(fc, orb.Point{2, 2}))
}
