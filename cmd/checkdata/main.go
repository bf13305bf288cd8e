// Command checkdata checks a pharmacy list and boundary file before they are
// uploaded: required columns, postcode coverage, duplicate site codes, and
// pharmacies that fall outside the boundary.
//
// Usage:
//
//	go run ./cmd/checkdata \
//	  -pharmacies data/pharmacies.csv \
//	  -postcodes data/ukpostcodes.csv.gz \
//	  -boundary data/boundary.geojson
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/pna-map-generator/internal/dataset"
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// phase tracks pass/fail for a check phase. Notes are printed but do not fail
// the phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	pharmacies := flag.String("pharmacies", "", "pharmacy list CSV")
	postcodes := flag.String("postcodes", "data/ukpostcodes.csv.gz", "gzipped postcode table")
	boundary := flag.String("boundary", "", "boundary GeoJSON file (optional)")
	flag.Parse()

	if *pharmacies == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *pharmacies, *postcodes, *boundary); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, pharmacyPath, postcodePath, boundaryPath string) int {
	fmt.Fprintln(w, "=== Pharmacy Data Check ===")
	fmt.Fprintln(w)

	postcodes, stats, err := dataset.LoadPostcodes(postcodePath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load postcode table: %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "Postcode table: %d postcodes (%d rows skipped)\n", postcodes.Len(), stats.Skipped)

	records, schema := checkSchema(pharmacyPath)
	phases := []*phase{schema}
	var res domain.NormalizeResult
	if schema.passed() {
		res = domain.Normalize(records, postcodes)
		phases = append(phases, checkPostcodes(records, res), checkFields(records))
	}
	if boundaryPath != "" {
		phases = append(phases, checkBoundary(boundaryPath, res.Pharmacies))
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d in CSV, %d mappable\n", len(records), len(res.Pharmacies))

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(w, "  Note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nCheck FAILED.")
	return 1
}

func checkSchema(path string) ([]domain.RawPharmacyRecord, *phase) {
	p := &phase{name: "Phase 1: Schema (required columns)"}
	f, err := os.Open(path)
	if err != nil {
		p.errorf("open pharmacy data: %v", err)
		return nil, p
	}
	defer f.Close()

	records, err := dataset.ReadPharmacyCSV(f)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}
	if len(records) == 0 {
		p.errorf("no data rows")
	}
	return records, p
}

func checkPostcodes(records []domain.RawPharmacyRecord, res domain.NormalizeResult) *phase {
	p := &phase{name: "Phase 2: Postcode Join"}
	for _, u := range res.Unmatched {
		p.errorf("%s: postcode %q not in postcode table", u.Code, u.Postcode)
	}
	if len(records) > 0 {
		p.notef("%d of %d pharmacies matched (%.1f%%)",
			len(res.Pharmacies), len(records), 100*float64(len(res.Pharmacies))/float64(len(records)))
	}
	return p
}

func checkFields(records []domain.RawPharmacyRecord) *phase {
	p := &phase{name: "Phase 3: Field Integrity"}
	seen := make(map[string]int, len(records))
	for i, r := range records {
		row := i + 2
		if r.SiteCode == "" {
			p.errorf("row %d: blank site code", row)
			continue
		}
		if first, ok := seen[r.SiteCode]; ok {
			p.errorf("row %d: site code %s duplicates row %d", row, r.SiteCode, first)
		} else {
			seen[r.SiteCode] = row
		}
		if r.HealthBoard == "" {
			p.notef("row %d (%s): blank health and wellbeing board", row, r.SiteCode)
		}
	}
	return p
}

func checkBoundary(path string, pharmacies []domain.NormalizedPharmacy) *phase {
	p := &phase{name: "Phase 4: Boundary"}
	f, err := os.Open(path)
	if err != nil {
		p.errorf("open boundary: %v", err)
		return p
	}
	defer f.Close()

	fc, err := dataset.ReadBoundary(f)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.notef("%d feature(s)", len(fc.Features))

	outside := 0
	for _, ph := range pharmacies {
		if !contains(fc, orb.Point{ph.Longitude, ph.Latitude}) {
			outside++
			p.notef("%s lies outside the boundary", ph.Code)
		}
	}
	if outside > 0 {
		p.notef("%d of %d pharmacies outside the boundary", outside, len(pharmacies))
	}
	return p
}

func contains(fc *geojson.FeatureCollection, pt orb.Point) bool {
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return true
			}
		}
	}
	return false
}
