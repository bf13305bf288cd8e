package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/klauspost/compress/gzip"
)

const postcodeSource = "postcode table"

// PostcodeStats summarises a postcode table load.
type PostcodeStats struct {
	Rows    int // data rows read
	Skipped int // rows with a blank postcode or unparsable coordinates
}

// LoadPostcodes opens and reads a gzip-compressed postcode table.
func LoadPostcodes(path string) (*domain.PostcodeIndex, PostcodeStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, PostcodeStats{}, fmt.Errorf("open postcode table: %w", err)
	}
	defer f.Close()
	return ReadPostcodes(f)
}

// ReadPostcodes decompresses and indexes a postcode,latitude,longitude CSV.
// Any other columns (such as id) are ignored.
func ReadPostcodes(r io.Reader) (*domain.PostcodeIndex, PostcodeStats, error) {
	var stats PostcodeStats

	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, stats, fmt.Errorf("decompress postcode table: %w", err)
	}
	defer zr.Close()

	cr := csv.NewReader(zr)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("read postcode header: %w", err)
	}

	index := headerIndex(header)
	var missing []string
	cols := make(map[string]int, 3)
	for _, name := range []string{"postcode", "latitude", "longitude"} {
		j, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = j
	}
	if len(missing) > 0 {
		return nil, stats, &domain.SchemaError{Source: postcodeSource, Missing: missing}
	}

	var entries []domain.PostcodeEntry
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read postcode row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		pc := field(row, cols["postcode"])
		lat, latErr := strconv.ParseFloat(field(row, cols["latitude"]), 64)
		lon, lonErr := strconv.ParseFloat(field(row, cols["longitude"]), 64)
		if pc == "" || latErr != nil || lonErr != nil {
			stats.Skipped++
			continue
		}
		entries = append(entries, domain.PostcodeEntry{Postcode: pc, Latitude: lat, Longitude: lon})
	}

	return domain.NewPostcodeIndex(entries), stats, nil
}
