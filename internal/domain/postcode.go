package domain

import "strings"

// PostcodeEntry is one row of the postcode reference table.
type PostcodeEntry struct {
	Postcode  string
	Latitude  float64
	Longitude float64
}

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// PostcodeIndex is an immutable postcode to coordinate lookup. It is built
// once at startup and safe for concurrent reads.
type PostcodeIndex struct {
	entries map[string]Coordinate
}

// NewPostcodeIndex indexes entries by postcode. The first entry wins when a
// postcode appears more than once.
func NewPostcodeIndex(entries []PostcodeEntry) *PostcodeIndex {
	idx := &PostcodeIndex{entries: make(map[string]Coordinate, len(entries))}
	for _, e := range entries {
		key := strings.TrimSpace(e.Postcode)
		if key == "" {
			continue
		}
		if _, ok := idx.entries[key]; ok {
			continue
		}
		idx.entries[key] = Coordinate{Lat: e.Latitude, Lon: e.Longitude}
	}
	return idx
}

// Lookup returns the coordinate for an exact postcode match.
func (i *PostcodeIndex) Lookup(postcode string) (Coordinate, bool) {
	if i == nil {
		return Coordinate{}, false
	}
	c, ok := i.entries[strings.TrimSpace(postcode)]
	return c, ok
}

// Len returns the number of indexed postcodes.
func (i *PostcodeIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}
