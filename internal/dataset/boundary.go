package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadBoundary parses a boundary GeoJSON document. A FeatureCollection is
// used as is; a bare Feature or Geometry is wrapped into a collection. Any
// parse failure, or a document without polygons, is a
// *domain.MalformedGeometryError. Non-polygon features are allowed alongside
// at least one Polygon or MultiPolygon.
func ReadBoundary(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read boundary: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &domain.MalformedGeometryError{Err: errors.New("empty document")}
	}

	fc, err := decodeBoundary(data)
	if err != nil {
		return nil, &domain.MalformedGeometryError{Err: err}
	}
	if len(fc.Features) == 0 {
		return nil, &domain.MalformedGeometryError{Err: errors.New("no features")}
	}
	polygons := 0
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			return nil, &domain.MalformedGeometryError{Err: fmt.Errorf("feature %d has no geometry", i)}
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			polygons++
		}
	}
	if polygons == 0 {
		return nil, &domain.MalformedGeometryError{Err: errors.New("no polygon or multipolygon features")}
	}
	return fc, nil
}

func decodeBoundary(data []byte) (*geojson.FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case "FeatureCollection":
		return geojson.UnmarshalFeatureCollection(data)
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	case "":
		return nil, errors.New("missing GeoJSON type")
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return fc, nil
	default:
		return nil, fmt.Errorf("unsupported GeoJSON type %q", probe.Type)
	}
}
