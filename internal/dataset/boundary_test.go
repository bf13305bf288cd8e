package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lineStringCollection = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},` +
	`"geometry":{"type":"LineString","coordinates":[[-1.6,53.7],[-1.4,53.9]]}}]}`

const squarePolygon = `{"type":"Polygon","coordinates":[[[-1.6,53.7],[-1.4,53.7],[-1.4,53.9],[-1.6,53.9],[-1.6,53.7]]]}`

const polygonWithPoint = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":` + squarePolygon + `},` +
	`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[-1.5,53.8]}}]}`

func TestReadBoundary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		features int
	}{
		{
			name:     "feature collection",
			input:    `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"Leeds"},"geometry":` + squarePolygon + `},{"type":"Feature","properties":{},"geometry":` + squarePolygon + `}]}`,
			features: 2,
		},
		{
			name:     "single feature",
			input:    `{"type":"Feature","properties":{"name":"Leeds"},"geometry":` + squarePolygon + `}`,
			features: 1,
		},
		{
			name:     "bare geometry",
			input:    squarePolygon,
			features: 1,
		},
		{
			name:     "polygon with a marker point",
			input:    polygonWithPoint,
			features: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := ReadBoundary(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Len(t, fc.Features, tt.features)
			assert.Equal(t, "Polygon", fc.Features[0].Geometry.GeoJSONType())
		})
	}
}

func TestReadBoundary_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"not json":        "PK\x03\x04 shapefile bytes",
		"no type":         `{"features":[]}`,
		"no features":     `{"type":"FeatureCollection","features":[]}`,
		"null geometry":   `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":null}]}`,
		"unknown type":    `{"type":"Circle","coordinates":[0,0]}`,
		"truncated json":  `{"type":"FeatureCollection","features":[`,
		"point only":      `{"type":"Point","coordinates":[-1.5,53.8]}`,
		"linestring only": lineStringCollection,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadBoundary(strings.NewReader(input))
			require.Error(t, err)

			var geomErr *domain.MalformedGeometryError
			assert.True(t, errors.As(err, &geomErr), "got %T: %v", err, err)
		})
	}
}
