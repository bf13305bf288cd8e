package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIsochronesDisabled is returned when an isochrone map is requested but no
// routing provider is configured.
var ErrIsochronesDisabled = errors.New("isochrone provider is not configured")

// SchemaError reports required input columns that are absent.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// EmptyInputError reports that there is no data to build a map from.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no %s to map", e.What)
}

// ExternalServiceError wraps a routing provider failure.
type ExternalServiceError struct {
	Service    string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// MalformedGeometryError reports a boundary file that is not usable GeoJSON.
type MalformedGeometryError struct {
	Err error
}

func (e *MalformedGeometryError) Error() string {
	return fmt.Sprintf("malformed boundary geometry: %v", e.Err)
}

func (e *MalformedGeometryError) Unwrap() error { return e.Err }

// UnmatchedPostcode identifies a pharmacy dropped because its postcode is not
// in the postcode table.
type UnmatchedPostcode struct {
	Code     string `json:"code"`
	Postcode string `json:"postcode"`
}
