package domain

import "time"

// Map kinds recorded in coverage reports and metrics.
const (
	KindCoverage  = "coverage"
	KindIsochrone = "isochrone"
)

// CoverageReport summarises one generated map for downstream analytics.
type CoverageReport struct {
	SessionID      string    `json:"session_id"`
	Kind           string    `json:"kind"`
	Day            DayType   `json:"day,omitempty"`
	Mode           string    `json:"mode,omitempty"`
	Minutes        int       `json:"minutes,omitempty"`
	Pharmacies     int       `json:"pharmacies"`
	Open           int       `json:"open"`
	Regions        int       `json:"regions"`
	Polygons       int       `json:"polygons"`
	FailedRequests int       `json:"failed_requests"`
	GeneratedAt    time.Time `json:"generated_at"`
}
