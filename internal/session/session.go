// Package session holds the per-user upload state that drives map
// generation. A session moves through NoData, PharmacyLoaded or
// BoundaryLoaded, and Ready; Reset returns it to NoData.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// State is the upload progress of a session.
type State string

const (
	StateNoData         State = "no_data"
	StatePharmacyLoaded State = "pharmacy_loaded"
	StateBoundaryLoaded State = "boundary_loaded"
	StateReady          State = "ready"
)

// ErrNotReady is returned when a map is requested before both inputs are
// uploaded.
var ErrNotReady = errors.New("session needs both pharmacy data and a boundary file")

// Session is one user's inputs and isochrone selection.
type Session struct {
	ID         string
	Pharmacies []domain.NormalizedPharmacy
	Unmatched  []domain.UnmatchedPostcode
	Boundary   *geojson.FeatureCollection

	// Scenario is set once an isochrone map has been requested and stays set
	// until Reset, so later renders keep showing the isochrone view.
	Scenario *domain.Scenario

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an empty session with a random ID.
func New() *Session {
	now := domain.Now()
	return &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// State derives the state from which inputs are present.
func (s *Session) State() State {
	switch {
	case s.Pharmacies != nil && s.Boundary != nil:
		return StateReady
	case s.Pharmacies != nil:
		return StatePharmacyLoaded
	case s.Boundary != nil:
		return StateBoundaryLoaded
	default:
		return StateNoData
	}
}

// SetPharmacies stores a normalized pharmacy upload, replacing any previous one.
func (s *Session) SetPharmacies(res domain.NormalizeResult) {
	s.Pharmacies = res.Pharmacies
	if s.Pharmacies == nil {
		s.Pharmacies = []domain.NormalizedPharmacy{}
	}
	s.Unmatched = res.Unmatched
	s.touch()
}

// SetBoundary stores a parsed boundary, replacing any previous one.
func (s *Session) SetBoundary(fc *geojson.FeatureCollection) error {
	if fc == nil {
		return errors.New("boundary is nil")
	}
	s.Boundary = fc
	s.touch()
	return nil
}

// Trigger records an isochrone request. It requires a ready session.
func (s *Session) Trigger(sc domain.Scenario) error {
	if s.State() != StateReady {
		return ErrNotReady
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	s.Scenario = &sc
	s.touch()
	return nil
}

// Reset clears every input and the isochrone selection.
func (s *Session) Reset() {
	s.Pharmacies = nil
	s.Unmatched = nil
	s.Boundary = nil
	s.Scenario = nil
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = domain.Now()
}

// clone copies the session header and slices so callers cannot mutate the
// stored value. Feature collections are shared; they are never modified after
// upload.
func (s *Session) clone() *Session {
	c := *s
	if s.Pharmacies != nil {
		c.Pharmacies = append([]domain.NormalizedPharmacy(nil), s.Pharmacies...)
	}
	if s.Unmatched != nil {
		c.Unmatched = append([]domain.UnmatchedPostcode(nil), s.Unmatched...)
	}
	if s.Scenario != nil {
		sc := *s.Scenario
		c.Scenario = &sc
	}
	return &c
}
