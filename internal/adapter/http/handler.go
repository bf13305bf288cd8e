package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/pna-map-generator/internal/dataset"
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/mapview"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/couchcryptid/pna-map-generator/internal/pipeline"
	"github.com/couchcryptid/pna-map-generator/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Handler serves the session API.
type Handler struct {
	store     *session.Store
	postcodes *domain.PostcodeIndex
	generator *pipeline.Generator
	maxUpload int64
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewHandler creates the session API handler.
func NewHandler(store *session.Store, postcodes *domain.PostcodeIndex, generator *pipeline.Generator, maxUpload int64, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		postcodes: postcodes,
		generator: generator,
		maxUpload: maxUpload,
		metrics:   metrics,
		logger:    logger,
	}
}

// Register adds the session routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", h.handleCreate)
	mux.HandleFunc("GET /sessions/{id}", h.handleGet)
	mux.HandleFunc("DELETE /sessions/{id}", h.handleReset)
	mux.HandleFunc("PUT /sessions/{id}/pharmacies", h.handleUploadPharmacies)
	mux.HandleFunc("GET /sessions/{id}/pharmacies", h.handleListPharmacies)
	mux.HandleFunc("PUT /sessions/{id}/boundary", h.handleUploadBoundary)
	mux.HandleFunc("GET /sessions/{id}/map", h.handleMap)
	mux.HandleFunc("POST /sessions/{id}/isochrones", h.handleIsochrones)
}

// CheckReadiness reports ready once the postcode table is loaded.
func (h *Handler) CheckReadiness(_ context.Context) error {
	if h.postcodes.Len() == 0 {
		return errors.New("postcode table is not loaded")
	}
	return nil
}

type sessionSummary struct {
	ID               string           `json:"id"`
	State            session.State    `json:"state"`
	Pharmacies       int              `json:"pharmacies"`
	Unmatched        int              `json:"unmatched"`
	BoundaryFeatures int              `json:"boundary_features"`
	Scenario         *domain.Scenario `json:"scenario,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func summarize(s *session.Session) sessionSummary {
	sum := sessionSummary{
		ID:         s.ID,
		State:      s.State(),
		Pharmacies: len(s.Pharmacies),
		Unmatched:  len(s.Unmatched),
		Scenario:   s.Scenario,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Boundary != nil {
		sum.BoundaryFeatures = len(s.Boundary.Features)
	}
	return sum
}

func (h *Handler) handleCreate(w http.ResponseWriter, _ *http.Request) {
	s := h.store.Create()
	h.logger.Info("session created", "session_id", s.ID)
	sharedobs.WriteJSON(w, http.StatusCreated, summarize(s))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summarize(s))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Update(r.PathValue("id"), func(s *session.Session) error {
		s.Reset()
		return nil
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("session reset", "session_id", s.ID)
	sharedobs.WriteJSON(w, http.StatusOK, summarize(s))
}

func (h *Handler) handleUploadPharmacies(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.Get(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	records, err := dataset.ReadPharmacyCSV(http.MaxBytesReader(w, r.Body, h.maxUpload))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	res := domain.Normalize(records, h.postcodes)
	h.metrics.PharmaciesNormalized.Add(float64(len(res.Pharmacies)))
	h.metrics.PostcodesUnmatched.Add(float64(len(res.Unmatched)))
	if len(res.Unmatched) > 0 {
		h.logger.Warn("pharmacies dropped for unknown postcodes",
			"session_id", id,
			"dropped", len(res.Unmatched),
			"kept", len(res.Pharmacies),
		)
	}

	s, err := h.store.Update(id, func(s *session.Session) error {
		s.SetPharmacies(res)
		return nil
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	unmatched := res.Unmatched
	if unmatched == nil {
		unmatched = []domain.UnmatchedPostcode{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"state":     s.State(),
		"count":     len(res.Pharmacies),
		"unmatched": unmatched,
	})
}

func (h *Handler) handleListPharmacies(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if s.Pharmacies == nil {
		writeError(w, h.logger, fmt.Errorf("no pharmacy data uploaded: %w", session.ErrNotReady))
		return
	}
	unmatched := s.Unmatched
	if unmatched == nil {
		unmatched = []domain.UnmatchedPostcode{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"pharmacies": s.Pharmacies,
		"unmatched":  unmatched,
	})
}

func (h *Handler) handleUploadBoundary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.Get(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	fc, err := dataset.ReadBoundary(http.MaxBytesReader(w, r.Body, h.maxUpload))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	s, err := h.store.Update(id, func(s *session.Session) error {
		return s.SetBoundary(fc)
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"state":    s.State(),
		"features": len(fc.Features),
	})
}

// handleMap renders the coverage map, or the isochrone map once one has been
// requested for the session.
func (h *Handler) handleMap(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if s.State() != session.StateReady {
		writeError(w, h.logger, session.ErrNotReady)
		return
	}

	in := pipeline.Input{SessionID: s.ID, Pharmacies: s.Pharmacies, Boundary: s.Boundary}
	var (
		m     *mapview.Map
		title = "Pharmacy map"
	)
	if s.Scenario != nil {
		title = "Pharmacy isochrone map"
		m, _, err = h.generator.IsochroneMap(r.Context(), in, *s.Scenario)
	} else {
		m, _, err = h.generator.CoverageMap(r.Context(), in)
	}
	if err == nil {
		// Viewing counts as activity for the idle sweeper.
		if terr := h.store.Touch(s.ID); terr != nil {
			h.logger.Debug("session touch failed", "session_id", s.ID, "error", terr)
		}
	}
	h.writeMap(w, title, m, err)
}

// handleIsochrones records the scenario on the session and renders the
// isochrone map. Missing parameters take the default scenario values.
func (h *Handler) handleIsochrones(w http.ResponseWriter, r *http.Request) {
	sc, err := parseScenario(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !h.generator.IsochronesEnabled() {
		writeError(w, h.logger, &domain.ExternalServiceError{Service: "isochrone", Err: domain.ErrIsochronesDisabled})
		return
	}

	s, err := h.store.Update(r.PathValue("id"), func(s *session.Session) error {
		return s.Trigger(sc)
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	in := pipeline.Input{SessionID: s.ID, Pharmacies: s.Pharmacies, Boundary: s.Boundary}
	m, _, err := h.generator.IsochroneMap(r.Context(), in, sc)
	h.writeMap(w, "Pharmacy isochrone map", m, err)
}

func (h *Handler) writeMap(w http.ResponseWriter, title string, m *mapview.Map, err error) {
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := mapview.Render(&buf, title, m); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client may have gone away
}

func parseScenario(r *http.Request) (domain.Scenario, error) {
	sc := domain.DefaultScenario()
	q := r.URL.Query()

	if v := q.Get("day"); v != "" {
		day, err := domain.ParseDayType(v)
		if err != nil {
			return sc, &badRequest{err: err}
		}
		sc.Day = day
	}
	if v := q.Get("mode"); v != "" {
		mode, err := domain.ParseTravelMode(v)
		if err != nil {
			return sc, &badRequest{err: err}
		}
		sc.Mode = mode
	}
	if v := q.Get("minutes"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return sc, &badRequest{err: fmt.Errorf("minutes: %w", err)}
		}
		sc.Minutes = minutes
	}
	if err := sc.Validate(); err != nil {
		return sc, &badRequest{err: err}
	}
	return sc, nil
}
