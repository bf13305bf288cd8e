package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// genericFailure is shown for errors that have no specific remediation.
const genericFailure = "Something went wrong. Please check the following: " +
	"1. The uploaded pharmacy data and boundary geojson file are in correct format. " +
	"2. The Mapbox API token is correct. " +
	"3. Try again."

// badRequest is a client mistake in the request parameters.
type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// classify maps an error to a status code and a message telling the user what
// to check. Detail is only exposed for errors caused by the request itself.
func classify(err error) (int, errorBody) {
	var (
		schemaErr *domain.SchemaError
		geomErr   *domain.MalformedGeometryError
		emptyErr  *domain.EmptyInputError
		extErr    *domain.ExternalServiceError
		sizeErr   *http.MaxBytesError
		reqErr    *badRequest
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "Session not found. Create a new session and upload the files again."}
	case errors.Is(err, session.ErrNotReady):
		return http.StatusConflict, errorBody{Error: "Upload both the pharmacy data and the boundary geojson file before creating a map.", Detail: err.Error()}
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, errorBody{Error: "Invalid request.", Detail: err.Error()}
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge, errorBody{Error: "The uploaded file is too large.", Detail: err.Error()}
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, errorBody{Error: "The uploaded pharmacy data is not in the expected format. Check the file is the pharmacy list CSV with all required columns.", Detail: err.Error()}
	case errors.As(err, &geomErr):
		return http.StatusUnprocessableEntity, errorBody{Error: "The boundary file could not be read. Check it is a valid geojson file.", Detail: err.Error()}
	case errors.As(err, &emptyErr):
		return http.StatusUnprocessableEntity, errorBody{Error: "None of the uploaded pharmacies could be placed on the map. Check the postcodes in the pharmacy data.", Detail: err.Error()}
	case errors.Is(err, domain.ErrIsochronesDisabled):
		return http.StatusServiceUnavailable, errorBody{Error: "Isochrone maps are not enabled on this server."}
	case errors.As(err, &extErr):
		return http.StatusBadGateway, errorBody{Error: "The travel-time service could not be reached. Check the Mapbox API token and network connection, then try again."}
	default:
		return http.StatusInternalServerError, errorBody{Error: genericFailure}
	}
}

// writeError is the single place request errors are turned into responses.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, body)
}
