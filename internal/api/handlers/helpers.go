package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/platform/obs"
)

// Upper bound on accepted request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses. Upstream
// outages (geocoder transport, routing) are 502; unknown postcodes are 422.
// Store failures are logged and reported without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		ve *domain.ValidationError
		ge *domain.GeocodingError
		re *domain.RoutingError
	)

	switch {
	case errors.As(err, &ve):
		writeError(w, r, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ge) && len(ge.Missing) == 0:
		logger.Warn(op+" geocoding unavailable", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusBadGateway, "geocoding service unavailable")
	case errors.As(err, &ge):
		writeError(w, r, http.StatusUnprocessableEntity, ge.Error())
	case errors.As(err, &re):
		writeError(w, r, http.StatusBadGateway, re.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		logger.Error(op+" failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
