package handler

import (
	"net/http"

	"github.com/trayananedelcheva/travel-buddy/internal/middleware"
)

// ValidateTrip handles POST /api/validation/trips/{id}.
func (s *Server) ValidateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	res, err := s.validation.Validate(r.Context(), middleware.OwnerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, validationToResponse(res))
}

// GetTripIsRecommended handles GET /api/validation/trips/{id}/is-recommended.
// The trip is evaluated on every call.
func (s *Server) GetTripIsRecommended(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	rec, err := s.validation.IsRecommended(r.Context(), middleware.OwnerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"recommended": rec})
}
