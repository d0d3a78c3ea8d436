package handler

import (
	"net/http"

	"github.com/trayananedelcheva/travel-buddy/internal/middleware"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
)

const placeNotFound = "place not found"

// SearchPlaces handles POST /api/places/search.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	var body PlaceSearchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	found, err := s.places.Search(r.Context(), middleware.OwnerFrom(r.Context()), places.Query{
		Text:      body.Query,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Radius:    body.Radius,
		Type:      body.Type,
	})
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(found))
}

// GetPlace handles GET /api/places/{id}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.places.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(p))
}

// GetPlaceByExternalID handles GET /api/places/external/{externalId}.
func (s *Server) GetPlaceByExternalID(w http.ResponseWriter, r *http.Request) {
	externalID, ok := pathString(w, r, "externalId")
	if !ok {
		return
	}
	p, err := s.places.GetByExternalID(r.Context(), externalID)
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placeToResponse(p))
}

// SearchPlacesByName handles GET /api/places?name=.
func (s *Server) SearchPlacesByName(w http.ResponseWriter, r *http.Request) {
	var name string
	if !queryParam(w, r, "name", true, &name) {
		return
	}
	ps, err := s.places.SearchByName(r.Context(), name)
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(ps))
}

// ListOpenPlaces handles GET /api/places/open.
func (s *Server) ListOpenPlaces(w http.ResponseWriter, r *http.Request) {
	ps, err := s.places.ListOpen(r.Context())
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(ps))
}

// ListRatedPlaces handles GET /api/places/rated?min=.
func (s *Server) ListRatedPlaces(w http.ResponseWriter, r *http.Request) {
	var min float64
	if !queryParam(w, r, "min", true, &min) {
		return
	}
	ps, err := s.places.ListByMinRating(r.Context(), min)
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(ps))
}

// GetPlaceIsOpen handles GET /api/places/{id}/is-open. "open" is null when
// the provider reported no hours.
func (s *Server) GetPlaceIsOpen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	open, err := s.places.IsOpen(r.Context(), id)
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*bool{"open": open})
}

// DeletePlace handles DELETE /api/places/{id}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.places.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSearchHistory handles GET /api/places/history?limit=.
func (s *Server) ListSearchHistory(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if !queryParam(w, r, "limit", false, &limit) {
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}
	recs, err := s.places.History(r.Context(), middleware.OwnerFrom(r.Context()), n)
	if err != nil {
		writeError(w, r, err, "history not found")
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(recs))
}
