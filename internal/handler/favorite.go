package handler

import (
	"net/http"

	"github.com/trayananedelcheva/travel-buddy/internal/middleware"
)

// ListFavorites handles GET /api/favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ps, err := s.favorites.List(r.Context(), middleware.OwnerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, placesToResponse(ps))
}

// CountFavorites handles GET /api/favorites/count.
func (s *Server) CountFavorites(w http.ResponseWriter, r *http.Request) {
	n, err := s.favorites.Count(r.Context(), middleware.OwnerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// AddFavorite handles POST /api/favorites/{placeId}.
func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	placeID, ok := pathUUID(w, r, "placeId")
	if !ok {
		return
	}
	if err := s.favorites.Add(r.Context(), middleware.OwnerFrom(r.Context()), placeID); err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /api/favorites/{placeId}.
func (s *Server) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	placeID, ok := pathUUID(w, r, "placeId")
	if !ok {
		return
	}
	if err := s.favorites.Remove(r.Context(), middleware.OwnerFrom(r.Context()), placeID); err != nil {
		writeError(w, r, err, "favorite not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckFavorite handles GET /api/favorites/{placeId}/check.
func (s *Server) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	placeID, ok := pathUUID(w, r, "placeId")
	if !ok {
		return
	}
	fav, err := s.favorites.IsFavorite(r.Context(), middleware.OwnerFrom(r.Context()), placeID)
	if err != nil {
		writeError(w, r, err, placeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
}
