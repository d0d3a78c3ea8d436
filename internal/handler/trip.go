package handler

import (
	"net/http"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/middleware"
	"github.com/trayananedelcheva/travel-buddy/internal/service"
)

const tripNotFound = "trip not found"

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	details, err := s.trips.Create(r.Context(), middleware.OwnerFrom(r.Context()), service.CreateTripInput{
		Name:             body.Name,
		PlannedStartTime: *body.PlannedStartTime,
		PlannedEndTime:   body.PlannedEndTime,
		PlaceQueries:     body.PlaceSearchQueries,
		StartLatitude:    body.StartLatitude,
		StartLongitude:   body.StartLongitude,
	})
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, detailsToResponse(details))
}

// GetTrip handles GET /api/trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := s.trips.Get(r.Context(), middleware.OwnerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, detailsToResponse(details))
}

// ListTrips handles GET /api/trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if !queryParam(w, r, "page", false, &page) || !queryParam(w, r, "limit", false, &limit) {
		return
	}
	params := domain.NewPaginationParams(page, limit)
	trips, total, err := s.trips.List(r.Context(), middleware.OwnerFrom(r.Context()), params)
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, TripPage{
		Data: tripsToResponse(trips),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
			Pages: params.TotalPages(total),
		},
	})
}

// ListUpcomingTrips handles GET /api/trips/upcoming.
func (s *Server) ListUpcomingTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.Upcoming(r.Context(), middleware.OwnerFrom(r.Context()))
	s.writeTrips(w, r, trips, err)
}

// ListRecommendedTrips handles GET /api/trips/recommended.
func (s *Server) ListRecommendedTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.Recommended(r.Context(), middleware.OwnerFrom(r.Context()))
	s.writeTrips(w, r, trips, err)
}

// ListTripsByStatus handles GET /api/trips/status/{status}.
func (s *Server) ListTripsByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := pathString(w, r, "status")
	if !ok {
		return
	}
	trips, err := s.trips.ByStatus(r.Context(), middleware.OwnerFrom(r.Context()), status)
	s.writeTrips(w, r, trips, err)
}

// SearchTrips handles GET /api/trips/search?name=.
func (s *Server) SearchTrips(w http.ResponseWriter, r *http.Request) {
	var name string
	if !queryParam(w, r, "name", true, &name) {
		return
	}
	trips, err := s.trips.SearchByName(r.Context(), middleware.OwnerFrom(r.Context()), name)
	s.writeTrips(w, r, trips, err)
}

func (s *Server) writeTrips(w http.ResponseWriter, r *http.Request, trips []domain.Trip, err error) {
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tripsToResponse(trips))
}

// UpdateTripStatus handles PATCH /api/trips/{id}/status.
func (s *Server) UpdateTripStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body UpdateStatusRequest
	if !decodeBody(w, r, &body) {
		return
	}
	trip, err := s.trips.UpdateStatus(r.Context(), middleware.OwnerFrom(r.Context()), id, body.Status)
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// AddTripPlace handles POST /api/trips/{id}/places/{placeId}.
func (s *Server) AddTripPlace(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	placeID, ok := pathUUID(w, r, "placeId")
	if !ok {
		return
	}
	details, err := s.trips.AddPlace(r.Context(), middleware.OwnerFrom(r.Context()), tripID, placeID)
	if err != nil {
		writeError(w, r, err, "trip or place not found")
		return
	}
	writeJSON(w, http.StatusOK, detailsToResponse(details))
}

// RemoveTripPlace handles DELETE /api/trips/{id}/places/{placeId}.
func (s *Server) RemoveTripPlace(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	placeID, ok := pathUUID(w, r, "placeId")
	if !ok {
		return
	}
	details, err := s.trips.RemovePlace(r.Context(), middleware.OwnerFrom(r.Context()), tripID, placeID)
	if err != nil {
		writeError(w, r, err, "place is not on this trip")
		return
	}
	writeJSON(w, http.StatusOK, detailsToResponse(details))
}

// RefreshTripWeather handles POST /api/trips/{id}/refresh-weather.
func (s *Server) RefreshTripWeather(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := s.trips.RefreshWeather(r.Context(), middleware.OwnerFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	writeJSON(w, http.StatusOK, detailsToResponse(details))
}

// DeleteTrip handles DELETE /api/trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), middleware.OwnerFrom(r.Context()), id); err != nil {
		writeError(w, r, err, tripNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
