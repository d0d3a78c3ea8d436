// Package handler implements the HTTP handlers for the Travel Buddy API.
// All handlers are methods on Server. Methods are split into resource files
// (place.go, trip.go, ...) but share the same Server struct so they can reach
// its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
	"github.com/trayananedelcheva/travel-buddy/internal/service"
)

// PlaceServicer defines the place operations the handlers depend on.
// Interfaces live here, in the consumer package, so handler tests can inject
// mocks without a database or provider.
type PlaceServicer interface {
	Search(ctx context.Context, ownerID string, q places.Query) ([]domain.Place, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error)
	GetByExternalID(ctx context.Context, externalID string) (domain.Place, error)
	SearchByName(ctx context.Context, name string) ([]domain.Place, error)
	ListOpen(ctx context.Context) ([]domain.Place, error)
	ListByMinRating(ctx context.Context, min float64) ([]domain.Place, error)
	IsOpen(ctx context.Context, id uuid.UUID) (*bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error)
}

// TripServicer defines the trip operations the handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, ownerID string, in service.CreateTripInput) (domain.TripDetails, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error)
	List(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Upcoming(ctx context.Context, ownerID string) ([]domain.Trip, error)
	Recommended(ctx context.Context, ownerID string) ([]domain.Trip, error)
	ByStatus(ctx context.Context, ownerID, status string) ([]domain.Trip, error)
	SearchByName(ctx context.Context, ownerID, name string) ([]domain.Trip, error)
	UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status string) (domain.Trip, error)
	AddPlace(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error)
	RemovePlace(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error)
	RefreshWeather(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// ValidationServicer defines the feasibility operations the handlers depend on.
type ValidationServicer interface {
	Validate(ctx context.Context, ownerID string, tripID uuid.UUID) (domain.ValidationResult, error)
	IsRecommended(ctx context.Context, ownerID string, tripID uuid.UUID) (bool, error)
}

// FavoriteServicer defines the favourite operations the handlers depend on.
type FavoriteServicer interface {
	Add(ctx context.Context, ownerID string, placeID uuid.UUID) error
	Remove(ctx context.Context, ownerID string, placeID uuid.UUID) error
	List(ctx context.Context, ownerID string) ([]domain.Place, error)
	IsFavorite(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error)
	Count(ctx context.Context, ownerID string) (int64, error)
}

// Services bundles the dependencies of Server.
type Services struct {
	Places     PlaceServicer
	Trips      TripServicer
	Validation ValidationServicer
	Favorites  FavoriteServicer
}

// Server serves the HTTP API.
type Server struct {
	places     PlaceServicer
	trips      TripServicer
	validation ValidationServicer
	favorites  FavoriteServicer
	openAPI    []byte
}

// NewServer constructs the Server with all its dependencies. openAPI is the
// document served at /openapi.yaml.
func NewServer(svc Services, openAPI []byte) *Server {
	return &Server{
		places:     svc.Places,
		trips:      svc.Trips,
		validation: svc.Validation,
		favorites:  svc.Favorites,
		openAPI:    openAPI,
	}
}

// Handler returns the API router. identity guards everything under /api and
// must store the caller's owner id for middleware.OwnerFrom.
func (s *Server) Handler(identity func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Use(identity)

		r.Post("/places/search", s.SearchPlaces)
		r.Get("/places", s.SearchPlacesByName)
		r.Get("/places/open", s.ListOpenPlaces)
		r.Get("/places/rated", s.ListRatedPlaces)
		r.Get("/places/history", s.ListSearchHistory)
		r.Get("/places/external/{externalId}", s.GetPlaceByExternalID)
		r.Get("/places/{id}", s.GetPlace)
		r.Get("/places/{id}/is-open", s.GetPlaceIsOpen)
		r.Delete("/places/{id}", s.DeletePlace)

		r.Post("/trips", s.CreateTrip)
		r.Get("/trips", s.ListTrips)
		r.Get("/trips/upcoming", s.ListUpcomingTrips)
		r.Get("/trips/recommended", s.ListRecommendedTrips)
		r.Get("/trips/search", s.SearchTrips)
		r.Get("/trips/status/{status}", s.ListTripsByStatus)
		r.Get("/trips/{id}", s.GetTrip)
		r.Patch("/trips/{id}/status", s.UpdateTripStatus)
		r.Post("/trips/{id}/places/{placeId}", s.AddTripPlace)
		r.Delete("/trips/{id}/places/{placeId}", s.RemoveTripPlace)
		r.Post("/trips/{id}/refresh-weather", s.RefreshTripWeather)
		r.Delete("/trips/{id}", s.DeleteTrip)

		r.Post("/validation/trips/{id}", s.ValidateTrip)
		r.Get("/validation/trips/{id}/is-recommended", s.GetTripIsRecommended)

		r.Get("/favorites", s.ListFavorites)
		r.Get("/favorites/count", s.CountFavorites)
		r.Post("/favorites/{placeId}", s.AddFavorite)
		r.Delete("/favorites/{placeId}", s.RemoveFavorite)
		r.Get("/favorites/{placeId}/check", s.CheckFavorite)
	})
	return r
}

