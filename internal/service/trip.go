package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
)

// MaxPlaceQueries bounds the provider searches a single trip creation issues.
const MaxPlaceQueries = 10

// CreateTripInput is the caller's request to plan a trip. Each entry of
// PlaceQueries is searched and its first hit becomes a trip place.
type CreateTripInput struct {
	Name             string
	PlannedStartTime time.Time
	PlannedEndTime   *time.Time
	PlaceQueries     []string
	StartLatitude    *float64
	StartLongitude   *float64
}

// TripService implements business logic for Trip operations. Every method is
// scoped to the calling owner: trips of other owners are reported as not found.
type TripService struct {
	tx         TxRunner
	trips      repo.TripRepo
	places     repo.PlaceRepo
	weather    repo.WeatherRepo
	searches   repo.SearchHistoryRepo
	provider   places.Adapter
	forecaster Forecaster
	now        func() time.Time
}

// NewTripService constructs a TripService. rs serves reads and
// single-statement writes; multi-step writes go through tx.
func NewTripService(rs repo.Repos, tx TxRunner, provider places.Adapter, forecaster Forecaster) *TripService {
	return &TripService{
		tx:         tx,
		trips:      rs.Trips,
		places:     rs.Places,
		weather:    rs.Weather,
		searches:   rs.Searches,
		provider:   provider,
		forecaster: forecaster,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for "upcoming" queries.
func (s *TripService) WithClock(now func() time.Time) *TripService {
	s.now = now
	return s
}

// Create searches every place query concurrently, stores the first hit of
// each, skips duplicates by external id, attaches the forecast for the first
// place (or the start coordinates) and persists the trip as PLANNED.
func (s *TripService) Create(ctx context.Context, ownerID string, in CreateTripInput) (domain.TripDetails, error) {
	if err := requireOwner(ownerID); err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	in.Name = strings.TrimSpace(in.Name)
	queries, err := validateCreate(in)
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	tripPlaces := s.resolvePlaces(ctx, queries, in.StartLatitude, in.StartLongitude)

	if len(queries) > 0 {
		rec := domain.SearchRecord{
			OwnerID:      ownerID,
			Type:         domain.SearchTrip,
			Query:        strings.Join(queries, ", "),
			Latitude:     in.StartLatitude,
			Longitude:    in.StartLongitude,
			ResultsCount: len(tripPlaces),
		}
		if _, err := s.searches.Record(ctx, rec); err != nil {
			slog.WarnContext(ctx, "record search history failed", "owner", ownerID, "error", err)
		}
	}

	lat, lon := in.StartLatitude, in.StartLongitude
	if len(tripPlaces) > 0 {
		lat, lon = tripPlaces[0].Latitude, tripPlaces[0].Longitude
	}
	sample := s.forecast(ctx, lat, lon, in.PlannedStartTime)

	trip := domain.Trip{
		OwnerID:          ownerID,
		Name:             in.Name,
		PlannedStartTime: in.PlannedStartTime,
		PlannedEndTime:   in.PlannedEndTime,
		Status:           domain.TripPlanned,
	}
	for _, p := range tripPlaces {
		trip.PlaceIDs = append(trip.PlaceIDs, p.ID)
	}

	err = s.tx.WithTx(ctx, func(rs repo.Repos) error {
		if sample != nil {
			saved, err := rs.Weather.Create(ctx, *sample)
			if err != nil {
				return err
			}
			sample = &saved
			trip.WeatherID = &saved.ID
		}
		created, err := rs.Trips.Create(ctx, trip)
		if err != nil {
			return err
		}
		trip = created
		return nil
	})
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	slog.InfoContext(ctx, "trip created", "trip_id", trip.ID, "places", len(tripPlaces), "weather", sample != nil)
	return domain.TripDetails{Trip: trip, Places: tripPlaces, Weather: sample}, nil
}

func validateCreate(in CreateTripInput) ([]string, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(in.Name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, maxNameLength)
	}
	if in.PlannedStartTime.IsZero() {
		return nil, fmt.Errorf("%w: planned start time is required", domain.ErrValidation)
	}
	if in.PlannedEndTime != nil && in.PlannedEndTime.Before(in.PlannedStartTime) {
		return nil, fmt.Errorf("%w: planned end time must not be before the start", domain.ErrValidation)
	}
	if err := validateCoordinates(in.StartLatitude, in.StartLongitude); err != nil {
		return nil, err
	}

	var queries []string
	for _, q := range in.PlaceQueries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) > MaxPlaceQueries {
		return nil, fmt.Errorf("%w: at most %d place queries", domain.ErrValidation, MaxPlaceQueries)
	}
	return queries, nil
}

// resolvePlaces searches each query concurrently and upserts its first hit.
// A query that fails or finds nothing contributes no place; the others are
// unaffected. Results keep query order and are unique by external id.
func (s *TripService) resolvePlaces(ctx context.Context, queries []string, lat, lon *float64) []domain.Place {
	hits := make([]*domain.Place, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			found := searchProvider(ctx, s.provider, places.Query{Text: q, Latitude: lat, Longitude: lon})
			if len(found) == 0 {
				return nil
			}
			saved, err := s.places.Upsert(ctx, found[0])
			if err != nil {
				slog.WarnContext(ctx, "store trip place failed", "query", q, "error", err)
				return nil
			}
			hits[i] = &saved
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool, len(hits))
	out := make([]domain.Place, 0, len(hits))
	for _, p := range hits {
		if p == nil || seen[p.ExternalID] {
			continue
		}
		seen[p.ExternalID] = true
		out = append(out, *p)
	}
	return out
}

// forecast degrades provider failures and missing coordinates to nil.
func (s *TripService) forecast(ctx context.Context, lat, lon *float64, at time.Time) *domain.WeatherSample {
	if lat == nil || lon == nil || s.forecaster == nil {
		return nil
	}
	sample, err := s.forecaster.Forecast(ctx, *lat, *lon, at)
	if err != nil {
		slog.WarnContext(ctx, "weather forecast failed", "lat", *lat, "lon", *lon, "error", err)
		return nil
	}
	return sample
}

// Get returns a trip with its places and weather.
func (s *TripService) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error) {
	trip, err := ownedTrip(ctx, s.trips, ownerID, id)
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	details, err := loadDetails(ctx, s.places, s.weather, trip)
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return details, nil
}

// List returns one page of the owner's trips and the owner's total.
func (s *TripService) List(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	trips, total, err := s.trips.ListByOwner(ctx, ownerID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, total, nil
}

// Upcoming returns the owner's trips that have not started yet.
func (s *TripService) Upcoming(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.TripService.Upcoming: %w", err)
	}
	trips, err := s.trips.ListUpcoming(ctx, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Upcoming: %w", err)
	}
	return trips, nil
}

// Recommended returns the owner's trips whose last evaluation recommended them.
func (s *TripService) Recommended(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.TripService.Recommended: %w", err)
	}
	trips, err := s.trips.ListRecommended(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Recommended: %w", err)
	}
	return trips, nil
}

// ByStatus returns the owner's trips in the named status.
func (s *TripService) ByStatus(ctx context.Context, ownerID, status string) ([]domain.Trip, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.TripService.ByStatus: %w", err)
	}
	st, err := domain.ParseTripStatus(status)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ByStatus: %w", err)
	}
	trips, err := s.trips.ListByStatus(ctx, ownerID, st)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ByStatus: %w", err)
	}
	return trips, nil
}

// SearchByName matches the owner's trips by name.
func (s *TripService) SearchByName(ctx context.Context, ownerID, name string) ([]domain.Trip, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.TripService.SearchByName: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service.TripService.SearchByName: %w: name is required", domain.ErrValidation)
	}
	trips, err := s.trips.SearchByName(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.SearchByName: %w", err)
	}
	return trips, nil
}

// UpdateStatus sets the caller-driven lifecycle status. The trip row is
// locked so the change cannot interleave with an evaluation.
func (s *TripService) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status string) (domain.Trip, error) {
	st, err := domain.ParseTripStatus(status)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
	}

	var updated domain.Trip
	err = s.tx.WithTx(ctx, func(rs repo.Repos) error {
		if _, err := lockOwnedTrip(ctx, rs.Trips, ownerID, id); err != nil {
			return err
		}
		updated, err = rs.Trips.UpdateStatus(ctx, id, st)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %w", err)
	}
	slog.InfoContext(ctx, "trip status updated", "trip_id", id, "status", st)
	return updated, nil
}

// AddPlace appends a stored place to the trip. A place already on the trip
// is left where it is.
func (s *TripService) AddPlace(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error) {
	details, err := s.editPlaces(ctx, ownerID, tripID, placeID, func(rs repo.Repos, trip domain.Trip) error {
		if trip.HasPlace(placeID) {
			return nil
		}
		return rs.Trips.AddPlace(ctx, tripID, placeID)
	})
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.AddPlace: %w", err)
	}
	return details, nil
}

// RemovePlace drops a place from the trip. Returns domain.ErrNotFound when
// the place is not on the trip.
func (s *TripService) RemovePlace(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error) {
	details, err := s.editPlaces(ctx, ownerID, tripID, placeID, func(rs repo.Repos, _ domain.Trip) error {
		return rs.Trips.RemovePlace(ctx, tripID, placeID)
	})
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.RemovePlace: %w", err)
	}
	return details, nil
}

func (s *TripService) editPlaces(ctx context.Context, ownerID string, tripID, placeID uuid.UUID, edit func(repo.Repos, domain.Trip) error) (domain.TripDetails, error) {
	var details domain.TripDetails
	err := s.tx.WithTx(ctx, func(rs repo.Repos) error {
		trip, err := lockOwnedTrip(ctx, rs.Trips, ownerID, tripID)
		if err != nil {
			return err
		}
		if _, err := rs.Places.GetByID(ctx, placeID); err != nil {
			return err
		}
		if err := edit(rs, trip); err != nil {
			return err
		}
		trip, err = rs.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		details, err = loadDetails(ctx, rs.Places, rs.Weather, trip)
		return err
	})
	return details, err
}

// RefreshWeather fetches a new forecast for the first place of the trip and
// attaches it. Without places, or when the provider has nothing, the current
// sample is kept.
func (s *TripService) RefreshWeather(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error) {
	trip, err := ownedTrip(ctx, s.trips, ownerID, id)
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.RefreshWeather: %w", err)
	}
	tripPlaces, err := s.places.ListByIDs(ctx, trip.PlaceIDs)
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.RefreshWeather: %w", err)
	}

	var sample *domain.WeatherSample
	if len(tripPlaces) > 0 {
		sample = s.forecast(ctx, tripPlaces[0].Latitude, tripPlaces[0].Longitude, trip.PlannedStartTime)
	}

	var details domain.TripDetails
	err = s.tx.WithTx(ctx, func(rs repo.Repos) error {
		trip, err := lockOwnedTrip(ctx, rs.Trips, ownerID, id)
		if err != nil {
			return err
		}
		if sample != nil {
			saved, err := rs.Weather.Create(ctx, *sample)
			if err != nil {
				return err
			}
			if err := rs.Trips.SetWeather(ctx, id, &saved.ID); err != nil {
				return err
			}
			trip.WeatherID = &saved.ID
		}
		details, err = loadDetails(ctx, rs.Places, rs.Weather, trip)
		return err
	})
	if err != nil {
		return domain.TripDetails{}, fmt.Errorf("service.TripService.RefreshWeather: %w", err)
	}
	return details, nil
}

// Delete removes one of the owner's trips.
func (s *TripService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(rs repo.Repos) error {
		if _, err := lockOwnedTrip(ctx, rs.Trips, ownerID, id); err != nil {
			return err
		}
		return rs.Trips.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	slog.InfoContext(ctx, "trip deleted", "trip_id", id)
	return nil
}

// ownedTrip loads a trip and hides trips of other owners behind ErrNotFound.
func ownedTrip(ctx context.Context, trips repo.TripRepo, ownerID string, id uuid.UUID) (domain.Trip, error) {
	if err := requireOwner(ownerID); err != nil {
		return domain.Trip{}, err
	}
	trip, err := trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.OwnerID != ownerID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

// lockOwnedTrip is ownedTrip under a row lock.
func lockOwnedTrip(ctx context.Context, trips repo.TripRepo, ownerID string, id uuid.UUID) (domain.Trip, error) {
	if err := requireOwner(ownerID); err != nil {
		return domain.Trip{}, err
	}
	trip, err := trips.GetForUpdate(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.OwnerID != ownerID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

// loadDetails loads the places and weather referenced by trip. A dangling
// weather reference is treated as no weather.
func loadDetails(ctx context.Context, placeRepo repo.PlaceRepo, weatherRepo repo.WeatherRepo, trip domain.Trip) (domain.TripDetails, error) {
	tripPlaces, err := placeRepo.ListByIDs(ctx, trip.PlaceIDs)
	if err != nil {
		return domain.TripDetails{}, err
	}
	details := domain.TripDetails{Trip: trip, Places: tripPlaces}
	if trip.WeatherID != nil {
		w, err := weatherRepo.GetByID(ctx, *trip.WeatherID)
		switch {
		case err == nil:
			details.Weather = &w
		case !errors.Is(err, domain.ErrNotFound):
			return domain.TripDetails{}, err
		}
	}
	return details, nil
}
