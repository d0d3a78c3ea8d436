package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
)

// PlaceService searches the configured provider, merges results into the
// place store and serves stored places.
type PlaceService struct {
	places   repo.PlaceRepo
	searches repo.SearchHistoryRepo
	provider places.Adapter
}

// NewPlaceService constructs a PlaceService.
func NewPlaceService(placeRepo repo.PlaceRepo, searches repo.SearchHistoryRepo, provider places.Adapter) *PlaceService {
	return &PlaceService{places: placeRepo, searches: searches, provider: provider}
}

// Search runs a text or nearby search, upserts every result and records the
// search in the owner's history. A failing provider yields an empty result.
func (s *PlaceService) Search(ctx context.Context, ownerID string, q places.Query) ([]domain.Place, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.PlaceService.Search: %w", err)
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Type = strings.TrimSpace(q.Type)
	if err := validateCoordinates(q.Latitude, q.Longitude); err != nil {
		return nil, fmt.Errorf("service.PlaceService.Search: %w", err)
	}
	if q.Text == "" && !q.Nearby() {
		return nil, fmt.Errorf("service.PlaceService.Search: %w: a query or coordinates are required", domain.ErrValidation)
	}
	if q.Radius < 0 || q.Radius > maxRadius {
		return nil, fmt.Errorf("service.PlaceService.Search: %w: radius must be between 0 and %d", domain.ErrValidation, maxRadius)
	}

	found := searchProvider(ctx, s.provider, q)

	stored := make([]domain.Place, 0, len(found))
	for _, p := range found {
		saved, err := s.places.Upsert(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("service.PlaceService.Search: %w", err)
		}
		stored = append(stored, saved)
	}

	rec := domain.SearchRecord{
		OwnerID:      ownerID,
		Type:         domain.SearchText,
		Query:        q.Text,
		Latitude:     q.Latitude,
		Longitude:    q.Longitude,
		PlaceType:    q.Type,
		ResultsCount: len(stored),
	}
	if q.Text == "" {
		rec.Type = domain.SearchNearby
		radius := q.Radius
		if radius == 0 {
			radius = places.DefaultRadius
		}
		rec.Radius = &radius
	}
	if _, err := s.searches.Record(ctx, rec); err != nil {
		slog.WarnContext(ctx, "record search history failed", "owner", ownerID, "error", err)
	}

	return stored, nil
}

// GetByID returns a stored place.
func (s *PlaceService) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByID: %w", err)
	}
	return p, nil
}

// GetByExternalID returns the stored place, or fetches it from the provider
// and stores it when it has not been seen before.
func (s *PlaceService) GetByExternalID(ctx context.Context, externalID string) (domain.Place, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByExternalID: %w: external id is required", domain.ErrValidation)
	}

	p, err := s.places.GetByExternalID(ctx, externalID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByExternalID: %w", err)
	}

	fetched, err := s.provider.Details(ctx, externalID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.WarnContext(ctx, "place details failed", "provider", s.provider.Name(), "external_id", externalID, "error", err)
		}
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByExternalID: %w", domain.ErrNotFound)
	}

	saved, err := s.places.Upsert(ctx, fetched)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByExternalID: %w", err)
	}
	return saved, nil
}

// SearchByName matches stored places by name.
func (s *PlaceService) SearchByName(ctx context.Context, name string) ([]domain.Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service.PlaceService.SearchByName: %w: name is required", domain.ErrValidation)
	}
	ps, err := s.places.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.SearchByName: %w", err)
	}
	return ps, nil
}

// ListOpen returns stored places last reported open.
func (s *PlaceService) ListOpen(ctx context.Context) ([]domain.Place, error) {
	ps, err := s.places.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.ListOpen: %w", err)
	}
	return ps, nil
}

// ListByMinRating returns stored places rated at least min on the 0-5 scale.
func (s *PlaceService) ListByMinRating(ctx context.Context, min float64) ([]domain.Place, error) {
	if min < 0 || min > 5 {
		return nil, fmt.Errorf("service.PlaceService.ListByMinRating: %w: min must be between 0 and 5", domain.ErrValidation)
	}
	ps, err := s.places.ListByMinRating(ctx, min)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.ListByMinRating: %w", err)
	}
	return ps, nil
}

// IsOpen returns the stored open state; nil means unknown.
func (s *PlaceService) IsOpen(ctx context.Context, id uuid.UUID) (*bool, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.IsOpen: %w", err)
	}
	return p.CurrentlyOpen, nil
}

// Delete removes a stored place.
func (s *PlaceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.places.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	return nil
}

// searchProvider degrades any provider failure to an empty result.
func searchProvider(ctx context.Context, provider places.Adapter, q places.Query) []domain.Place {
	found, err := provider.Search(ctx, q)
	if err != nil {
		slog.WarnContext(ctx, "place search failed", "provider", provider.Name(), "query", q.Text, "type", q.Type, "error", err)
		return nil
	}
	return found
}

// History returns the owner's most recent searches, newest first.
func (s *PlaceService) History(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.PlaceService.History: %w", err)
	}
	recs, err := s.searches.ListRecent(ctx, ownerID, domain.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.History: %w", err)
	}
	return recs, nil
}
