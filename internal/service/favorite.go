package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
)

// FavoriteService manages an owner's favourite places.
type FavoriteService struct {
	favorites repo.FavoriteRepo
}

// NewFavoriteService constructs a FavoriteService.
func NewFavoriteService(favorites repo.FavoriteRepo) *FavoriteService {
	return &FavoriteService{favorites: favorites}
}

// Add marks a stored place as favourite. Adding twice is a no-op.
// Returns domain.ErrNotFound when the place does not exist.
func (s *FavoriteService) Add(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return fmt.Errorf("service.FavoriteService.Add: %w", err)
	}
	if err := s.favorites.Add(ctx, ownerID, placeID); err != nil {
		return fmt.Errorf("service.FavoriteService.Add: %w", err)
	}
	return nil
}

// Remove unmarks a favourite. Returns domain.ErrNotFound when it was not one.
func (s *FavoriteService) Remove(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return fmt.Errorf("service.FavoriteService.Remove: %w", err)
	}
	if err := s.favorites.Remove(ctx, ownerID, placeID); err != nil {
		return fmt.Errorf("service.FavoriteService.Remove: %w", err)
	}
	return nil
}

// List returns the owner's favourite places, most recent first.
func (s *FavoriteService) List(ctx context.Context, ownerID string) ([]domain.Place, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, fmt.Errorf("service.FavoriteService.List: %w", err)
	}
	ps, err := s.favorites.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.FavoriteService.List: %w", err)
	}
	return ps, nil
}

// IsFavorite reports whether the place is one of the owner's favourites.
func (s *FavoriteService) IsFavorite(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return false, fmt.Errorf("service.FavoriteService.IsFavorite: %w", err)
	}
	ok, err := s.favorites.Exists(ctx, ownerID, placeID)
	if err != nil {
		return false, fmt.Errorf("service.FavoriteService.IsFavorite: %w", err)
	}
	return ok, nil
}

// Count returns how many favourites the owner has.
func (s *FavoriteService) Count(ctx context.Context, ownerID string) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, fmt.Errorf("service.FavoriteService.Count: %w", err)
	}
	n, err := s.favorites.Count(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("service.FavoriteService.Count: %w", err)
	}
	return n, nil
}
