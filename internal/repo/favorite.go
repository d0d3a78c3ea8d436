package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// FavoriteRepo stores the places an owner marked as favorite.
type FavoriteRepo interface {
	// Add is idempotent. Returns domain.ErrNotFound if the place does not exist.
	Add(ctx context.Context, ownerID string, placeID uuid.UUID) error

	// Remove returns domain.ErrNotFound if the place is not a favorite.
	Remove(ctx context.Context, ownerID string, placeID uuid.UUID) error

	// List returns the favorite places, most recently added first.
	List(ctx context.Context, ownerID string) ([]domain.Place, error)

	Exists(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error)
	Count(ctx context.Context, ownerID string) (int64, error)
}

type pgFavoriteRepo struct {
	db db
}

// NewFavoriteRepo constructs a FavoriteRepo backed by the provided db connection.
func NewFavoriteRepo(db db) FavoriteRepo {
	return &pgFavoriteRepo{db: db}
}

func (r *pgFavoriteRepo) Add(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	const q = `
		INSERT INTO favorites (owner_id, place_id)
		SELECT @owner_id, id FROM places WHERE id = @place_id
		ON CONFLICT (owner_id, place_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "place_id": placeID}); err != nil {
		return fmt.Errorf("repo.FavoriteRepo.Add: %w", err)
	}
	// Zero rows means either an existing favorite or a missing place.
	var exists bool
	const check = `SELECT EXISTS (SELECT 1 FROM places WHERE id = @place_id)`
	if err := r.db.QueryRow(ctx, check, pgx.NamedArgs{"place_id": placeID}).Scan(&exists); err != nil {
		return fmt.Errorf("repo.FavoriteRepo.Add: %w", err)
	}
	if !exists {
		return fmt.Errorf("repo.FavoriteRepo.Add: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgFavoriteRepo) Remove(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	const q = `DELETE FROM favorites WHERE owner_id = @owner_id AND place_id = @place_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "place_id": placeID})
	if err != nil {
		return fmt.Errorf("repo.FavoriteRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.FavoriteRepo.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgFavoriteRepo) List(ctx context.Context, ownerID string) ([]domain.Place, error) {
	q := `
		SELECT ` + qualified("p", placeColumns) + `
		FROM favorites f
		JOIN places p ON p.id = f.place_id
		WHERE f.owner_id = @owner_id
		ORDER BY f.created_at DESC, p.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.List: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.FavoriteRepo.List: scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.List: rows: %w", err)
	}
	return places, nil
}

func (r *pgFavoriteRepo) Exists(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM favorites WHERE owner_id = @owner_id AND place_id = @place_id)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "place_id": placeID}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgFavoriteRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	const q = `SELECT count(*) FROM favorites WHERE owner_id = @owner_id`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": ownerID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.FavoriteRepo.Count: %w", err)
	}
	return n, nil
}
