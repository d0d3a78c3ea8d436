package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// PlaceRepo is the place merge store. Places are keyed by their provider
// external id; Upsert is the only write path for provider data.
type PlaceRepo interface {
	// Upsert inserts the place, or overwrites the descriptive fields of the
	// existing row with the same ExternalID. The stored id is never changed.
	Upsert(ctx context.Context, place domain.Place) (domain.Place, error)

	// GetByID returns domain.ErrNotFound if no place has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error)

	// GetByExternalID returns domain.ErrNotFound if no place has that external id.
	GetByExternalID(ctx context.Context, externalID string) (domain.Place, error)

	// ListByIDs returns the places in the order of ids. Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Place, error)

	// SearchByName matches a case-insensitive substring of the name.
	SearchByName(ctx context.Context, name string) ([]domain.Place, error)

	// ListOpen returns places whose provider reported them open.
	ListOpen(ctx context.Context) ([]domain.Place, error)

	// ListByMinRating returns rated places with rating >= min, best first.
	ListByMinRating(ctx context.Context, min float64) ([]domain.Place, error)

	// Delete returns domain.ErrNotFound if no place has that id.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

const placeColumns = `
	id, external_id, source, name, address, formatted_address, locality, region,
	country, postcode, latitude, longitude, rating, rating_count, categories,
	category_ids, opening_time, closing_time, currently_open, distance_meters,
	timezone, external_link, phone, website, photo_url, created_at, updated_at`

// Upsert relies on the unique external_id constraint, so concurrent upserts of
// the same place serialize in Postgres and never create a second row.
// updated_at only moves when a descriptive field actually changed, which keeps
// repeated upserts of identical data free of side effects.
func (r *pgPlaceRepo) Upsert(ctx context.Context, place domain.Place) (domain.Place, error) {
	if !place.Valid() {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Upsert: %w: external id and name are required", domain.ErrValidation)
	}

	const q = `
		INSERT INTO places (
			external_id, source, name, address, formatted_address, locality, region,
			country, postcode, latitude, longitude, rating, rating_count, categories,
			category_ids, opening_time, closing_time, currently_open, distance_meters,
			timezone, external_link, phone, website, photo_url)
		VALUES (
			@external_id, @source, @name, @address, @formatted_address, @locality, @region,
			@country, @postcode, @latitude, @longitude, @rating, @rating_count, @categories,
			@category_ids, @opening_time, @closing_time, @currently_open, @distance_meters,
			@timezone, @external_link, @phone, @website, @photo_url)
		ON CONFLICT (external_id) DO UPDATE SET
			source            = EXCLUDED.source,
			name              = EXCLUDED.name,
			address           = EXCLUDED.address,
			formatted_address = EXCLUDED.formatted_address,
			locality          = EXCLUDED.locality,
			region            = EXCLUDED.region,
			country           = EXCLUDED.country,
			postcode          = EXCLUDED.postcode,
			latitude          = EXCLUDED.latitude,
			longitude         = EXCLUDED.longitude,
			rating            = EXCLUDED.rating,
			rating_count      = EXCLUDED.rating_count,
			categories        = EXCLUDED.categories,
			category_ids      = EXCLUDED.category_ids,
			opening_time      = EXCLUDED.opening_time,
			closing_time      = EXCLUDED.closing_time,
			currently_open    = EXCLUDED.currently_open,
			distance_meters   = EXCLUDED.distance_meters,
			timezone          = EXCLUDED.timezone,
			external_link     = EXCLUDED.external_link,
			phone             = EXCLUDED.phone,
			website           = EXCLUDED.website,
			photo_url         = EXCLUDED.photo_url,
			updated_at        = CASE
				WHEN (places.source, places.name, places.address, places.formatted_address,
				      places.locality, places.region, places.country, places.postcode,
				      places.latitude, places.longitude, places.rating, places.rating_count,
				      places.categories, places.category_ids, places.opening_time,
				      places.closing_time, places.currently_open, places.distance_meters,
				      places.timezone, places.external_link, places.phone, places.website,
				      places.photo_url)
				     IS DISTINCT FROM
				     (EXCLUDED.source, EXCLUDED.name, EXCLUDED.address, EXCLUDED.formatted_address,
				      EXCLUDED.locality, EXCLUDED.region, EXCLUDED.country, EXCLUDED.postcode,
				      EXCLUDED.latitude, EXCLUDED.longitude, EXCLUDED.rating, EXCLUDED.rating_count,
				      EXCLUDED.categories, EXCLUDED.category_ids, EXCLUDED.opening_time,
				      EXCLUDED.closing_time, EXCLUDED.currently_open, EXCLUDED.distance_meters,
				      EXCLUDED.timezone, EXCLUDED.external_link, EXCLUDED.phone, EXCLUDED.website,
				      EXCLUDED.photo_url)
				THEN now()
				ELSE places.updated_at
			END
		RETURNING ` + placeColumns

	row := r.db.QueryRow(ctx, q, placeArgs(place))
	result, err := scanPlace(row)
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	q := `SELECT ` + placeColumns + ` FROM places WHERE id = @id`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) GetByExternalID(ctx context.Context, externalID string) (domain.Place, error) {
	q := `SELECT ` + placeColumns + ` FROM places WHERE external_id = @external_id`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"external_id": externalID}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByExternalID: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Place, error) {
	if len(ids) == 0 {
		return []domain.Place{}, nil
	}
	q := `
		SELECT ` + placeColumns + `
		FROM places
		JOIN unnest(@ids::uuid[]) WITH ORDINALITY AS wanted(id, ord) USING (id)
		ORDER BY wanted.ord`

	places, err := r.list(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByIDs: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) SearchByName(ctx context.Context, name string) ([]domain.Place, error) {
	q := `
		SELECT ` + placeColumns + `
		FROM places
		WHERE name ILIKE '%' || @name || '%'
		ORDER BY name`

	places, err := r.list(ctx, q, pgx.NamedArgs{"name": escapeLike(name)})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.SearchByName: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) ListOpen(ctx context.Context) ([]domain.Place, error) {
	q := `SELECT ` + placeColumns + ` FROM places WHERE currently_open ORDER BY name`

	places, err := r.list(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListOpen: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) ListByMinRating(ctx context.Context, min float64) ([]domain.Place, error) {
	q := `
		SELECT ` + placeColumns + `
		FROM places
		WHERE rating >= @min
		ORDER BY rating DESC, name`

	places, err := r.list(ctx, q, pgx.NamedArgs{"min": min})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByMinRating: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM places WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgPlaceRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Place, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return places, nil
}

func placeArgs(p domain.Place) pgx.NamedArgs {
	return pgx.NamedArgs{
		"external_id":       p.ExternalID,
		"source":            p.Source,
		"name":              p.Name,
		"address":           p.Address,
		"formatted_address": p.FormattedAddress,
		"locality":          p.Locality,
		"region":            p.Region,
		"country":           p.Country,
		"postcode":          p.Postcode,
		"latitude":          p.Latitude,
		"longitude":         p.Longitude,
		"rating":            p.Rating,
		"rating_count":      p.RatingCount,
		"categories":        nonNil(p.Categories),
		"category_ids":      nonNil(p.CategoryIDs),
		"opening_time":      timeOfDayParam(p.OpeningTime),
		"closing_time":      timeOfDayParam(p.ClosingTime),
		"currently_open":    p.CurrentlyOpen,
		"distance_meters":   p.DistanceMeters,
		"timezone":          p.Timezone,
		"external_link":     p.ExternalLink,
		"phone":             p.Phone,
		"website":           p.Website,
		"photo_url":         p.PhotoURL,
	}
}

// scanPlace maps one row selected with placeColumns.
func scanPlace(s scanner) (domain.Place, error) {
	var (
		p                       domain.Place
		id                      pgtype.UUID
		opening, closing        pgtype.Time
		categories, categoryIDs []string
	)

	err := s.Scan(
		&id, &p.ExternalID, &p.Source, &p.Name, &p.Address, &p.FormattedAddress,
		&p.Locality, &p.Region, &p.Country, &p.Postcode, &p.Latitude, &p.Longitude,
		&p.Rating, &p.RatingCount, &categories, &categoryIDs, &opening, &closing,
		&p.CurrentlyOpen, &p.DistanceMeters, &p.Timezone, &p.ExternalLink, &p.Phone,
		&p.Website, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	if len(categories) > 0 {
		p.Categories, p.CategoryIDs = categories, categoryIDs
	}
	p.OpeningTime = timeOfDayFrom(opening)
	p.ClosingTime = timeOfDayFrom(closing)
	return p, nil
}

func timeOfDayParam(t *domain.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func timeOfDayFrom(t pgtype.Time) *domain.TimeOfDay {
	if !t.Valid {
		return nil
	}
	d := time.Duration(t.Microseconds) * time.Microsecond
	tod, ok := domain.NewTimeOfDay(int(d/time.Hour), int(d%time.Hour/time.Minute))
	if !ok {
		return nil
	}
	return &tod
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
