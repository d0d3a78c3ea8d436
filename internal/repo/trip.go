// Package repo contains all database access logic for the Travel Buddy API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips and their ordered
// place list. Owner scoping is the caller's job: lookups by id return the
// trip whoever owns it.
type TripRepo interface {
	// Create inserts a new trip together with its PlaceIDs, in order, and
	// returns the persisted record.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetForUpdate is GetByID holding a row lock until the surrounding
	// transaction ends. Only meaningful inside a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByOwner returns one page of the owner's trips, latest planned start
	// first, and the owner's total trip count.
	ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ListUpcoming returns the owner's trips starting after now, soonest first.
	ListUpcoming(ctx context.Context, ownerID string, now time.Time) ([]domain.Trip, error)

	// ListRecommended returns the owner's trips whose last evaluation recommended them.
	ListRecommended(ctx context.Context, ownerID string) ([]domain.Trip, error)

	// ListByStatus returns the owner's trips in the given status.
	ListByStatus(ctx context.Context, ownerID string, status domain.TripStatus) ([]domain.Trip, error)

	// SearchByName matches a case-insensitive substring of the trip name.
	SearchByName(ctx context.Context, ownerID, name string) ([]domain.Trip, error)

	// UpdateStatus returns domain.ErrNotFound if the trip does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error)

	// SaveEvaluation stores the feasibility output fields of trip.
	SaveEvaluation(ctx context.Context, trip domain.Trip) error

	// SetWeather attaches a weather sample, or detaches it when weatherID is nil.
	SetWeather(ctx context.Context, id uuid.UUID, weatherID *uuid.UUID) error

	// AddPlace appends a place to the end of the trip. Adding a place that is
	// already on the trip is a no-op.
	AddPlace(ctx context.Context, tripID, placeID uuid.UUID) error

	// RemovePlace returns domain.ErrNotFound if the place is not on the trip.
	RemovePlace(ctx context.Context, tripID, placeID uuid.UUID) error

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// tripColumns selects a trip with its ordered place ids aggregated from
// trip_places. Queries alias trips as t.
const tripColumns = `
	t.id, t.owner_id, t.name, t.planned_start_time, t.planned_end_time,
	(SELECT coalesce(array_agg(tp.place_id ORDER BY tp.position), '{}')
	   FROM trip_places tp WHERE tp.trip_id = t.id) AS place_ids,
	t.weather_id, t.status, t.recommendation, t.is_recommended, t.warning_message,
	t.created_at, t.updated_at`

// Create inserts the trip row, then its place links. Run it inside a
// transaction so a failed link does not leave a half-built trip.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (owner_id, name, planned_start_time, planned_end_time, weather_id, status)
		VALUES (@owner_id, @name, @planned_start_time, @planned_end_time, @weather_id, @status)
		RETURNING id`

	if trip.Status == "" {
		trip.Status = domain.TripPlanned
	}
	args := pgx.NamedArgs{
		"owner_id":           trip.OwnerID,
		"name":               trip.Name,
		"planned_start_time": trip.PlannedStartTime,
		"planned_end_time":   trip.PlannedEndTime, // nil becomes NULL
		"weather_id":         trip.WeatherID,
		"status":             string(trip.Status),
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	for _, placeID := range trip.PlaceIDs {
		if err := r.AddPlace(ctx, id, placeID); err != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
		}
	}

	result, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = @id FOR UPDATE OF t`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

// ListByOwner returns one page of trips ordered by planned start descending.
func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM trips WHERE owner_id = @owner_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"owner_id": ownerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: count: %w", err)
	}

	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.owner_id = @owner_id
		ORDER BY t.planned_start_time DESC, t.id
		LIMIT @limit OFFSET @offset`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) ListUpcoming(ctx context.Context, ownerID string, now time.Time) ([]domain.Trip, error) {
	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.owner_id = @owner_id AND t.planned_start_time > @now
		ORDER BY t.planned_start_time`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "now": now})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListUpcoming: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) ListRecommended(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.owner_id = @owner_id AND t.is_recommended
		ORDER BY t.planned_start_time DESC`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListRecommended: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) ListByStatus(ctx context.Context, ownerID string, status domain.TripStatus) ([]domain.Trip, error) {
	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.owner_id = @owner_id AND t.status = @status
		ORDER BY t.planned_start_time DESC`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByStatus: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) SearchByName(ctx context.Context, ownerID, name string) ([]domain.Trip, error) {
	q := `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.owner_id = @owner_id AND t.name ILIKE '%' || @name || '%'
		ORDER BY t.planned_start_time DESC`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "name": escapeLike(name)})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.SearchByName: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status     = @status,
		    updated_at = now()
		WHERE id = @id`

	if err := r.exec(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", err)
	}
	result, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) SaveEvaluation(ctx context.Context, trip domain.Trip) error {
	const q = `
		UPDATE trips
		SET recommendation  = @recommendation,
		    is_recommended  = @is_recommended,
		    warning_message = @warning_message,
		    updated_at      = now()
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":              trip.ID,
		"recommendation":  trip.Recommendation,
		"is_recommended":  trip.IsRecommended,
		"warning_message": trip.WarningMessage,
	}
	if err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.TripRepo.SaveEvaluation: %w", err)
	}
	return nil
}

func (r *pgTripRepo) SetWeather(ctx context.Context, id uuid.UUID, weatherID *uuid.UUID) error {
	const q = `
		UPDATE trips
		SET weather_id = @weather_id,
		    updated_at = now()
		WHERE id = @id`

	if err := r.exec(ctx, q, pgx.NamedArgs{"id": id, "weather_id": weatherID}); err != nil {
		return fmt.Errorf("repo.TripRepo.SetWeather: %w", err)
	}
	return nil
}

// AddPlace appends at max(position)+1. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgTripRepo) AddPlace(ctx context.Context, tripID, placeID uuid.UUID) error {
	const q = `
		INSERT INTO trip_places (trip_id, place_id, position)
		SELECT @trip_id, @place_id, coalesce(max(position), -1) + 1
		FROM trip_places
		WHERE trip_id = @trip_id
		ON CONFLICT (trip_id, place_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "place_id": placeID})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("repo.TripRepo.AddPlace: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.TripRepo.AddPlace: %w", err)
	}
	return nil
}

func (r *pgTripRepo) RemovePlace(ctx context.Context, tripID, placeID uuid.UUID) error {
	const q = `DELETE FROM trip_places WHERE trip_id = @trip_id AND place_id = @place_id`

	if err := r.exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "place_id": placeID}); err != nil {
		return fmt.Errorf("repo.TripRepo.RemovePlace: %w", err)
	}
	return nil
}

// Delete removes a trip by primary key. Place links go with it.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	if err := r.exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	return nil
}

// exec runs a statement that must touch at least one row.
func (r *pgTripRepo) exec(ctx context.Context, q string, args pgx.NamedArgs) error {
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgTripRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single row selected with tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		placeIDs  []pgtype.UUID
		weatherID pgtype.UUID
		status    string
	)

	err := s.Scan(
		&id, &t.OwnerID, &t.Name, &t.PlannedStartTime, &t.PlannedEndTime, &placeIDs,
		&weatherID, &status, &t.Recommendation, &t.IsRecommended, &t.WarningMessage,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Status = domain.TripStatus(status)
	t.PlaceIDs = make([]uuid.UUID, 0, len(placeIDs))
	for _, pid := range placeIDs {
		t.PlaceIDs = append(t.PlaceIDs, uuid.UUID(pid.Bytes))
	}
	if weatherID.Valid {
		wid := uuid.UUID(weatherID.Bytes)
		t.WeatherID = &wid
	}
	return t, nil
}
