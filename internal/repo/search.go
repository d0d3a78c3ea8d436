package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// SearchHistoryRepo records the searches an owner ran.
type SearchHistoryRepo interface {
	Record(ctx context.Context, rec domain.SearchRecord) (domain.SearchRecord, error)

	// ListRecent returns at most limit records, newest first.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error)
}

type pgSearchHistoryRepo struct {
	db db
}

// NewSearchHistoryRepo constructs a SearchHistoryRepo backed by the provided db connection.
func NewSearchHistoryRepo(db db) SearchHistoryRepo {
	return &pgSearchHistoryRepo{db: db}
}

const searchColumns = `
	id, owner_id, search_type, query, latitude, longitude, radius, place_type,
	results_count, searched_at`

func (r *pgSearchHistoryRepo) Record(ctx context.Context, rec domain.SearchRecord) (domain.SearchRecord, error) {
	const q = `
		INSERT INTO search_history (
			owner_id, search_type, query, latitude, longitude, radius, place_type, results_count)
		VALUES (
			@owner_id, @search_type, @query, @latitude, @longitude, @radius, @place_type, @results_count)
		RETURNING ` + searchColumns

	args := pgx.NamedArgs{
		"owner_id":      rec.OwnerID,
		"search_type":   string(rec.Type),
		"query":         rec.Query,
		"latitude":      rec.Latitude,
		"longitude":     rec.Longitude,
		"radius":        rec.Radius,
		"place_type":    rec.PlaceType,
		"results_count": rec.ResultsCount,
	}

	result, err := scanSearch(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.SearchRecord{}, fmt.Errorf("repo.SearchHistoryRepo.Record: %w", err)
	}
	return result, nil
}

func (r *pgSearchHistoryRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error) {
	q := `
		SELECT ` + searchColumns + `
		FROM search_history
		WHERE owner_id = @owner_id
		ORDER BY searched_at DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.SearchHistoryRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	out := []domain.SearchRecord{}
	for rows.Next() {
		rec, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SearchHistoryRepo.ListRecent: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SearchHistoryRepo.ListRecent: rows: %w", err)
	}
	return out, nil
}

func scanSearch(s scanner) (domain.SearchRecord, error) {
	var (
		rec  domain.SearchRecord
		id   pgtype.UUID
		kind string
	)
	err := s.Scan(
		&id, &rec.OwnerID, &kind, &rec.Query, &rec.Latitude, &rec.Longitude, &rec.Radius,
		&rec.PlaceType, &rec.ResultsCount, &rec.SearchedAt,
	)
	if err != nil {
		return domain.SearchRecord{}, err
	}
	rec.ID = uuid.UUID(id.Bytes)
	rec.Type = domain.SearchType(kind)
	return rec, nil
}
