package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// WeatherRepo stores the forecast samples attached to trips.
type WeatherRepo interface {
	Create(ctx context.Context, w domain.WeatherSample) (domain.WeatherSample, error)

	// GetByID returns domain.ErrNotFound if no sample has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.WeatherSample, error)
}

type pgWeatherRepo struct {
	db db
}

// NewWeatherRepo constructs a WeatherRepo backed by the provided db connection.
func NewWeatherRepo(db db) WeatherRepo {
	return &pgWeatherRepo{db: db}
}

const weatherColumns = `
	id, latitude, longitude, forecast_time, temperature_c, humidity_pct, wind_speed_kmh,
	precipitation_pct, weather_code, weather_description, suitable_for_trip, fetched_at`

func (r *pgWeatherRepo) Create(ctx context.Context, w domain.WeatherSample) (domain.WeatherSample, error) {
	const q = `
		INSERT INTO weather_samples (
			latitude, longitude, forecast_time, temperature_c, humidity_pct, wind_speed_kmh,
			precipitation_pct, weather_code, weather_description, suitable_for_trip, fetched_at)
		VALUES (
			@latitude, @longitude, @forecast_time, @temperature_c, @humidity_pct, @wind_speed_kmh,
			@precipitation_pct, @weather_code, @weather_description, @suitable_for_trip,
			coalesce(@fetched_at, now()))
		RETURNING ` + weatherColumns

	var fetchedAt any
	if !w.FetchedAt.IsZero() {
		fetchedAt = w.FetchedAt
	}
	args := pgx.NamedArgs{
		"latitude":            w.Latitude,
		"longitude":           w.Longitude,
		"forecast_time":       w.ForecastTime,
		"temperature_c":       w.TemperatureC,
		"humidity_pct":        w.HumidityPct,
		"wind_speed_kmh":      w.WindSpeedKmh,
		"precipitation_pct":   w.PrecipitationPct,
		"weather_code":        w.WeatherCode,
		"weather_description": w.WeatherDescription,
		"suitable_for_trip":   w.SuitableForTrip,
		"fetched_at":          fetchedAt,
	}

	result, err := scanWeather(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.WeatherSample{}, fmt.Errorf("repo.WeatherRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgWeatherRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.WeatherSample, error) {
	q := `SELECT ` + weatherColumns + ` FROM weather_samples WHERE id = @id`

	result, err := scanWeather(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.WeatherSample{}, fmt.Errorf("repo.WeatherRepo.GetByID: %w", err)
	}
	return result, nil
}

func scanWeather(s scanner) (domain.WeatherSample, error) {
	var (
		w  domain.WeatherSample
		id pgtype.UUID
	)
	err := s.Scan(
		&id, &w.Latitude, &w.Longitude, &w.ForecastTime, &w.TemperatureC, &w.HumidityPct,
		&w.WindSpeedKmh, &w.PrecipitationPct, &w.WeatherCode, &w.WeatherDescription,
		&w.SuitableForTrip, &w.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WeatherSample{}, domain.ErrNotFound
		}
		return domain.WeatherSample{}, err
	}
	w.ID = uuid.UUID(id.Bytes)
	return w, nil
}
