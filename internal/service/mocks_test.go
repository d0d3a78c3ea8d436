package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
	"github.com/trayananedelcheva/travel-buddy/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. An unset field panics when called, which fails the test.

// ---- mockPlaceRepo ---------------------------------------------------------

type mockPlaceRepo struct {
	upsert          func(ctx context.Context, p domain.Place) (domain.Place, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Place, error)
	getByExternalID func(ctx context.Context, externalID string) (domain.Place, error)
	listByIDs       func(ctx context.Context, ids []uuid.UUID) ([]domain.Place, error)
	searchByName    func(ctx context.Context, name string) ([]domain.Place, error)
	listOpen        func(ctx context.Context) ([]domain.Place, error)
	listByMinRating func(ctx context.Context, min float64) ([]domain.Place, error)
	delete          func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPlaceRepo) Upsert(ctx context.Context, p domain.Place) (domain.Place, error) {
	return m.upsert(ctx, p)
}
func (m *mockPlaceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlaceRepo) GetByExternalID(ctx context.Context, externalID string) (domain.Place, error) {
	return m.getByExternalID(ctx, externalID)
}
func (m *mockPlaceRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Place, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockPlaceRepo) SearchByName(ctx context.Context, name string) ([]domain.Place, error) {
	return m.searchByName(ctx, name)
}
func (m *mockPlaceRepo) ListOpen(ctx context.Context) ([]domain.Place, error) {
	return m.listOpen(ctx)
}
func (m *mockPlaceRepo) ListByMinRating(ctx context.Context, min float64) ([]domain.Place, error) {
	return m.listByMinRating(ctx, min)
}
func (m *mockPlaceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

// ---- mockTripRepo ----------------------------------------------------------

type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	getForUpdate    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByOwner     func(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	listUpcoming    func(ctx context.Context, ownerID string, now time.Time) ([]domain.Trip, error)
	listRecommended func(ctx context.Context, ownerID string) ([]domain.Trip, error)
	listByStatus    func(ctx context.Context, ownerID string, status domain.TripStatus) ([]domain.Trip, error)
	searchByName    func(ctx context.Context, ownerID, name string) ([]domain.Trip, error)
	updateStatus    func(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error)
	saveEvaluation  func(ctx context.Context, trip domain.Trip) error
	setWeather      func(ctx context.Context, id uuid.UUID, weatherID *uuid.UUID) error
	addPlace        func(ctx context.Context, tripID, placeID uuid.UUID) error
	removePlace     func(ctx context.Context, tripID, placeID uuid.UUID) error
	delete          func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getForUpdate(ctx, id)
}
func (m *mockTripRepo) ListByOwner(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByOwner(ctx, ownerID, p)
}
func (m *mockTripRepo) ListUpcoming(ctx context.Context, ownerID string, now time.Time) ([]domain.Trip, error) {
	return m.listUpcoming(ctx, ownerID, now)
}
func (m *mockTripRepo) ListRecommended(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	return m.listRecommended(ctx, ownerID)
}
func (m *mockTripRepo) ListByStatus(ctx context.Context, ownerID string, status domain.TripStatus) ([]domain.Trip, error) {
	return m.listByStatus(ctx, ownerID, status)
}
func (m *mockTripRepo) SearchByName(ctx context.Context, ownerID, name string) ([]domain.Trip, error) {
	return m.searchByName(ctx, ownerID, name)
}
func (m *mockTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockTripRepo) SaveEvaluation(ctx context.Context, trip domain.Trip) error {
	return m.saveEvaluation(ctx, trip)
}
func (m *mockTripRepo) SetWeather(ctx context.Context, id uuid.UUID, weatherID *uuid.UUID) error {
	return m.setWeather(ctx, id, weatherID)
}
func (m *mockTripRepo) AddPlace(ctx context.Context, tripID, placeID uuid.UUID) error {
	return m.addPlace(ctx, tripID, placeID)
}
func (m *mockTripRepo) RemovePlace(ctx context.Context, tripID, placeID uuid.UUID) error {
	return m.removePlace(ctx, tripID, placeID)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- mockWeatherRepo -------------------------------------------------------

type mockWeatherRepo struct {
	create  func(ctx context.Context, w domain.WeatherSample) (domain.WeatherSample, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.WeatherSample, error)
}

func (m *mockWeatherRepo) Create(ctx context.Context, w domain.WeatherSample) (domain.WeatherSample, error) {
	return m.create(ctx, w)
}
func (m *mockWeatherRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.WeatherSample, error) {
	return m.getByID(ctx, id)
}

var _ repo.WeatherRepo = (*mockWeatherRepo)(nil)

// ---- mockSearchRepo --------------------------------------------------------

type mockSearchRepo struct {
	record     func(ctx context.Context, rec domain.SearchRecord) (domain.SearchRecord, error)
	listRecent func(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error)
}

func (m *mockSearchRepo) Record(ctx context.Context, rec domain.SearchRecord) (domain.SearchRecord, error) {
	return m.record(ctx, rec)
}
func (m *mockSearchRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error) {
	return m.listRecent(ctx, ownerID, limit)
}

var _ repo.SearchHistoryRepo = (*mockSearchRepo)(nil)

// ---- mockFavoriteRepo ------------------------------------------------------

type mockFavoriteRepo struct {
	add    func(ctx context.Context, ownerID string, placeID uuid.UUID) error
	remove func(ctx context.Context, ownerID string, placeID uuid.UUID) error
	list   func(ctx context.Context, ownerID string) ([]domain.Place, error)
	exists func(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error)
	count  func(ctx context.Context, ownerID string) (int64, error)
}

func (m *mockFavoriteRepo) Add(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	return m.add(ctx, ownerID, placeID)
}
func (m *mockFavoriteRepo) Remove(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	return m.remove(ctx, ownerID, placeID)
}
func (m *mockFavoriteRepo) List(ctx context.Context, ownerID string) ([]domain.Place, error) {
	return m.list(ctx, ownerID)
}
func (m *mockFavoriteRepo) Exists(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error) {
	return m.exists(ctx, ownerID, placeID)
}
func (m *mockFavoriteRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	return m.count(ctx, ownerID)
}

var _ repo.FavoriteRepo = (*mockFavoriteRepo)(nil)

// ---- mockAdapter -----------------------------------------------------------

type mockAdapter struct {
	search  func(ctx context.Context, q places.Query) ([]domain.Place, error)
	details func(ctx context.Context, externalID string) (domain.Place, error)
}

func (m *mockAdapter) Name() string { return "mock" }
func (m *mockAdapter) Search(ctx context.Context, q places.Query) ([]domain.Place, error) {
	return m.search(ctx, q)
}
func (m *mockAdapter) Details(ctx context.Context, externalID string) (domain.Place, error) {
	return m.details(ctx, externalID)
}

var _ places.Adapter = (*mockAdapter)(nil)

// ---- mockForecaster --------------------------------------------------------

type mockForecaster struct {
	forecast func(ctx context.Context, lat, lon float64, target time.Time) (*domain.WeatherSample, error)
}

func (m *mockForecaster) Forecast(ctx context.Context, lat, lon float64, target time.Time) (*domain.WeatherSample, error) {
	return m.forecast(ctx, lat, lon, target)
}

var _ service.Forecaster = (*mockForecaster)(nil)

// ---- fakeTx ----------------------------------------------------------------

// fakeTx runs fn against the given repos without a real transaction and
// counts how often it was entered.
type fakeTx struct {
	repos repo.Repos
	calls int
}

func (f *fakeTx) WithTx(_ context.Context, fn func(repo.Repos) error) error {
	f.calls++
	return fn(f.repos)
}

var _ service.TxRunner = (*fakeTx)(nil)

// ---- helpers ---------------------------------------------------------------

const owner = "user-1"

func f64(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }
