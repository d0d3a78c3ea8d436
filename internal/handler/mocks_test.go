package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/handler"
	"github.com/trayananedelcheva/travel-buddy/internal/middleware"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
	"github.com/trayananedelcheva/travel-buddy/internal/service"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs.

type mockPlaceServicer struct {
	search          func(ctx context.Context, ownerID string, q places.Query) ([]domain.Place, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Place, error)
	getByExternalID func(ctx context.Context, externalID string) (domain.Place, error)
	searchByName    func(ctx context.Context, name string) ([]domain.Place, error)
	listOpen        func(ctx context.Context) ([]domain.Place, error)
	listByMinRating func(ctx context.Context, min float64) ([]domain.Place, error)
	isOpen          func(ctx context.Context, id uuid.UUID) (*bool, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	history         func(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error)
}

func (m *mockPlaceServicer) Search(ctx context.Context, ownerID string, q places.Query) ([]domain.Place, error) {
	return m.search(ctx, ownerID, q)
}
func (m *mockPlaceServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Place, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlaceServicer) GetByExternalID(ctx context.Context, externalID string) (domain.Place, error) {
	return m.getByExternalID(ctx, externalID)
}
func (m *mockPlaceServicer) SearchByName(ctx context.Context, name string) ([]domain.Place, error) {
	return m.searchByName(ctx, name)
}
func (m *mockPlaceServicer) ListOpen(ctx context.Context) ([]domain.Place, error) {
	return m.listOpen(ctx)
}
func (m *mockPlaceServicer) ListByMinRating(ctx context.Context, min float64) ([]domain.Place, error) {
	return m.listByMinRating(ctx, min)
}
func (m *mockPlaceServicer) IsOpen(ctx context.Context, id uuid.UUID) (*bool, error) {
	return m.isOpen(ctx, id)
}
func (m *mockPlaceServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPlaceServicer) History(ctx context.Context, ownerID string, limit int) ([]domain.SearchRecord, error) {
	return m.history(ctx, ownerID, limit)
}

var _ handler.PlaceServicer = (*mockPlaceServicer)(nil)

type mockTripServicer struct {
	create         func(ctx context.Context, ownerID string, in service.CreateTripInput) (domain.TripDetails, error)
	get            func(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error)
	list           func(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	upcoming       func(ctx context.Context, ownerID string) ([]domain.Trip, error)
	recommended    func(ctx context.Context, ownerID string) ([]domain.Trip, error)
	byStatus       func(ctx context.Context, ownerID, status string) ([]domain.Trip, error)
	searchByName   func(ctx context.Context, ownerID, name string) ([]domain.Trip, error)
	updateStatus   func(ctx context.Context, ownerID string, id uuid.UUID, status string) (domain.Trip, error)
	addPlace       func(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error)
	removePlace    func(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error)
	refreshWeather func(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error)
	delete         func(ctx context.Context, ownerID string, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, ownerID string, in service.CreateTripInput) (domain.TripDetails, error) {
	return m.create(ctx, ownerID, in)
}
func (m *mockTripServicer) Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error) {
	return m.get(ctx, ownerID, id)
}
func (m *mockTripServicer) List(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.list(ctx, ownerID, p)
}
func (m *mockTripServicer) Upcoming(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	return m.upcoming(ctx, ownerID)
}
func (m *mockTripServicer) Recommended(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	return m.recommended(ctx, ownerID)
}
func (m *mockTripServicer) ByStatus(ctx context.Context, ownerID, status string) ([]domain.Trip, error) {
	return m.byStatus(ctx, ownerID, status)
}
func (m *mockTripServicer) SearchByName(ctx context.Context, ownerID, name string) ([]domain.Trip, error) {
	return m.searchByName(ctx, ownerID, name)
}
func (m *mockTripServicer) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, status string) (domain.Trip, error) {
	return m.updateStatus(ctx, ownerID, id, status)
}
func (m *mockTripServicer) AddPlace(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error) {
	return m.addPlace(ctx, ownerID, tripID, placeID)
}
func (m *mockTripServicer) RemovePlace(ctx context.Context, ownerID string, tripID, placeID uuid.UUID) (domain.TripDetails, error) {
	return m.removePlace(ctx, ownerID, tripID, placeID)
}
func (m *mockTripServicer) RefreshWeather(ctx context.Context, ownerID string, id uuid.UUID) (domain.TripDetails, error) {
	return m.refreshWeather(ctx, ownerID, id)
}
func (m *mockTripServicer) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockValidationServicer struct {
	validate      func(ctx context.Context, ownerID string, tripID uuid.UUID) (domain.ValidationResult, error)
	isRecommended func(ctx context.Context, ownerID string, tripID uuid.UUID) (bool, error)
}

func (m *mockValidationServicer) Validate(ctx context.Context, ownerID string, tripID uuid.UUID) (domain.ValidationResult, error) {
	return m.validate(ctx, ownerID, tripID)
}
func (m *mockValidationServicer) IsRecommended(ctx context.Context, ownerID string, tripID uuid.UUID) (bool, error) {
	return m.isRecommended(ctx, ownerID, tripID)
}

var _ handler.ValidationServicer = (*mockValidationServicer)(nil)

type mockFavoriteServicer struct {
	add        func(ctx context.Context, ownerID string, placeID uuid.UUID) error
	remove     func(ctx context.Context, ownerID string, placeID uuid.UUID) error
	list       func(ctx context.Context, ownerID string) ([]domain.Place, error)
	isFavorite func(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error)
	count      func(ctx context.Context, ownerID string) (int64, error)
}

func (m *mockFavoriteServicer) Add(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	return m.add(ctx, ownerID, placeID)
}
func (m *mockFavoriteServicer) Remove(ctx context.Context, ownerID string, placeID uuid.UUID) error {
	return m.remove(ctx, ownerID, placeID)
}
func (m *mockFavoriteServicer) List(ctx context.Context, ownerID string) ([]domain.Place, error) {
	return m.list(ctx, ownerID)
}
func (m *mockFavoriteServicer) IsFavorite(ctx context.Context, ownerID string, placeID uuid.UUID) (bool, error) {
	return m.isFavorite(ctx, ownerID, placeID)
}
func (m *mockFavoriteServicer) Count(ctx context.Context, ownerID string) (int64, error) {
	return m.count(ctx, ownerID)
}

var _ handler.FavoriteServicer = (*mockFavoriteServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const testOwner = "user-1"

// fakeIdentity authenticates every request as testOwner.
func fakeIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithOwner(r.Context(), testOwner)))
	})
}

// newHTTPHandler wires a Server with the given mocks the same way main.go
// does, minus the real identity middleware.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, []byte("openapi: 3.0.3\n")).Handler(fakeIdentity)
}

func serve(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func f64(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }
