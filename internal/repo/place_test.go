package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
	"github.com/trayananedelcheva/travel-buddy/testutil"
)

// newTestTx opens a transaction against the test database that is rolled back
// when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int { return &v }
func boolp(v bool) *bool { return &v }

// placeFixture returns a fully populated place with a unique external id.
func placeFixture() domain.Place {
	nine := domain.TimeOfDay{Hour: 9, Minute: 30}
	six := domain.TimeOfDay{Hour: 18}
	return domain.Place{
		ExternalID:       "fsq-" + uuid.NewString(),
		Source:           "foursquare",
		Name:             "National History Museum",
		Address:          "Vitoshko Lale 16, Sofia",
		FormattedAddress: "Vitoshko Lale 16, Sofia",
		Locality:         "Sofia",
		Country:          "BG",
		Latitude:         f64(42.6519),
		Longitude:        f64(23.2669),
		Rating:           f64(4.3),
		RatingCount:      intp(412),
		Categories:       []string{"History Museum", "Museum"},
		CategoryIDs:      []string{"c1", "c2"},
		OpeningTime:      &nine,
		ClosingTime:      &six,
		CurrentlyOpen:    boolp(true),
		Website:          "https://historymuseum.org",
	}
}

func TestPlaceRepo_Upsert_Creates(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))
	ctx := context.Background()

	in := placeFixture()
	got, err := r.Upsert(ctx, in)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, in.ExternalID, got.ExternalID)
	assert.Equal(t, in.Categories, got.Categories)
	assert.Equal(t, in.CategoryIDs, got.CategoryIDs)
	require.NotNil(t, got.OpeningTime)
	assert.Equal(t, "09:30", got.OpeningTime.String())
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.3, *got.Rating, 1e-9)
	assert.Nil(t, got.DistanceMeters)
}

func TestPlaceRepo_Upsert_Idempotent(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))
	ctx := context.Background()

	in := placeFixture()
	first, err := r.Upsert(ctx, in)
	require.NoError(t, err)

	second, err := r.Upsert(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeating an upsert must not change anything")
}

func TestPlaceRepo_Upsert_OverwritesKeepingID(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))
	ctx := context.Background()

	in := placeFixture()
	first, err := r.Upsert(ctx, in)
	require.NoError(t, err)

	in.Name = "Museum of National History"
	in.Rating = nil
	in.CurrentlyOpen = boolp(false)
	in.Categories, in.CategoryIDs = nil, nil
	second, err := r.Upsert(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Museum of National History", second.Name)
	assert.Nil(t, second.Rating)
	require.NotNil(t, second.CurrentlyOpen)
	assert.False(t, *second.CurrentlyOpen)
	assert.Empty(t, second.Categories)
}

func TestPlaceRepo_Upsert_RejectsInvalid(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))

	_, err := r.Upsert(context.Background(), domain.Place{Name: "no external id"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Runs against the pool, not a test transaction, so the upserts really race.
func TestPlaceRepo_Upsert_ConcurrentSameExternalID(t *testing.T) {
	pool := testutil.NewPool(t)
	r := repo.NewPlaceRepo(pool)
	ctx := context.Background()

	in := placeFixture()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM places WHERE external_id = $1`, in.ExternalID)
	})

	const workers = 8
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Upsert(ctx, in)
			ids[i], errs[i] = p.ID, err
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM places WHERE external_id = $1`, in.ExternalID).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestPlaceRepo_Lookups(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))
	ctx := context.Background()

	a := placeFixture()
	a.Name = "Zebra Café 100%"
	a.Rating = f64(2.0)
	b := placeFixture()
	b.Name = "Alpine Hut"
	b.CurrentlyOpen = nil
	b.Rating = f64(4.9)

	pa, err := r.Upsert(ctx, a)
	require.NoError(t, err)
	pb, err := r.Upsert(ctx, b)
	require.NoError(t, err)

	got, err := r.GetByExternalID(ctx, a.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, pa.ID, got.ID)

	got, err = r.GetByID(ctx, pb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpine Hut", got.Name)

	list, err := r.ListByIDs(ctx, []uuid.UUID{pb.ID, uuid.New(), pa.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, pb.ID, list[0].ID, "order follows the requested ids")
	assert.Equal(t, pa.ID, list[1].ID)

	byName, err := r.SearchByName(ctx, "café 100%")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, pa.ID, byName[0].ID)

	rated, err := r.ListByMinRating(ctx, 4.5)
	require.NoError(t, err)
	assert.Contains(t, placeIDs(rated), pb.ID)
	assert.NotContains(t, placeIDs(rated), pa.ID)

	open, err := r.ListOpen(ctx)
	require.NoError(t, err)
	assert.Contains(t, placeIDs(open), pa.ID)
	assert.NotContains(t, placeIDs(open), pb.ID, "unknown hours are not open")
}

func TestPlaceRepo_NotFound(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))
	ctx := context.Background()

	_, err := r.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.GetByExternalID(ctx, "never-seen")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = r.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlaceRepo_Delete(t *testing.T) {
	r := repo.NewPlaceRepo(newTestTx(t))
	ctx := context.Background()

	p, err := r.Upsert(ctx, placeFixture())
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, p.ID))

	_, err = r.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func placeIDs(places []domain.Place) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	return ids
}
