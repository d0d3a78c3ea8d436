package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
)

func TestFavoriteRepo(t *testing.T) {
	rs := repo.NewRepos(newTestTx(t))
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	p, err := rs.Places.Upsert(ctx, placeFixture())
	require.NoError(t, err)

	require.NoError(t, rs.Favorites.Add(ctx, owner, p.ID))
	require.NoError(t, rs.Favorites.Add(ctx, owner, p.ID), "adding twice is a no-op")

	ok, err := rs.Favorites.Exists(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := rs.Favorites.Count(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := rs.Favorites.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, p.Categories, list[0].Categories)

	other, err := rs.Favorites.Count(ctx, "someone-else")
	require.NoError(t, err)
	assert.Zero(t, other)

	require.NoError(t, rs.Favorites.Remove(ctx, owner, p.ID))
	assert.ErrorIs(t, rs.Favorites.Remove(ctx, owner, p.ID), domain.ErrNotFound)
}

func TestFavoriteRepo_Add_UnknownPlace(t *testing.T) {
	rs := repo.NewRepos(newTestTx(t))

	err := rs.Favorites.Add(context.Background(), "alice", uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchHistoryRepo(t *testing.T) {
	rs := repo.NewRepos(newTestTx(t))
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	lat, lon, radius := 42.7, 23.3, 1500
	rec, err := rs.Searches.Record(ctx, domain.SearchRecord{
		OwnerID:      owner,
		Type:         domain.SearchNearby,
		Latitude:     &lat,
		Longitude:    &lon,
		Radius:       &radius,
		PlaceType:    "museum",
		ResultsCount: 7,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)

	_, err = rs.Searches.Record(ctx, domain.SearchRecord{OwnerID: owner, Type: domain.SearchText, Query: "pizza"})
	require.NoError(t, err)

	recent, err := rs.Searches.ListRecent(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, r := range recent {
		if r.Type == domain.SearchNearby {
			require.NotNil(t, r.Radius)
			assert.Equal(t, 1500, *r.Radius)
			assert.Equal(t, "museum", r.PlaceType)
		}
	}

	limited, err := rs.Searches.ListRecent(ctx, owner, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
