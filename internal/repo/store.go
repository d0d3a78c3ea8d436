package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles every repo bound to the same connection or transaction.
type Repos struct {
	Places    PlaceRepo
	Trips     TripRepo
	Weather   WeatherRepo
	Favorites FavoriteRepo
	Searches  SearchHistoryRepo
}

// NewRepos binds all repos to db.
func NewRepos(db db) Repos {
	return Repos{
		Places:    NewPlaceRepo(db),
		Trips:     NewTripRepo(db),
		Weather:   NewWeatherRepo(db),
		Favorites: NewFavoriteRepo(db),
		Searches:  NewSearchHistoryRepo(db),
	}
}

// TxRunner runs a function against repos bound to one transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constructs a TxRunner on pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise.
func (t *TxRunner) WithTx(ctx context.Context, fn func(Repos) error) error {
	err := pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.TxRunner.WithTx: %w", err)
	}
	return nil
}

// escapeLike escapes the LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// qualified prefixes each column in a comma-separated list with alias.
func qualified(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
