// Package main is the entry point for the Travel Buddy API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/trayananedelcheva/travel-buddy/internal/config"
	"github.com/trayananedelcheva/travel-buddy/internal/feasibility"
	"github.com/trayananedelcheva/travel-buddy/internal/handler"
	"github.com/trayananedelcheva/travel-buddy/internal/middleware"
	"github.com/trayananedelcheva/travel-buddy/internal/places"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
	"github.com/trayananedelcheva/travel-buddy/internal/service"
	"github.com/trayananedelcheva/travel-buddy/internal/upstream"
	"github.com/trayananedelcheva/travel-buddy/internal/weather"
	"github.com/trayananedelcheva/travel-buddy/migrations"
	"github.com/trayananedelcheva/travel-buddy/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Default slog handler until the configured logger exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	// --- Providers --------------------------------------------------------
	adapter, err := newAdapter(cfg)
	if err != nil {
		slog.Error("failed to configure places provider", "error", err)
		os.Exit(1)
	}
	slog.Info("places provider configured", "provider", adapter.Name())

	var cache weather.SeriesCache
	if cfg.RedisURL != "" {
		rc, err := weather.NewRedisCache(cfg.RedisURL)
		if err != nil {
			slog.Warn("forecast cache disabled", "error", err)
		} else if err := rc.Ping(ctx); err != nil {
			slog.Warn("forecast cache disabled", "error", err)
			rc.Close()
		} else {
			defer rc.Close()
			cache = rc
		}
	}
	forecaster := weather.NewOpenMeteo(upstream.New(upstream.Options{
		Name:           "open-meteo",
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
	}), cfg.WeatherBaseURL, cache, cfg.ForecastCacheTTL)

	// --- Services ---------------------------------------------------------
	repos := repo.NewRepos(pool)
	tx := repo.NewTxRunner(pool)

	srv := handler.NewServer(handler.Services{
		Places:     service.NewPlaceService(repos.Places, repos.Searches, adapter),
		Trips:      service.NewTripService(repos, tx, adapter, forecaster),
		Validation: service.NewValidationService(tx, feasibility.New(time.Now)),
		Favorites:  service.NewFavoriteService(repos.Favorites),
	}, spec.OpenAPI)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Handler(middleware.NewIdentity([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// Trip creation fans out to the provider and the forecast, so the write
	// budget covers a full round of outbound calls.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*(cfg.ConnectTimeout+cfg.ReadTimeout) + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations over a database/sql view of pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", len(applied))
	return nil
}

// newAdapter builds the places adapter selected by PLACES_PROVIDER.
func newAdapter(cfg config.Config) (places.Adapter, error) {
	opts := upstream.Options{
		Name:           cfg.PlacesProvider,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
	}

	switch cfg.PlacesProvider {
	case config.ProviderFoursquare:
		return places.NewFoursquare(upstream.New(opts), cfg.FoursquareAPIKey, cfg.FoursquareBaseURL), nil
	case config.ProviderGoogle:
		hc := upstream.NewHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout)
		g, err := places.NewGoogle(cfg.GooglePlacesAPIKey, hc, "")
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderNominatim:
		// Nominatim's usage policy allows one request per second.
		opts.RatePerSecond = 1
		return places.NewNominatim(upstream.New(opts), cfg.NominatimBaseURL, cfg.NominatimUserAgent), nil
	default:
		return nil, fmt.Errorf("unknown places provider %q", cfg.PlacesProvider)
	}
}
