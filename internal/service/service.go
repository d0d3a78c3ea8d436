// Package service contains the business logic for the Travel Buddy API.
// Services validate inputs, enforce business rules, and orchestrate repo and
// provider calls. No SQL lives here; services depend on repo interfaces.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
)

// Forecaster returns the forecast sample closest to target, or nil when the
// provider has none for the location.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, target time.Time) (*domain.WeatherSample, error)
}

// TxRunner runs fn against repos bound to a single transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repo.Repos) error) error
}

const (
	maxNameLength = 200
	maxRadius     = 50000
)

// requireOwner rejects calls without a caller identity.
func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// validateCoordinates accepts both coordinates or neither.
func validateCoordinates(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return fmt.Errorf("%w: latitude and longitude must be given together", domain.ErrValidation)
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if *lon < -180 || *lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
