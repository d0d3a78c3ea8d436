package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/repo"
)

// Evaluator scores a trip and writes its verdict fields.
type Evaluator interface {
	Evaluate(trip *domain.Trip, places []domain.Place, weather *domain.WeatherSample) domain.ValidationResult
}

// ValidationService runs the feasibility evaluation for stored trips.
type ValidationService struct {
	tx     TxRunner
	engine Evaluator
}

// NewValidationService constructs a ValidationService. Every evaluation runs
// in its own transaction from tx.
func NewValidationService(tx TxRunner, engine Evaluator) *ValidationService {
	return &ValidationService{tx: tx, engine: engine}
}

// Validate evaluates the trip against its places and weather and persists
// the verdict. The trip row stays locked from read to write, so concurrent
// validations of one trip are serialised.
func (s *ValidationService) Validate(ctx context.Context, ownerID string, tripID uuid.UUID) (domain.ValidationResult, error) {
	var result domain.ValidationResult
	err := s.tx.WithTx(ctx, func(rs repo.Repos) error {
		trip, err := lockOwnedTrip(ctx, rs.Trips, ownerID, tripID)
		if err != nil {
			return err
		}
		details, err := loadDetails(ctx, rs.Places, rs.Weather, trip)
		if err != nil {
			return err
		}
		result = s.engine.Evaluate(&trip, details.Places, details.Weather)
		return rs.Trips.SaveEvaluation(ctx, trip)
	})
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("service.ValidationService.Validate: %w", err)
	}

	slog.InfoContext(ctx, "trip validated",
		"trip_id", tripID,
		"score", result.ConfidenceScore,
		"recommended", result.IsRecommended,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// IsRecommended evaluates the trip as it is now, persists the verdict like
// Validate and reports it.
func (s *ValidationService) IsRecommended(ctx context.Context, ownerID string, tripID uuid.UUID) (bool, error) {
	res, err := s.Validate(ctx, ownerID, tripID)
	if err != nil {
		return false, fmt.Errorf("service.ValidationService.IsRecommended: %w", err)
	}
	return res.IsRecommended, nil
}
