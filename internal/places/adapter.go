package places

import (
	"context"
	"errors"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// DefaultRadius is the search radius in metres when a query does not set one.
const DefaultRadius = 5000

// ErrMalformedPayload is returned when a provider response does not have the
// expected top-level shape.
var ErrMalformedPayload = errors.New("malformed provider payload")

// Query describes one place search. Text search is used when Text is set,
// otherwise a nearby search around Latitude/Longitude.
type Query struct {
	Text      string
	Latitude  *float64
	Longitude *float64
	Radius    int
	Type      string
}

// Nearby reports whether the query has coordinates.
func (q Query) Nearby() bool {
	return q.Latitude != nil && q.Longitude != nil
}

func (q Query) radius() int {
	if q.Radius > 0 {
		return q.Radius
	}
	return DefaultRadius
}

// Adapter is one place-data provider. Implementations return canonical places
// only; malformed records are dropped, never returned as errors. An error
// means the provider call as a whole failed.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q Query) ([]domain.Place, error)
	// Details returns domain.ErrNotFound when the provider knows no such id.
	Details(ctx context.Context, externalID string) (domain.Place, error)
}
