package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchType distinguishes how a place search was issued.
type SearchType string

const (
	SearchText   SearchType = "PLACE_TEXT_SEARCH"
	SearchNearby SearchType = "PLACE_NEARBY_SEARCH"
	SearchTrip   SearchType = "TRIP_CREATION"
)

// SearchRecord is one entry of a user's search history.
type SearchRecord struct {
	ID           uuid.UUID
	OwnerID      string
	Type         SearchType
	Query        string
	Latitude     *float64
	Longitude    *float64
	Radius       *int
	PlaceType    string
	ResultsCount int
	SearchedAt   time.Time
}
