package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a local wall-clock time without a date, e.g. an opening hour.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay returns a TimeOfDay, or false when hour or minute is out of range.
func NewTimeOfDay(hour, minute int) (TimeOfDay, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: hour, Minute: minute}, true
}

// String formats the time as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Duration returns the offset of t from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// Place is the provider-agnostic representation of a point of interest.
//
// ExternalID is the provider-issued identifier and the merge key: two records
// with the same ExternalID describe the same place. ID is assigned by storage.
//
// Nullable provider fields are pointers. CurrentlyOpen is tri-state: nil means
// the provider reported no hours at all, which is not the same as closed.
// Categories and CategoryIDs are parallel: index i in both describes one category.
type Place struct {
	ID         uuid.UUID
	ExternalID string
	Source     string
	Name       string

	Address          string
	FormattedAddress string
	Locality         string
	Region           string
	Country          string
	Postcode         string

	Latitude  *float64
	Longitude *float64

	Rating      *float64 // 0.0-5.0
	RatingCount *int

	Categories  []string
	CategoryIDs []string

	OpeningTime   *TimeOfDay
	ClosingTime   *TimeOfDay
	CurrentlyOpen *bool

	DistanceMeters *int
	Timezone       string
	ExternalLink   string
	Phone          string
	Website        string
	PhotoURL       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether the place carries the fields required to be stored.
func (p Place) Valid() bool {
	return p.ExternalID != "" && p.Name != ""
}

// HasCoordinates reports whether both latitude and longitude are known.
func (p Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
