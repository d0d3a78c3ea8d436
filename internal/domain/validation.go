package domain

// OpenState is the open/closed/unknown verdict for a place.
type OpenState string

const (
	OpenStateOpen    OpenState = "OPEN"
	OpenStateClosed  OpenState = "CLOSED"
	OpenStateUnknown OpenState = "UNKNOWN"
)

// OpenStateOf maps the tri-state CurrentlyOpen flag to an OpenState.
func OpenStateOf(open *bool) OpenState {
	switch {
	case open == nil:
		return OpenStateUnknown
	case *open:
		return OpenStateOpen
	default:
		return OpenStateClosed
	}
}

// PlaceValidation is the per-place part of a ValidationResult.
type PlaceValidation struct {
	PlaceName           string
	OpenState           OpenState
	OpeningHoursMessage string
	Rating              *float64
	IsRecommended       bool
}

// ValidationResult is the transient output of one feasibility run.
// Warnings are kept in detection order.
type ValidationResult struct {
	ConfidenceScore       int
	IsRecommended         bool
	Weather               *WeatherSample
	PlaceValidations      []PlaceValidation
	OverallRecommendation string
	Warnings              []string
}
