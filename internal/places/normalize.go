// Package places turns provider-specific place records into domain.Place
// values. Every provider has an Adapter that issues the search and a
// normalizer that maps its payload; the rest of the system only ever sees
// canonical places.
package places

import (
	"math"
	"strconv"
	"strings"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

// RatingScale is the upper bound of a provider's native rating scale.
type RatingScale float64

const (
	ScaleFive RatingScale = 5
	ScaleTen  RatingScale = 10
)

// NormalizeRating converts a native rating to the canonical 0-5 scale.
// Values outside the native scale are rejected.
func NormalizeRating(raw float64, scale RatingScale) (float64, bool) {
	if math.IsNaN(raw) || raw < 0 || raw > float64(scale) {
		return 0, false
	}
	if scale == ScaleTen {
		return raw / 2.0, true
	}
	return raw, true
}

// ParseHHMM parses a provider time of day such as "0930". A single ":" is
// tolerated ("09:30"); anything that is not exactly four digits afterwards is
// rejected rather than guessed.
func ParseHHMM(s string) (domain.TimeOfDay, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if len(raw) != 4 {
		return domain.TimeOfDay{}, false
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return domain.TimeOfDay{}, false
		}
	}
	hour, _ := strconv.Atoi(raw[:2])
	minute, _ := strconv.Atoi(raw[2:])
	return domain.NewTimeOfDay(hour, minute)
}

// category is one provider category; either part may be missing.
type category struct {
	name *string
	id   *string
}

// pairCategories keeps names and ids in lock-step. An entry missing either
// part is dropped as a whole so index i always describes one category. This
// deliberately differs from the provider's own lists: a half-present category
// does not keep its name or its id.
func pairCategories(cats []category) (names, ids []string) {
	for _, c := range cats {
		if c.name == nil || c.id == nil {
			continue
		}
		names = append(names, *c.name)
		ids = append(ids, *c.id)
	}
	return names, ids
}

// setRating applies NormalizeRating and leaves the field nil on rejection.
func setRating(p *domain.Place, raw float64, scale RatingScale) {
	if v, ok := NormalizeRating(raw, scale); ok {
		p.Rating = &v
	}
}

// setHours takes candidate opening and closing strings in preference order;
// the first that parses wins.
func setHours(p *domain.Place, opens, closes []string) {
	for _, s := range opens {
		if t, ok := ParseHHMM(s); ok {
			p.OpeningTime = &t
			break
		}
	}
	for _, s := range closes {
		if t, ok := ParseHHMM(s); ok {
			p.ClosingTime = &t
			break
		}
	}
}
