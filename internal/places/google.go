package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

const googleSource = "google"

var googleDetailFields = []maps.PlaceDetailsFieldMask{
	"place_id", "name", "formatted_address", "geometry", "rating", "user_ratings_total",
	"opening_hours", "types", "formatted_phone_number", "website", "url", "business_status",
}

// Google is the Adapter for the Google Places API. Ratings are already 0-5.
type Google struct {
	client *maps.Client
}

// NewGoogle builds a Google adapter. baseURL is only set in tests.
func NewGoogle(apiKey string, hc *http.Client, baseURL string) (*Google, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if hc != nil {
		opts = append(opts, maps.WithHTTPClient(hc))
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("places.NewGoogle: %w", err)
	}
	return &Google{client: c}, nil
}

func (g *Google) Name() string {
	return googleSource
}

// Search runs a text search when q.Text is set, otherwise a nearby search.
func (g *Google) Search(ctx context.Context, q Query) ([]domain.Place, error) {
	var (
		resp maps.PlacesSearchResponse
		err  error
	)
	switch {
	case q.Text != "":
		req := &maps.TextSearchRequest{Query: q.Text, Type: maps.PlaceType(q.Type)}
		if q.Nearby() {
			req.Location = &maps.LatLng{Lat: *q.Latitude, Lng: *q.Longitude}
			req.Radius = uint(q.radius())
		}
		resp, err = g.client.TextSearch(ctx, req)
	case q.Nearby():
		resp, err = g.client.NearbySearch(ctx, &maps.NearbySearchRequest{
			Location: &maps.LatLng{Lat: *q.Latitude, Lng: *q.Longitude},
			Radius:   uint(q.radius()),
			Type:     maps.PlaceType(q.Type),
		})
	default:
		return []domain.Place{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("places.Google.Search: %w", err)
	}

	out := make([]domain.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		if p, ok := NormalizeGoogle(r); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Details fetches one place by place_id.
func (g *Google) Details(ctx context.Context, externalID string) (domain.Place, error) {
	if strings.TrimSpace(externalID) == "" {
		return domain.Place{}, fmt.Errorf("places.Google.Details: %w", domain.ErrNotFound)
	}
	res, err := g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: externalID,
		Fields:  googleDetailFields,
	})
	if err != nil {
		if strings.Contains(err.Error(), "NOT_FOUND") || strings.Contains(err.Error(), "INVALID_REQUEST") {
			return domain.Place{}, fmt.Errorf("places.Google.Details: %w", errors.Join(domain.ErrNotFound, err))
		}
		return domain.Place{}, fmt.Errorf("places.Google.Details: %w", err)
	}
	if res.PlaceID == "" {
		res.PlaceID = externalID
	}
	p, ok := NormalizeGoogleDetails(res)
	if !ok {
		return domain.Place{}, fmt.Errorf("places.Google.Details: %w", domain.ErrNotFound)
	}
	return p, nil
}

// NormalizeGoogle maps one search result. It returns false without a
// place_id or name.
func NormalizeGoogle(r maps.PlacesSearchResult) (domain.Place, bool) {
	p := domain.Place{
		Source:           googleSource,
		ExternalID:       r.PlaceID,
		Name:             r.Name,
		Address:          r.FormattedAddress,
		FormattedAddress: r.FormattedAddress,
	}
	if p.Address == "" {
		p.Address = r.Vicinity
	}
	googleCommon(&p, r.Geometry, r.Rating, r.UserRatingsTotal, r.Types, r.OpeningHours, r.BusinessStatus)
	if !p.Valid() {
		return domain.Place{}, false
	}
	return p, true
}

// NormalizeGoogleDetails maps a details result, which additionally carries
// contact fields.
func NormalizeGoogleDetails(r maps.PlaceDetailsResult) (domain.Place, bool) {
	p := domain.Place{
		Source:           googleSource,
		ExternalID:       r.PlaceID,
		Name:             r.Name,
		Address:          r.FormattedAddress,
		FormattedAddress: r.FormattedAddress,
		Phone:            r.FormattedPhoneNumber,
		Website:          r.Website,
		ExternalLink:     r.URL,
	}
	googleCommon(&p, r.Geometry, r.Rating, r.UserRatingsTotal, r.Types, r.OpeningHours, r.BusinessStatus)
	if !p.Valid() {
		return domain.Place{}, false
	}
	return p, true
}

func googleCommon(p *domain.Place, geo maps.AddressGeometry, rating float32, total int, types []string, hours *maps.OpeningHours, status string) {
	// The SDK decodes a missing geometry as 0,0.
	if geo.Location.Lat != 0 || geo.Location.Lng != 0 {
		p.Latitude = ptr(geo.Location.Lat)
		p.Longitude = ptr(geo.Location.Lng)
	}

	// Google ratings start at 1.0; zero means the place has none.
	if rating > 0 {
		setRating(p, float64(rating), ScaleFive)
	}
	if total > 0 || rating > 0 {
		p.RatingCount = ptr(total)
	}

	// Google types are both the display name and the identifier.
	pairs := make([]category, 0, len(types))
	for _, t := range types {
		pairs = append(pairs, category{name: ptr(t), id: ptr(t)})
	}
	p.Categories, p.CategoryIDs = pairCategories(pairs)

	if hours != nil {
		if hours.OpenNow != nil {
			p.CurrentlyOpen = ptr(*hours.OpenNow)
		}
		if len(hours.Periods) > 0 {
			first := hours.Periods[0]
			setHours(p, []string{first.Open.Time}, []string{first.Close.Time})
		}
	}
	if status == "CLOSED_PERMANENTLY" || status == "CLOSED_TEMPORARILY" {
		p.CurrentlyOpen = ptr(false)
	}
}
