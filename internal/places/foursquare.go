package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/upstream"
)

const (
	foursquareSource     = "foursquare"
	foursquareAPIVersion = "2025-06-17"
	foursquareBaseURL    = "https://places-api.foursquare.com"
	foursquareLimit      = 20
	foursquareDetails    = "hours,rating"

	// foursquareEnrichLimit bounds concurrent enrichment calls per search.
	foursquareEnrichLimit = 4
)

// Foursquare is the Adapter for the Foursquare Places API. Ratings arrive on a
// 0-10 scale.
type Foursquare struct {
	client  *upstream.Client
	apiKey  string
	baseURL string
	// Enrich fetches details and the first photo for every search result.
	Enrich bool
}

// NewFoursquare builds a Foursquare adapter. An empty baseURL, or the retired
// v3 host, resolves to the current Places API host.
func NewFoursquare(client *upstream.Client, apiKey, baseURL string) *Foursquare {
	if baseURL == "" || strings.Contains(baseURL, "api.foursquare.com/v3") {
		baseURL = foursquareBaseURL
	}
	return &Foursquare{
		client:  client,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		Enrich:  true,
	}
}

func (f *Foursquare) Name() string {
	return foursquareSource
}

// Search runs a text search when q.Text is set, otherwise a nearby search
// filtered by q.Type.
func (f *Foursquare) Search(ctx context.Context, q Query) ([]domain.Place, error) {
	text := q.Text
	if text == "" {
		if !q.Nearby() {
			return []domain.Place{}, nil
		}
		text = q.Type
	}

	values := url.Values{}
	values.Set("limit", strconv.Itoa(foursquareLimit))
	if text != "" {
		values.Set("query", text)
	}
	if q.Nearby() {
		values.Set("ll", fmt.Sprintf("%f,%f", *q.Latitude, *q.Longitude))
		values.Set("radius", strconv.Itoa(q.radius()))
	}

	var payload struct {
		Results *[]json.RawMessage `json:"results"`
	}
	if err := f.client.GetJSON(ctx, f.request("/places/search", values), &payload); err != nil {
		return nil, fmt.Errorf("places.Foursquare.Search: %w", err)
	}
	if payload.Results == nil {
		return nil, fmt.Errorf("places.Foursquare.Search: %w", ErrMalformedPayload)
	}

	out := NormalizeFoursquareResults(*payload.Results)
	if f.Enrich {
		var g errgroup.Group
		g.SetLimit(foursquareEnrichLimit)
		for i := range out {
			g.Go(func() error {
				f.enrich(ctx, &out[i])
				return nil
			})
		}
		_ = g.Wait()
	}
	slog.DebugContext(ctx, "foursquare search", "query", text, "results", len(*payload.Results), "places", len(out))
	return out, nil
}

// Details fetches a single place by fsq_place_id.
func (f *Foursquare) Details(ctx context.Context, externalID string) (domain.Place, error) {
	return f.details(ctx, externalID, "")
}

func (f *Foursquare) details(ctx context.Context, externalID, fields string) (domain.Place, error) {
	if strings.TrimSpace(externalID) == "" {
		return domain.Place{}, fmt.Errorf("places.Foursquare.Details: %w", domain.ErrNotFound)
	}
	values := url.Values{}
	if fields != "" {
		values.Set("fields", fields)
	}

	var raw json.RawMessage
	if err := f.client.GetJSON(ctx, f.request("/places/"+url.PathEscape(externalID), values), &raw); err != nil {
		if upstream.StatusCode(err) == http.StatusNotFound {
			return domain.Place{}, fmt.Errorf("places.Foursquare.Details: %w", errors.Join(domain.ErrNotFound, err))
		}
		return domain.Place{}, fmt.Errorf("places.Foursquare.Details: %w", err)
	}

	// The fields filter can omit id and name; the caller's id is authoritative.
	r, ok := parseRecord(raw)
	if !ok {
		return domain.Place{}, fmt.Errorf("places.Foursquare.Details: %w", ErrMalformedPayload)
	}
	p := foursquareFields(r)
	p.ExternalID = externalID
	return p, nil
}

// enrich fills rating, hours and openness from the details endpoint where the
// search result left them empty, and takes the first photo. Failures are
// ignored: enrichment is best effort.
func (f *Foursquare) enrich(ctx context.Context, p *domain.Place) {
	if d, err := f.details(ctx, p.ExternalID, foursquareDetails); err == nil {
		if p.Rating == nil {
			p.Rating = d.Rating
		}
		if p.OpeningTime == nil {
			p.OpeningTime = d.OpeningTime
		}
		if p.ClosingTime == nil {
			p.ClosingTime = d.ClosingTime
		}
		if p.CurrentlyOpen == nil {
			p.CurrentlyOpen = d.CurrentlyOpen
		}
	}

	values := url.Values{}
	values.Set("limit", "5")
	var photos []struct {
		Prefix string `json:"prefix"`
		Suffix string `json:"suffix"`
	}
	path := "/places/" + url.PathEscape(p.ExternalID) + "/photos"
	if err := f.client.GetJSON(ctx, f.request(path, values), &photos); err != nil {
		return
	}
	for _, ph := range photos {
		if ph.Prefix != "" && ph.Suffix != "" {
			p.PhotoURL = ph.Prefix + "original" + ph.Suffix
			return
		}
	}
}

func (f *Foursquare) request(path string, values url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		u := f.baseURL + path
		if len(values) > 0 {
			u += "?" + values.Encode()
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
		req.Header.Set("X-Places-Api-Version", foursquareAPIVersion)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

// NormalizeFoursquareResults maps a result list, dropping records that cannot
// be normalized.
func NormalizeFoursquareResults(results []json.RawMessage) []domain.Place {
	out := make([]domain.Place, 0, len(results))
	for _, raw := range results {
		if p, ok := NormalizeFoursquare(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeFoursquare maps one Foursquare result. It returns false when the
// record is not an object or has no fsq_place_id or name.
func NormalizeFoursquare(raw json.RawMessage) (domain.Place, bool) {
	r, ok := parseRecord(raw)
	if !ok {
		return domain.Place{}, false
	}
	p := foursquareFields(r)
	if !p.Valid() {
		return domain.Place{}, false
	}
	return p, true
}

func foursquareFields(r record) domain.Place {
	p := domain.Place{Source: foursquareSource}
	p.ExternalID, _ = r.str("fsq_place_id")
	p.Name, _ = r.str("name")

	if lat, ok := r.float("latitude"); ok {
		p.Latitude = ptr(lat)
	}
	if lng, ok := r.float("longitude"); ok {
		p.Longitude = ptr(lng)
	}

	if loc, ok := r.object("location"); ok {
		p.Address = loc.firstStr("formatted_address", "address")
		p.FormattedAddress, _ = loc.str("formatted_address")
		p.Locality, _ = loc.str("locality")
		p.Region, _ = loc.str("region")
		p.Country, _ = loc.str("country")
		p.Postcode, _ = loc.str("postcode")
	}

	if rating, ok := r.float("rating"); ok {
		setRating(&p, rating, ScaleTen)
	}
	if stats, ok := r.object("stats"); ok {
		if n, ok := stats.int("total_ratings"); ok && n >= 0 {
			p.RatingCount = ptr(n)
		}
	}

	if cats, ok := r.list("categories"); ok {
		var pairs []category
		for _, c := range cats {
			cr, ok := parseRecord(c)
			if !ok {
				continue
			}
			var cat category
			if name, ok := cr.str("name"); ok {
				cat.name = ptr(name)
			}
			if id, ok := cr.str("fsq_category_id"); ok {
				cat.id = ptr(id)
			}
			pairs = append(pairs, cat)
		}
		p.Categories, p.CategoryIDs = pairCategories(pairs)
	}

	if hours, ok := r.object("hours"); ok {
		if open, ok := hours.bool("open_now"); ok {
			p.CurrentlyOpen = ptr(open)
		}
		if regular, ok := hours.list("regular"); ok && len(regular) > 0 {
			if first, ok := parseRecord(regular[0]); ok {
				setHours(&p, first.strs("open", "start"), first.strs("close", "end"))
			}
		}
	}

	p.Phone, _ = r.str("tel")
	p.Website, _ = r.str("website")
	if d, ok := r.int("distance"); ok && d >= 0 {
		p.DistanceMeters = ptr(d)
	}
	p.Timezone, _ = r.str("timezone")
	p.ExternalLink, _ = r.str("link")
	return p
}
