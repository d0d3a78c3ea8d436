package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
	"github.com/trayananedelcheva/travel-buddy/internal/upstream"
)

const (
	nominatimSource  = "nominatim"
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	nominatimLimit   = "10"
	fallbackCity     = "nearby"
)

// Nominatim is the Adapter for OpenStreetMap Nominatim. It carries no ratings,
// hours or contact data. The usage policy allows one request per second, which
// the upstream client is expected to enforce.
type Nominatim struct {
	client    *upstream.Client
	baseURL   string
	userAgent string
}

// NewNominatim builds a Nominatim adapter.
func NewNominatim(client *upstream.Client, baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	return &Nominatim{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

func (n *Nominatim) Name() string {
	return nominatimSource
}

// Search runs a free-text search. A query with only coordinates reverse
// geocodes the city first and searches "<type> in <city>".
func (n *Nominatim) Search(ctx context.Context, q Query) ([]domain.Place, error) {
	text := q.Text
	if text == "" {
		if !q.Nearby() {
			return []domain.Place{}, nil
		}
		city := n.cityAt(ctx, *q.Latitude, *q.Longitude)
		text = city
		if q.Type != "" {
			text = q.Type + " in " + city
		}
	}

	values := url.Values{}
	values.Set("q", text)
	values.Set("format", "json")
	values.Set("limit", nominatimLimit)
	values.Set("addressdetails", "1")

	var results []json.RawMessage
	if err := n.client.GetJSON(ctx, n.request("/search", values), &results); err != nil {
		return nil, fmt.Errorf("places.Nominatim.Search: %w", err)
	}
	return NormalizeNominatimResults(results), nil
}

// Details looks a place up by OSM id (e.g. "N123", "W456").
func (n *Nominatim) Details(ctx context.Context, externalID string) (domain.Place, error) {
	if strings.TrimSpace(externalID) == "" {
		return domain.Place{}, fmt.Errorf("places.Nominatim.Details: %w", domain.ErrNotFound)
	}
	values := url.Values{}
	values.Set("osm_ids", externalID)
	values.Set("format", "json")
	values.Set("addressdetails", "1")

	var results []json.RawMessage
	if err := n.client.GetJSON(ctx, n.request("/lookup", values), &results); err != nil {
		return domain.Place{}, fmt.Errorf("places.Nominatim.Details: %w", err)
	}
	places := NormalizeNominatimResults(results)
	if len(places) == 0 {
		return domain.Place{}, fmt.Errorf("places.Nominatim.Details: %w", domain.ErrNotFound)
	}
	return places[0], nil
}

// cityAt reverse geocodes coordinates to a city, town or village name.
func (n *Nominatim) cityAt(ctx context.Context, lat, lon float64) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("format", "json")

	var raw json.RawMessage
	if err := n.client.GetJSON(ctx, n.request("/reverse", values), &raw); err != nil {
		return fallbackCity
	}
	r, ok := parseRecord(raw)
	if !ok {
		return fallbackCity
	}
	addr, ok := r.object("address")
	if !ok {
		return fallbackCity
	}
	if city := addr.firstStr("city", "town", "village"); city != "" {
		return city
	}
	return fallbackCity
}

func (n *Nominatim) request(path string, values url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, n.baseURL+path+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", n.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

// NormalizeNominatimResults maps a Nominatim result list, dropping records
// that cannot be normalized.
func NormalizeNominatimResults(results []json.RawMessage) []domain.Place {
	out := make([]domain.Place, 0, len(results))
	for _, raw := range results {
		if p, ok := NormalizeNominatim(raw); ok {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeNominatim maps one Nominatim record. place_id may be a number or a
// string. Records without a name fall back to the first part of display_name.
func NormalizeNominatim(raw json.RawMessage) (domain.Place, bool) {
	r, ok := parseRecord(raw)
	if !ok {
		return domain.Place{}, false
	}

	p := domain.Place{Source: nominatimSource}
	p.ExternalID, _ = r.str("place_id")
	p.Address, _ = r.str("display_name")
	p.FormattedAddress = p.Address
	p.Name, _ = r.str("name")
	if p.Name == "" && p.Address != "" {
		p.Name = strings.TrimSpace(strings.SplitN(p.Address, ",", 2)[0])
	}

	lat, latOK := r.float("lat")
	lon, lonOK := r.float("lon")
	if latOK && lonOK {
		p.Latitude = ptr(lat)
		p.Longitude = ptr(lon)
	}

	class, classOK := r.str("class")
	typ, typOK := r.str("type")
	if classOK && typOK {
		cat := class + ":" + typ
		p.Categories, p.CategoryIDs = pairCategories([]category{{name: ptr(cat), id: ptr(cat)}})
	}

	if addr, ok := r.object("address"); ok {
		p.Locality = addr.firstStr("city", "town", "village")
		p.Region, _ = addr.str("state")
		p.Country, _ = addr.str("country")
		p.Postcode, _ = addr.str("postcode")
	}

	if !p.Valid() {
		return domain.Place{}, false
	}
	return p, true
}
