package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"itinera/itinerary"
)

const (
	GeoapifyBaseURL     = "https://api.geoapify.com"
	GeoapifyStaticURL   = "https://maps.geoapify.com/v1/staticmap"
	googleMapsSearchURL = "https://www.google.com/maps/search/?api=1&query="
)

type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Geocoder resolves free-text places through the Geoapify geocoding API.
type Geocoder struct {
	client *resty.Client
	apiKey string
}

func NewGeocoder(baseURL, apiKey string, timeout time.Duration) *Geocoder {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Geocoder{client: c, apiKey: apiKey}
}

type geocodeResponse struct {
	Results []Coordinates `json:"results"`
}

// Search returns ok=false when nothing matched.
func (g *Geocoder) Search(ctx context.Context, text string) (Coordinates, bool, error) {
	var out geocodeResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"text":   text,
			"format": "json",
			"apiKey": g.apiKey,
		}).
		SetResult(&out).
		Get("/v1/geocode/search")
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("geocode request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Coordinates{}, false, fmt.Errorf("geocode error (%d): %s", resp.StatusCode(), resp.String())
	}
	if len(out.Results) == 0 {
		return Coordinates{}, false, nil
	}
	return out.Results[0], true, nil
}

// MapLinks builds map URLs for itinerary.Enrich. With a Geoapify key and a
// geocoder hit the link is a static map centred on the place; otherwise it
// is a Google Maps search for the text.
type MapLinks struct {
	apiKey   string
	geocoder *Geocoder

	mu     sync.Mutex
	coords map[string]*Coordinates
}

// NewMapLinks accepts a nil geocoder.
func NewMapLinks(apiKey string, geocoder *Geocoder) *MapLinks {
	return &MapLinks{apiKey: apiKey, geocoder: geocoder, coords: map[string]*Coordinates{}}
}

func (m *MapLinks) MapLink(location string) string {
	return m.link(context.Background(), location)
}

// ForContext binds lookups to ctx so a cancelled request stops geocoding.
func (m *MapLinks) ForContext(ctx context.Context) itinerary.LinkBuilder {
	return itinerary.LinkBuilderFunc(func(location string) string {
		return m.link(ctx, location)
	})
}

func (m *MapLinks) link(ctx context.Context, location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	if m.apiKey != "" && m.geocoder != nil {
		if c := m.lookup(ctx, location); c != nil {
			return StaticMapURL(m.apiKey, *c, location)
		}
	}
	return googleMapsSearchURL + url.QueryEscape(location)
}

// lookup caches misses as nil so a place is geocoded at most once.
func (m *MapLinks) lookup(ctx context.Context, location string) *Coordinates {
	m.mu.Lock()
	c, seen := m.coords[location]
	m.mu.Unlock()
	if seen {
		return c
	}

	found, ok, err := m.geocoder.Search(ctx, location)
	if err != nil {
		log.Debug().Err(err).Str("location", location).Msg("geocoding failed — using search link")
		return nil
	}
	if ok {
		c = &found
	}

	m.mu.Lock()
	m.coords[location] = c
	m.mu.Unlock()
	return c
}

func StaticMapURL(apiKey string, c Coordinates, label string) string {
	lonlat := fmt.Sprintf("lonlat:%g,%g", c.Lon, c.Lat)
	q := url.Values{}
	q.Set("style", "osm-bright")
	q.Set("width", "600")
	q.Set("height", "400")
	q.Set("center", lonlat)
	q.Set("zoom", "14")
	q.Set("marker", lonlat+";color:#ff0000;size:medium")
	q.Set("text", label)
	q.Set("apiKey", apiKey)
	return GeoapifyStaticURL + "?" + q.Encode()
}
