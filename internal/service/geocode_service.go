package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/farmsight/backend/internal/domain"
)

var (
	// ErrNoResults is returned when a geocoding backend finds no match.
	ErrNoResults = errors.New("geocode: no results for location")

	// ErrGeocodeFailed is returned when every candidate location string failed.
	ErrGeocodeFailed = errors.New("geocode: all location candidates failed")
)

// Geocoder abstracts a geocoding backend.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, location string) (domain.Coordinates, error)
}

// GeocodeService resolves location strings through an ordered backend chain.
type GeocodeService struct {
	backends []Geocoder
}

// NewGeocodeService creates a geocode service. The Open-Meteo backend is always
// present; Google is appended when an API key is configured.
func NewGeocodeService(client *http.Client, googleAPIKey, country string) *GeocodeService {
	backends := []Geocoder{newOpenMeteoGeocoder(client)}
	if googleAPIKey != "" {
		backends = append(backends, newGoogleGeocoder(googleAPIKey, country))
	}
	return &GeocodeService{backends: backends}
}

// NewGeocodeServiceFromBackends builds a service over an explicit backend
// chain. Used by tests and custom compositions.
func NewGeocodeServiceFromBackends(backends ...Geocoder) *GeocodeService {
	return &GeocodeService{backends: backends}
}

// Resolve geocodes a single location string, trying each backend in order.
func (s *GeocodeService) Resolve(ctx context.Context, location string) (domain.Coordinates, error) {
	var lastErr error = ErrNoResults
	for _, b := range s.backends {
		coords, err := b.Geocode(ctx, location)
		if err == nil {
			return coords, nil
		}
		if ctx.Err() != nil {
			return domain.Coordinates{}, ctx.Err()
		}
		log.Printf("geocode: backend %s failed for %q: %v", b.Name(), location, err)
		lastErr = err
	}
	return domain.Coordinates{}, lastErr
}

// ResolveFirst tries candidate location strings strictly in order and returns
// the first successful resolution along with the query that matched.
func (s *GeocodeService) ResolveFirst(ctx context.Context, candidates []string) (domain.ResolvedLocation, error) {
	for _, candidate := range candidates {
		coords, err := s.Resolve(ctx, candidate)
		if err == nil {
			return domain.ResolvedLocation{Query: candidate, Coordinates: coords}, nil
		}
		if ctx.Err() != nil {
			return domain.ResolvedLocation{}, ctx.Err()
		}
	}
	return domain.ResolvedLocation{}, ErrGeocodeFailed
}

// openMeteoGeocoder resolves names through the free Open-Meteo geocoding API.
type openMeteoGeocoder struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func newOpenMeteoGeocoder(client *http.Client) *openMeteoGeocoder {
	return &openMeteoGeocoder{
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		client:  client,
		circuit: newBreaker("openmeteo-geocoding"),
	}
}

func (g *openMeteoGeocoder) Name() string {
	return "openmeteo"
}

func (g *openMeteoGeocoder) Geocode(ctx context.Context, location string) (domain.Coordinates, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", location)
		values.Set("count", "1")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doResilientRequest(ctx, g.client, g.circuit, defaultRetryPolicy, buildRequest)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: openmeteo request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: failed to decode response: %w", err)
	}

	if len(payload.Results) == 0 {
		return domain.Coordinates{}, ErrNoResults
	}

	return domain.Coordinates{
		Latitude:  payload.Results[0].Latitude,
		Longitude: payload.Results[0].Longitude,
	}, nil
}

// googleGeocoder resolves names through the Google Maps geocoding API.
// The kelvins/geocoder client is synchronous and keyed by a package-level
// API key, so the context only gates entry.
type googleGeocoder struct {
	country string
}

func newGoogleGeocoder(apiKey, country string) *googleGeocoder {
	geocoder.ApiKey = apiKey
	return &googleGeocoder{country: country}
}

func (g *googleGeocoder) Name() string {
	return "google"
}

func (g *googleGeocoder) Geocode(ctx context.Context, location string) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}

	address := geocoder.Address{
		City:    location,
		Country: g.country,
	}

	loc, err := geocoder.Geocoding(address)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: google lookup failed: %w", err)
	}

	return domain.Coordinates{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}, nil
}
