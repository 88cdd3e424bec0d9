package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmsight/backend/internal/domain"
)

// stubGeocoder resolves only the locations present in results and records the
// order of lookups.
type stubGeocoder struct {
	results map[string]domain.Coordinates
	calls   []string
}

func (g *stubGeocoder) Name() string { return "stub" }

func (g *stubGeocoder) Geocode(ctx context.Context, location string) (domain.Coordinates, error) {
	g.calls = append(g.calls, location)
	coords, ok := g.results[location]
	if !ok {
		return domain.Coordinates{}, ErrNoResults
	}
	return coords, nil
}

func TestResolveFirstStopsAtFirstMatch(t *testing.T) {
	stub := &stubGeocoder{results: map[string]domain.Coordinates{
		"Nashik": {Latitude: 19.99, Longitude: 73.78},
	}}
	svc := NewGeocodeServiceFromBackends(stub)

	candidates := []string{"Pimpalgaon, Nashik", "Nashik", "Pune"}
	resolved, err := svc.ResolveFirst(context.Background(), candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Query != "Nashik" {
		t.Errorf("expected matched query %q, got %q", "Nashik", resolved.Query)
	}
	if resolved.Coordinates.Latitude != 19.99 {
		t.Errorf("unexpected coordinates: %+v", resolved.Coordinates)
	}
	if len(stub.calls) != 2 {
		t.Errorf("expected lookups to stop after the first match, got calls %v", stub.calls)
	}
}

func TestResolveFirstTriesCandidatesInOrder(t *testing.T) {
	stub := &stubGeocoder{}
	svc := NewGeocodeServiceFromBackends(stub)

	candidates := []string{"Pimpalgaon, Nashik", "Nashik", "Pune"}
	_, err := svc.ResolveFirst(context.Background(), candidates)
	if !errors.Is(err, ErrGeocodeFailed) {
		t.Fatalf("expected ErrGeocodeFailed, got %v", err)
	}

	if len(stub.calls) != 3 {
		t.Fatalf("expected 3 lookups, got %d", len(stub.calls))
	}
	for i, want := range candidates {
		if stub.calls[i] != want {
			t.Errorf("lookup %d: expected %q, got %q", i, want, stub.calls[i])
		}
	}
}

func TestResolveFallsThroughBackendChain(t *testing.T) {
	first := &stubGeocoder{}
	second := &stubGeocoder{results: map[string]domain.Coordinates{
		"Nashik": {Latitude: 19.99, Longitude: 73.78},
	}}
	svc := NewGeocodeServiceFromBackends(first, second)

	coords, err := svc.Resolve(context.Background(), "Nashik")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Longitude != 73.78 {
		t.Errorf("unexpected coordinates: %+v", coords)
	}
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Errorf("expected both backends consulted once, got %v and %v", first.calls, second.calls)
	}
}

func TestOpenMeteoGeocoderParsesResults(t *testing.T) {
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"latitude":19.9975,"longitude":73.7898}]}`))
	}))
	defer srv.Close()

	g := &openMeteoGeocoder{
		baseURL: srv.URL,
		client:  srv.Client(),
		circuit: newBreaker("test-geocode"),
	}

	coords, err := g.Geocode(context.Background(), "Nashik")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "Nashik" {
		t.Errorf("expected name=Nashik in request, got %q", gotName)
	}
	if coords.Latitude != 19.9975 || coords.Longitude != 73.7898 {
		t.Errorf("unexpected coordinates: %+v", coords)
	}
}

func TestOpenMeteoGeocoderNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := &openMeteoGeocoder{
		baseURL: srv.URL,
		client:  srv.Client(),
		circuit: newBreaker("test-geocode-empty"),
	}

	_, err := g.Geocode(context.Background(), "Nowhereville")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}
