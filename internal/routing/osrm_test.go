package routing

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldwatch-backend/internal/geo"
)

func TestOSRMRoute(t *testing.T) {
	var gotPath, gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 12000.0,
				"duration": 600.0,
				"geometry": {
					"type": "LineString",
					"coordinates": [[39.0, 21.0], [39.2, 21.5]]
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewOSRMClient(server.URL, 0)
	got, err := client.Route(context.Background(), geo.Coord{Lat: 21.0, Lng: 39.0}, geo.Coord{Lat: 21.5, Lng: 39.2})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if math.Abs(got.DistanceKm-12.0) > 1e-9 {
		t.Errorf("distance = %v km, want 12.0", got.DistanceKm)
	}
	if math.Abs(got.DurationMin-10.0) > 1e-9 {
		t.Errorf("duration = %v min, want 10.0", got.DurationMin)
	}
	if len(got.Coordinates) != 2 {
		t.Errorf("path has %d vertices, want 2", len(got.Coordinates))
	}

	// Coordinates ride in the path as lng,lat.
	wantPath := "/route/v1/driving/39.000000,21.000000;39.200000,21.500000"
	if gotPath != wantPath {
		t.Errorf("request path = %q, want %q", gotPath, wantPath)
	}
	if gotQuery != "overview=full&geometries=geojson" {
		t.Errorf("request query = %q, want overview and geojson geometry", gotQuery)
	}
}

func TestOSRMRouteNonOkCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer server.Close()

	client := NewOSRMClient(server.URL, 0)
	if _, err := client.Route(context.Background(), geo.Coord{Lat: 21.0, Lng: 39.0}, geo.Coord{Lat: 21.5, Lng: 39.2}); err == nil {
		t.Fatalf("expected an error for a non-Ok OSRM code")
	}
}

func TestOSRMRouteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOSRMClient(server.URL, 0)
	if _, err := client.Route(context.Background(), geo.Coord{Lat: 21.0, Lng: 39.0}, geo.Coord{Lat: 21.5, Lng: 39.2}); err == nil {
		t.Fatalf("expected an error for a 429 response")
	}
}
