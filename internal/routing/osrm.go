package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"fieldwatch-backend/internal/geo"
)

// OSRMClient is the secondary routing engine, backed by a public OSRM
// instance. The service takes exactly two coordinates per request, so
// multi-leg routes call it once per leg.
type OSRMClient struct {
	baseURL string
	client  *http.Client
}

// NewOSRMClient creates a client for an OSRM routing endpoint.
func NewOSRMClient(baseURL string, timeout time.Duration) *OSRMClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OSRMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OSRMClient) Name() string { return "osrm" }

// Route fetches a driving route between two points.
func (s *OSRMClient) Route(ctx context.Context, from, to geo.Coord) (*EngineRoute, error) {
	// OSRM takes lng,lat pairs in the path, not query parameters.
	fullURL := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		s.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building OSRM request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OSRM request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OSRM response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ OSRM error (%d): %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("OSRM returned status %d", resp.StatusCode)
	}

	var osrmResp struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
			Geometry struct {
				Coordinates [][2]float64 `json:"coordinates"` // [lng, lat]
			} `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &osrmResp); err != nil {
		return nil, fmt.Errorf("parsing OSRM response: %w", err)
	}

	if osrmResp.Code != "Ok" {
		return nil, fmt.Errorf("OSRM returned code %q", osrmResp.Code)
	}
	if len(osrmResp.Routes) == 0 {
		return nil, fmt.Errorf("OSRM returned no routes")
	}

	route := osrmResp.Routes[0]
	return &EngineRoute{
		Coordinates: route.Geometry.Coordinates,
		DistanceKm:  route.Distance / 1000.0,
		DurationMin: route.Duration / 60.0,
	}, nil
}
