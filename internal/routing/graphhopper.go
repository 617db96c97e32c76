package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldwatch-backend/internal/geo"
)

// GraphHopperClient is the primary routing engine. The API accepts any
// number of ordered waypoints; the selector feeds it one leg at a time so
// its results stay comparable with the two-point secondary engine.
type GraphHopperClient struct {
	baseURL string
	apiKey  string
	profile string
	client  *http.Client
}

// NewGraphHopperClient creates a client for a GraphHopper routing endpoint.
// An empty API key is allowed for self-hosted instances.
func NewGraphHopperClient(baseURL, apiKey, profile string, timeout time.Duration) *GraphHopperClient {
	if profile == "" {
		profile = "car"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GraphHopperClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		profile: profile,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *GraphHopperClient) Name() string { return "graphhopper" }

// Route fetches a driving route for one leg.
func (s *GraphHopperClient) Route(ctx context.Context, from, to geo.Coord) (*EngineRoute, error) {
	return s.route(ctx, []geo.Coord{from, to})
}

func (s *GraphHopperClient) route(ctx context.Context, points []geo.Coord) (*EngineRoute, error) {
	params := url.Values{}
	for _, p := range points {
		params.Add("point", fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng))
	}
	params.Add("profile", s.profile)
	params.Add("points_encoded", "false")
	params.Add("instructions", "false")
	if s.apiKey != "" {
		params.Add("key", s.apiKey)
	}

	fullURL := s.baseURL + "/route?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building GraphHopper request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GraphHopper request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GraphHopper response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ GraphHopper error (%d): %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("GraphHopper returned status %d", resp.StatusCode)
	}

	var ghResp struct {
		Paths []struct {
			Distance float64 `json:"distance"` // meters
			Time     int64   `json:"time"`     // milliseconds
			Points   struct {
				Coordinates [][2]float64 `json:"coordinates"` // [lng, lat]
			} `json:"points"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(body, &ghResp); err != nil {
		return nil, fmt.Errorf("parsing GraphHopper response: %w", err)
	}

	if len(ghResp.Paths) == 0 {
		return nil, fmt.Errorf("GraphHopper returned no paths")
	}

	path := ghResp.Paths[0]
	return &EngineRoute{
		Coordinates: path.Points.Coordinates,
		DistanceKm:  path.Distance / 1000.0,
		DurationMin: float64(path.Time) / 60000.0,
	}, nil
}
