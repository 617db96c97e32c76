package routing

import (
	"context"

	"fieldwatch-backend/internal/geo"
)

// Leg is one requested driving segment between two validated points.
type Leg struct {
	From geo.Coord `json:"from"`
	To   geo.Coord `json:"to"`
}

// EngineRoute is a single-leg result as reported by one routing engine.
type EngineRoute struct {
	Coordinates [][2]float64 // [lng, lat] pairs, GeoJSON order
	DistanceKm  float64
	DurationMin float64
}

// Engine is a driving-route provider queried one leg at a time. Transport
// problems, non-success responses, and empty results all come back as
// errors; the selector treats any error as "no result" from that engine.
type Engine interface {
	Name() string
	Route(ctx context.Context, from, to geo.Coord) (*EngineRoute, error)
}
