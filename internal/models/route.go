package models

// Engine labels carried on a RouteResult.
const (
	EnginePrimary   = "primary"
	EngineSecondary = "secondary"
	EngineFallback  = "fallback"
)

// RouteResult is a best-effort driving route produced on demand. When both
// routing engines fail the result degrades to the straight line between the
// endpoints with Fallback set.
type RouteResult struct {
	Coordinates   [][2]float64 `json:"coordinates"` // [lng, lat] pairs, GeoJSON order
	DistanceKm    float64      `json:"distance_km"`
	DurationMin   float64      `json:"duration_min"`
	Engine        string       `json:"engine"`
	AirDistanceKm float64      `json:"air_distance_km"`
	Warning       string       `json:"warning,omitempty"`
	Fallback      bool         `json:"fallback"`
}
