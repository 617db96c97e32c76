package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Coord is a coordinate pair in decimal degrees that has already passed
// validation. Raw rows carry nullable columns; convert them with FromPtr.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid reports whether both components are present and numerically
// usable. Upstream apps have shipped rows with one coordinate null and
// the occasional NaN, so every consumer runs this check before math.
func IsValid(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	return isFinite(*lat) && isFinite(*lng)
}

// FromPtr converts a nullable pair into a Coord. The bool is false when
// the pair fails validation, in which case the Coord is zero and must
// not be used.
func FromPtr(lat, lng *float64) (Coord, bool) {
	if !IsValid(lat, lng) {
		return Coord{}, false
	}
	return Coord{Lat: *lat, Lng: *lng}, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// DistanceKm calculates the great-circle distance between two GPS
// coordinates in kilometers.
func DistanceKm(a, b Coord) float64 {
	// Convert to radians
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	// Haversine formula
	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
