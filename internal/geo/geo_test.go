package geo

import (
	"math"
	"testing"
)

func fptr(f float64) *float64 { return &f }

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		lat  *float64
		lng  *float64
		want bool
	}{
		{"both present", fptr(21.5), fptr(39.2), true},
		{"zero is a real coordinate", fptr(0), fptr(0), true},
		{"lat missing", nil, fptr(39.2), false},
		{"lng missing", fptr(21.5), nil, false},
		{"both missing", nil, nil, false},
		{"lat NaN", fptr(math.NaN()), fptr(39.2), false},
		{"lng NaN", fptr(21.5), fptr(math.NaN()), false},
		{"lat +Inf", fptr(math.Inf(1)), fptr(39.2), false},
		{"lng -Inf", fptr(21.5), fptr(math.Inf(-1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.lat, tt.lng); got != tt.want {
				t.Errorf("IsValid(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestFromPtr(t *testing.T) {
	c, ok := FromPtr(fptr(21.5), fptr(39.2))
	if !ok {
		t.Fatalf("expected valid pair to convert")
	}
	if c.Lat != 21.5 || c.Lng != 39.2 {
		t.Errorf("got %+v, want {21.5 39.2}", c)
	}

	if _, ok := FromPtr(nil, fptr(39.2)); ok {
		t.Errorf("expected nil latitude to fail conversion")
	}
}

func TestDistanceKmZeroForIdenticalPoints(t *testing.T) {
	p := Coord{Lat: 21.5, Lng: 39.2}
	if d := DistanceKm(p, p); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := Coord{Lat: 21.5, Lng: 39.2}
	b := Coord{Lat: 24.7136, Lng: 46.6753}

	ab := DistanceKm(a, b)
	ba := DistanceKm(b, a)
	if ab != ba {
		t.Errorf("distance not symmetric: a->b=%v b->a=%v", ab, ba)
	}
	if ab <= 0 {
		t.Errorf("distance between distinct points = %v, want > 0", ab)
	}
}

func TestDistanceKmKnownValue(t *testing.T) {
	// One degree of latitude along a meridian is R*pi/180 km.
	a := Coord{Lat: 0, Lng: 0}
	b := Coord{Lat: 1, Lng: 0}

	want := earthRadiusKm * math.Pi / 180
	got := DistanceKm(a, b)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("one degree of latitude = %v km, want %v km", got, want)
	}
}
