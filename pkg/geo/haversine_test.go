package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lng1       float64
		lat2, lng2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "Singapore CBD to Changi Airport",
			lat1: 1.2830, lng1: 103.8513, // Raffles Place
			lat2: 1.3644, lng2: 103.9915, // Changi Airport
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name: "Same point",
			lat1: 1.3521, lng1: 103.8198,
			lat2: 1.3521, lng2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lng1: -0.1278,
			lat2: 48.8566, lng2: 2.3522,
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
		{
			name: "Short distance (~100m)",
			lat1: 1.3521, lng1: 103.8198,
			lat2: 1.3530, lng2: 103.8198,
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

// orb uses the WGS84 equatorial radius, so the two agree to ~0.11%.
func TestHaversineAgreesWithOrb(t *testing.T) {
	pairs := [][4]float64{
		{1.2830, 103.8513, 1.3644, 103.9915},
		{51.5074, -0.1278, 48.8566, 2.3522},
		{-33.8688, 151.2093, -37.8136, 144.9631},
		{40.7128, -74.0060, 34.0522, -118.2437},
	}
	for _, p := range pairs {
		got := Haversine(p[0], p[1], p[2], p[3])
		want := orbgeo.DistanceHaversine(orb.Point{p[1], p[0]}, orb.Point{p[3], p[2]})
		if diff := math.Abs(got-want) / want * 100; diff > 0.2 {
			t.Errorf("Haversine%v = %f, orb = %f (diff %.3f%%)", p, got, want, diff)
		}
	}
}

func TestHaversineArgumentOrder(t *testing.T) {
	// One degree of latitude and one degree of longitude differ sharply away
	// from the equator; a transposed call would not notice.
	northward := Haversine(60, 10, 61, 10)
	eastward := Haversine(60, 10, 60, 11)
	if eastward >= northward {
		t.Errorf("at 60N a degree east (%f) should be shorter than a degree north (%f)", eastward, northward)
	}
	if math.Abs(eastward/northward-0.5) > 0.01 {
		t.Errorf("eastward/northward = %f, want ~cos(60)=0.5", eastward/northward)
	}
}

func TestEuclidean(t *testing.T) {
	if got := Euclidean(0, 0, 3, 4); got != 5 {
		t.Errorf("Euclidean(0,0,3,4) = %f, want 5", got)
	}
	if got := Euclidean(1.5, 2.5, 1.5, 2.5); got != 0 {
		t.Errorf("Euclidean same point = %f, want 0", got)
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		want       float64
	}{
		{"north", 0, 0, 1, 0, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 0, 0, -1, 0, 180},
		{"west", 0, 0, 0, -1, 270},
		{"same point", 1.3, 103.8, 1.3, 103.8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Bearing = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestBearingDelta(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 90, 90},
		{350, 10, 20},
		{10, 350, 20},
		{0, 180, 180},
		{270, 90, 180},
		{45, 45, 0},
	}
	for _, tt := range tests {
		if got := BearingDelta(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("BearingDelta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAngularDegrees(t *testing.T) {
	// A degree of latitude is the same arc on the sphere.
	oneDegree := Haversine(0, 0, 1, 0)
	if got := AngularDegrees(oneDegree); math.Abs(got-1) > 1e-9 {
		t.Errorf("AngularDegrees(%f) = %f, want 1", oneDegree, got)
	}
}

func BenchmarkHaversine(b *testing.B) {
	for b.Loop() {
		Haversine(1.3521, 103.8198, 1.2905, 103.8520)
	}
}

func BenchmarkBearing(b *testing.B) {
	for b.Loop() {
		Bearing(1.3521, 103.8198, 1.2905, 103.8520)
	}
}
