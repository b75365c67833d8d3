package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by every distance in this package.
const EarthRadiusMeters = 6_371_000.0

// All functions take latitude before longitude. Graph keys, JSON datasets and
// API payloads use the same order, so no call site ever swaps them.

// Haversine returns the great-circle distance in meters between two points.
// It is the canonical metric for snapping and for the great-circle heuristic.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Euclidean returns the straight-line distance between two points measured in
// raw coordinate degrees, treating lat/lng as a flat plane.
func Euclidean(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// Bearing returns the initial great-circle bearing from point 1 to point 2 in
// degrees, normalized to [0, 360). Coincident points have bearing 0.
func Bearing(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2r)
	x := math.Cos(lat1r)*math.Sin(lat2r) - math.Sin(lat1r)*math.Cos(lat2r)*math.Cos(dLng)
	if x == 0 && y == 0 {
		return 0
	}

	deg := math.Atan2(y, x) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// BearingDelta returns the absolute difference between two bearings in
// degrees, in [0, 180].
func BearingDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// AngularDegrees converts a surface distance in meters into the central angle
// it subtends, in degrees.
func AngularDegrees(meters float64) float64 {
	return meters / EarthRadiusMeters * 180 / math.Pi
}
