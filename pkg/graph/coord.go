package graph

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a geographic point, latitude first.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Validate reports whether c is finite and inside the geographic ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

// Key returns the canonical node key for c: "(lat, lng)".
//
// The key is the only node identity in the graph. Two numerically equal
// coordinates written differently in a dataset are different nodes, so every
// component must build keys through this function.
func Key(c Coordinate) string {
	return "(" + FormatNumber(c.Lat) + ", " + FormatNumber(c.Lng) + ")"
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (Coordinate, error) {
	inner, ok := strings.CutPrefix(key, "(")
	if !ok {
		return Coordinate{}, fmt.Errorf("malformed node key %q", key)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return Coordinate{}, fmt.Errorf("malformed node key %q", key)
	}
	latStr, lngStr, ok := strings.Cut(inner, ", ")
	if !ok {
		return Coordinate{}, fmt.Errorf("malformed node key %q", key)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("node key %q: latitude: %w", key, err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("node key %q: longitude: %w", key, err)
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Coordinate{}, fmt.Errorf("node key %q: non-finite coordinate", key)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// FormatNumber renders f the way existing datasets were written: the shortest
// decimal that round-trips, switching to exponent form below 1e-6 and at or
// above 1e21, and printing negative zero as "0".
func FormatNumber(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		// strconv writes "1e-07"; datasets carry "1e-7".
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
