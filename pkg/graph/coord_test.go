package graph

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1, "-1"},
		{103.8, "103.8"},
		{1.3521, "1.3521"},
		{-33.86785, "-33.86785"},
		{0.1 + 0.2, "0.30000000000000004"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{-1.5e-7, "-1.5e-7"},
		{123456789012345680000, "123456789012345680000"},
		{1e21, "1e+21"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	coords := []Coordinate{
		{Lat: 1.3521, Lng: 103.8198},
		{Lat: -33.86785, Lng: 151.20732},
		{Lat: 0, Lng: 0},
		{Lat: 90, Lng: -180},
		{Lat: 1e-7, Lng: 2},
	}
	for _, c := range coords {
		key := Key(c)
		got, err := ParseKey(key)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", key, err)
		}
		if got != c {
			t.Errorf("ParseKey(Key(%v)) = %v", c, got)
		}
		if Key(got) != key {
			t.Errorf("Key not stable for %q", key)
		}
	}
}

func TestKeyFormat(t *testing.T) {
	if got := Key(Coordinate{Lat: 1, Lng: 1}); got != "(1, 1)" {
		t.Errorf("Key = %q, want (1, 1)", got)
	}
	if got := Key(Coordinate{Lat: 1.5, Lng: -0.25}); got != "(1.5, -0.25)" {
		t.Errorf("Key = %q, want (1.5, -0.25)", got)
	}
}

func TestParseKeyMalformed(t *testing.T) {
	for _, key := range []string{
		"",
		"1, 2",
		"(1, 2",
		"1, 2)",
		"(1,2)",
		"(a, 2)",
		"(1, b)",
		"(NaN, 1)",
		"(1, Infinity)",
	} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q) succeeded, want error", key)
		}
	}
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"valid", Coordinate{Lat: 1.35, Lng: 103.8}, false},
		{"corners", Coordinate{Lat: -90, Lng: 180}, false},
		{"lat too high", Coordinate{Lat: 90.1, Lng: 0}, true},
		{"lng too low", Coordinate{Lat: 0, Lng: -180.5}, true},
		{"NaN", Coordinate{Lat: math.NaN(), Lng: 0}, true},
		{"Inf", Coordinate{Lat: 0, Lng: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
