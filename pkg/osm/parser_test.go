package osm

import (
	"math"
	"testing"

	"github.com/paulmach/osm"

	"route_finder/pkg/geo"
)

func TestIsAccessible(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		tags    osm.Tags
		want    bool
	}{
		{
			name:    "car: residential road",
			profile: ProfileCar,
			tags:    osm.Tags{{Key: "highway", Value: "residential"}},
			want:    true,
		},
		{
			name:    "car: motorway",
			profile: ProfileCar,
			tags:    osm.Tags{{Key: "highway", Value: "motorway"}},
			want:    true,
		},
		{
			name:    "car: footway",
			profile: ProfileCar,
			tags:    osm.Tags{{Key: "highway", Value: "footway"}},
			want:    false,
		},
		{
			name:    "car: cycleway",
			profile: ProfileCar,
			tags:    osm.Tags{{Key: "highway", Value: "cycleway"}},
			want:    false,
		},
		{
			name:    "car: private access",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			want: false,
		},
		{
			name:    "car: motor_vehicle=no",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "motor_vehicle", Value: "no"},
			},
			want: false,
		},
		{
			name:    "car: access=no but motor_vehicle=yes",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "access", Value: "no"},
				{Key: "motor_vehicle", Value: "yes"},
			},
			want: true,
		},
		{
			name:    "car: area=yes (pedestrian plaza)",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "area", Value: "yes"},
			},
			want: false,
		},
		{
			name:    "car: no highway tag",
			profile: ProfileCar,
			tags:    osm.Tags{{Key: "name", Value: "Some Street"}},
			want:    false,
		},
		{
			name:    "foot: footway",
			profile: ProfileFoot,
			tags:    osm.Tags{{Key: "highway", Value: "footway"}},
			want:    true,
		},
		{
			name:    "foot: motorway",
			profile: ProfileFoot,
			tags:    osm.Tags{{Key: "highway", Value: "motorway"}},
			want:    false,
		},
		{
			name:    "foot: foot=no",
			profile: ProfileFoot,
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "foot", Value: "no"},
			},
			want: false,
		},
		{
			name:    "bike: cycleway",
			profile: ProfileBike,
			tags:    osm.Tags{{Key: "highway", Value: "cycleway"}},
			want:    true,
		},
		{
			name:    "bike: steps",
			profile: ProfileBike,
			tags:    osm.Tags{{Key: "highway", Value: "steps"}},
			want:    false,
		},
		{
			name:    "bike: private but bicycle=designated",
			profile: ProfileBike,
			tags: osm.Tags{
				{Key: "highway", Value: "path"},
				{Key: "access", Value: "private"},
				{Key: "bicycle", Value: "designated"},
			},
			want: true,
		},
		{
			name:    "unknown profile",
			profile: Profile("boat"),
			tags:    osm.Tags{{Key: "highway", Value: "residential"}},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAccessible(tt.profile, tt.tags)
			if got != tt.want {
				t.Errorf("isAccessible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name         string
		profile      Profile
		tags         osm.Tags
		wantForward  bool
		wantBackward bool
	}{
		{
			name:         "default bidirectional",
			profile:      ProfileCar,
			tags:         osm.Tags{{Key: "highway", Value: "residential"}},
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "motorway implied oneway",
			profile:      ProfileCar,
			tags:         osm.Tags{{Key: "highway", Value: "motorway"}},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:         "motorway_link implied oneway",
			profile:      ProfileCar,
			tags:         osm.Tags{{Key: "highway", Value: "motorway_link"}},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:    "roundabout implied oneway",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:    "explicit oneway=yes",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:    "explicit oneway=1",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "1"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:    "explicit oneway=-1 (reverse)",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantForward:  false,
			wantBackward: true,
		},
		{
			name:    "explicit oneway=no overrides implied",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "motorway"},
				{Key: "oneway", Value: "no"},
			},
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:    "oneway=reversible skips entirely",
			profile: ProfileCar,
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reversible"},
			},
			wantForward:  false,
			wantBackward: false,
		},
		{
			name:    "foot ignores oneway",
			profile: ProfileFoot,
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:    "bike follows oneway",
			profile: ProfileBike,
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "oneway", Value: "yes"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:    "bike contraflow with oneway:bicycle=no",
			profile: ProfileBike,
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "oneway", Value: "yes"},
				{Key: "oneway:bicycle", Value: "no"},
			},
			wantForward:  true,
			wantBackward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := directionFlags(tt.profile, tt.tags)
			if fwd != tt.wantForward || bwd != tt.wantBackward {
				t.Errorf("directionFlags() = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantForward, tt.wantBackward)
			}
		})
	}
}

func TestParseProfile(t *testing.T) {
	for _, name := range []string{"car", "foot", "bike"} {
		p, err := ParseProfile(name)
		if err != nil {
			t.Fatalf("ParseProfile(%q): %v", name, err)
		}
		if string(p) != name {
			t.Errorf("ParseProfile(%q) = %q", name, p)
		}
	}
	if _, err := ParseProfile("hovercraft"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestEdgeWeightNeverBelowHaversine(t *testing.T) {
	pairs := [][4]float64{
		{1.3521, 103.8198, 1.3530, 103.8210},
		{1.3000, 103.8000, 1.3000, 103.8000001},
		{51.5007, -0.1246, 51.5014, -0.1419},
	}
	for _, p := range pairs {
		w := edgeWeight(p[0], p[1], p[2], p[3])
		d := geo.Haversine(p[0], p[1], p[2], p[3])
		if w < d {
			t.Errorf("edgeWeight = %v < haversine %v", w, d)
		}
		if w-d > 0.001 {
			t.Errorf("edgeWeight = %v exceeds haversine %v by more than 1mm", w, d)
		}
		if mm := w * 1000; math.Abs(mm-math.Round(mm)) > 1e-6 {
			t.Errorf("edgeWeight = %v is not a whole number of millimeters", w)
		}
	}

	if w := edgeWeight(1, 1, 1, 1); w != 0.001 {
		t.Errorf("coincident nodes: edgeWeight = %v, want 0.001", w)
	}
}

func TestBuildEdges(t *testing.T) {
	lat := map[osm.NodeID]float64{1: 1.30, 2: 1.31, 3: 1.32}
	lon := map[osm.NodeID]float64{1: 103.80, 2: 103.80, 3: 103.80}

	ways := []wayInfo{
		{NodeIDs: []osm.NodeID{1, 2, 3}, Forward: true, Backward: true},
		{NodeIDs: []osm.NodeID{3, 99}, Forward: true},
	}

	edges, skipped, filtered := buildEdges(ways, lat, lon, BBox{}, false)
	if len(edges) != 4 {
		t.Fatalf("got %d edges, want 4", len(edges))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if filtered != 0 {
		t.Errorf("filtered = %d, want 0", filtered)
	}
	if edges[0].FromNodeID != 1 || edges[0].ToNodeID != 2 || edges[1].FromNodeID != 2 || edges[1].ToNodeID != 1 {
		t.Errorf("unexpected edge order: %+v", edges[:2])
	}

	box := BBox{MinLat: 1.29, MaxLat: 1.315, MinLng: 103.7, MaxLng: 103.9}
	edges, _, filtered = buildEdges(ways, lat, lon, box, true)
	if len(edges) != 2 {
		t.Errorf("bbox: got %d edges, want 2", len(edges))
	}
	if filtered != 1 {
		t.Errorf("bbox: filtered = %d, want 1", filtered)
	}
}
