package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"route_finder/pkg/geo"
)

// RawEdge represents a directed edge between two consecutive way nodes.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Weight     float64 // great-circle length in meters, rounded up to the millimeter
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// Profile selects which ways are part of the network and how oneway tags apply.
type Profile string

const (
	ProfileCar  Profile = "car"
	ProfileFoot Profile = "foot"
	ProfileBike Profile = "bike"
)

// ParseProfile validates a profile name.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(s); p {
	case ProfileCar, ProfileFoot, ProfileBike:
		return p, nil
	}
	return "", fmt.Errorf("unknown profile %q (want car, foot or bike)", s)
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// footHighways lists highway tag values walkable by default.
var footHighways = map[string]bool{
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
	"track":          true,
	"path":           true,
	"footway":        true,
	"pedestrian":     true,
	"steps":          true,
}

// bikeHighways lists highway tag values rideable by default.
var bikeHighways = map[string]bool{
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
	"track":          true,
	"path":           true,
	"cycleway":       true,
}

// isAccessible returns true if the way is usable under profile p.
func isAccessible(p Profile, tags osm.Tags) bool {
	hw := tags.Find("highway")

	var modeKey string
	switch p {
	case ProfileCar:
		if !carHighways[hw] {
			return false
		}
		// Skip area highways (pedestrian plazas).
		if tags.Find("area") == "yes" {
			return false
		}
		modeKey = "motor_vehicle"
	case ProfileFoot:
		if !footHighways[hw] {
			return false
		}
		modeKey = "foot"
	case ProfileBike:
		if !bikeHighways[hw] {
			return false
		}
		modeKey = "bicycle"
	default:
		return false
	}

	mode := tags.Find(modeKey)
	if mode == "no" {
		return false
	}
	// An explicit mode permission overrides a general access restriction.
	if mode == "yes" || mode == "designated" || mode == "permissive" {
		return true
	}
	access := tags.Find("access")
	return access != "no" && access != "private"
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(p Profile, tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	// Pedestrians ignore oneway restrictions.
	if p == ProfileFoot {
		return forward, backward
	}
	if p == ProfileBike && tags.Find("oneway:bicycle") == "no" {
		return forward, backward
	}

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent; skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// edgeWeight rounds a haversine length up to the millimeter, so the stored
// weight is never shorter than the great-circle distance between its ends.
func edgeWeight(fromLat, fromLon, toLat, toLon float64) float64 {
	w := math.Ceil(geo.Haversine(fromLat, fromLon, toLat, toLon)*1000) / 1000
	if w == 0 {
		w = 0.001 // avoid zero-weight edges
	}
	return w
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	Profile Profile // defaults to ProfileCar
	BBox    BBox    // if non-zero, filter edges to this bounding box
}

// Parse reads an OSM PBF file and returns directed edges for the chosen profile.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ParseOptions) (*ParseResult, error) {
	profile := opts.Profile
	if profile == "" {
		profile = ProfileCar
	}
	useBBox := !opts.BBox.IsZero()

	// Pass 1: Scan ways to collect referenced node IDs and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isAccessible(profile, w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		fwd, bwd := directionFlags(profile, w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{
			NodeIDs:  nodeIDs,
			Forward:  fwd,
			Backward: bwd,
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d %s ways, %d referenced nodes", len(ways), profile, len(referencedNodes))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodeLat))

	edges, skipped, filtered := buildEdges(ways, nodeLat, nodeLon, opts.BBox, useBBox)

	if skipped > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", skipped)
	}
	if filtered > 0 {
		log.Printf("Filtered %d edges outside bounding box", filtered)
	}
	log.Printf("Built %d directed edges", len(edges))

	return &ParseResult{
		Edges:   edges,
		NodeLat: nodeLat,
		NodeLon: nodeLon,
	}, nil
}

// buildEdges splits ways into directed segments between consecutive nodes.
func buildEdges(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, bbox BBox, useBBox bool) (edges []RawEdge, skipped, filtered int) {
	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skipped++
				continue
			}

			// Bounding box filter: skip edges with any endpoint outside.
			if useBBox && (!bbox.Contains(fromLat, fromLon) || !bbox.Contains(toLat, toLon)) {
				filtered++
				continue
			}

			weight := edgeWeight(fromLat, fromLon, toLat, toLon)

			if w.Forward {
				edges = append(edges, RawEdge{FromNodeID: fromID, ToNodeID: toID, Weight: weight})
			}
			if w.Backward {
				edges = append(edges, RawEdge{FromNodeID: toID, ToNodeID: fromID, Weight: weight})
			}
		}
	}
	return edges, skipped, filtered
}
