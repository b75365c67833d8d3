package routing

import (
	"fmt"

	"route_finder/pkg/geo"
	"route_finder/pkg/graph"
)

// HeuristicKind selects the A* remaining-cost estimate.
type HeuristicKind int

const (
	// GreatCircle is the haversine distance in meters from the node to the
	// goal. Admissible whenever edge weights are at least the great-circle
	// length of the edge, as they are for graphs built from OSM.
	GreatCircle HeuristicKind = iota

	// Euclidean is the straight-line distance in coordinate degrees. It only
	// guides the search sensibly when weights are in degrees too.
	Euclidean

	// BearingDeviation is the angle in degrees between the edge being relaxed
	// and the straight line from its source to the goal. It is not a distance
	// and not admissible: it biases expansion toward the goal direction and may
	// return a longer path.
	BearingDeviation
)

var heuristicNames = map[HeuristicKind]string{
	GreatCircle:      "great_circle",
	Euclidean:        "euclidean",
	BearingDeviation: "bearing_deviation",
}

func (k HeuristicKind) String() string {
	if s, ok := heuristicNames[k]; ok {
		return s
	}
	return fmt.Sprintf("HeuristicKind(%d)", int(k))
}

// ParseHeuristic maps a name as printed by String back to its kind.
func ParseHeuristic(s string) (HeuristicKind, error) {
	for k, name := range heuristicNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown heuristic %q", s)
}

// Estimate returns the heuristic value for reaching v over the edge u→v, with
// goal as the search target.
func (k HeuristicKind) Estimate(u, v, goal graph.Coordinate) float64 {
	switch k {
	case Euclidean:
		return geo.Euclidean(v.Lat, v.Lng, goal.Lat, goal.Lng)
	case BearingDeviation:
		return geo.BearingDelta(
			geo.Bearing(u.Lat, u.Lng, v.Lat, v.Lng),
			geo.Bearing(u.Lat, u.Lng, goal.Lat, goal.Lng),
		)
	default:
		return geo.Haversine(v.Lat, v.Lng, goal.Lat, goal.Lng)
	}
}
