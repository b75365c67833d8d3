package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"route_finder/pkg/geo"
	"route_finder/pkg/graph"
)

var (
	// ErrEmptyGraph is returned when there is no node to snap to.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrPointTooFar is returned when the query point is too far from any road.
	ErrPointTooFar = errors.New("point too far from road")
)

// SnapResult is the graph node nearest to a query point.
type SnapResult struct {
	Node graph.Node
	Dist float64 // haversine meters from the query point to Node
}

// Snapper maps an arbitrary coordinate onto a graph node.
//
// Every implementation measures with geo.Haversine, latitude first, and breaks
// ties in favor of the node that comes first in dataset order.
type Snapper interface {
	Snap(target graph.Coordinate) (SnapResult, error)
}

// checkMaxDist applies the optional snap distance limit. Zero means unlimited.
func checkMaxDist(res SnapResult, maxDist float64) (SnapResult, error) {
	if maxDist > 0 && res.Dist > maxDist {
		return SnapResult{}, ErrPointTooFar
	}
	return res, nil
}

// LinearSnapper scans every node. It is the reference the indexed snapper is
// tested against.
type LinearSnapper struct {
	nodes   []graph.Node
	maxDist float64
}

// NewLinearSnapper creates a LinearSnapper over g's nodes. maxDist is the
// largest accepted snap distance in meters, or 0 for no limit.
func NewLinearSnapper(g *graph.Graph, maxDist float64) *LinearSnapper {
	return &LinearSnapper{nodes: g.Nodes(), maxDist: maxDist}
}

func (s *LinearSnapper) Snap(target graph.Coordinate) (SnapResult, error) {
	res, err := nearestLinear(s.nodes, target)
	if err != nil {
		return SnapResult{}, err
	}
	return checkMaxDist(res, s.maxDist)
}

func nearestLinear(nodes []graph.Node, target graph.Coordinate) (SnapResult, error) {
	if len(nodes) == 0 {
		return SnapResult{}, ErrEmptyGraph
	}
	best := 0
	bestDist := geo.Haversine(target.Lat, target.Lng, nodes[0].Coord.Lat, nodes[0].Coord.Lng)
	for i := 1; i < len(nodes); i++ {
		d := geo.Haversine(target.Lat, target.Lng, nodes[i].Coord.Lat, nodes[i].Coord.Lng)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return SnapResult{Node: nodes[best], Dist: bestDist}, nil
}

const (
	// initialSnapRadius is the first search radius in meters.
	initialSnapRadius = 250.0

	// snapSlack widens the confirming search, in meters, past the best
	// candidate's distance.
	snapSlack = 0.001

	// windowPad widens every query window, in degrees, to absorb rounding in
	// the meters-to-degrees conversion.
	windowPad = 1e-9
)

// IndexedSnapper finds the nearest node with an R-tree over node positions.
//
// Points are stored as [lat, lng]. A query grows a window until it holds at
// least one node, then searches once more with a window guaranteed to contain
// every node no farther than the best candidate, so the answer is the same one
// LinearSnapper gives. Near the poles and across the antimeridian the window
// bound does not hold and the query falls back to a linear scan.
type IndexedSnapper struct {
	nodes   []graph.Node
	tree    rtree.RTreeG[int]
	maxDist float64
}

// NewIndexedSnapper indexes g's nodes. maxDist is the largest accepted snap
// distance in meters, or 0 for no limit.
func NewIndexedSnapper(g *graph.Graph, maxDist float64) *IndexedSnapper {
	s := &IndexedSnapper{nodes: g.Nodes(), maxDist: maxDist}
	for i, n := range s.nodes {
		p := [2]float64{n.Coord.Lat, n.Coord.Lng}
		s.tree.Insert(p, p, i)
	}
	return s
}

func (s *IndexedSnapper) Snap(target graph.Coordinate) (SnapResult, error) {
	if len(s.nodes) == 0 {
		return SnapResult{}, ErrEmptyGraph
	}

	res, ok := s.nearestIndexed(target)
	if !ok {
		var err error
		res, err = nearestLinear(s.nodes, target)
		if err != nil {
			return SnapResult{}, err
		}
	}
	return checkMaxDist(res, s.maxDist)
}

// nearestIndexed returns false when the window bound cannot be used.
func (s *IndexedSnapper) nearestIndexed(target graph.Coordinate) (SnapResult, bool) {
	maxRadius := math.Pi * geo.EarthRadiusMeters

	for r := initialSnapRadius; r <= maxRadius; r *= 2 {
		res, found, ok := s.searchWindow(target, r)
		if !ok {
			return SnapResult{}, false
		}
		if !found {
			continue
		}
		// Every node within res.Dist of target lies inside this window.
		res, _, ok = s.searchWindow(target, res.Dist*(1+1e-9)+snapSlack)
		if !ok {
			return SnapResult{}, false
		}
		return res, true
	}
	return SnapResult{}, false
}

// searchWindow examines the nodes inside the lat/lng box that contains the
// circle of radius meters around target, and returns the nearest of them,
// lowest ordinal on ties. ok is false when no valid box exists.
func (s *IndexedSnapper) searchWindow(target graph.Coordinate, meters float64) (res SnapResult, found, ok bool) {
	minP, maxP, ok := window(target, meters)
	if !ok {
		return SnapResult{}, false, false
	}

	best := -1
	bestDist := math.Inf(1)
	s.tree.Search(minP, maxP, func(_, _ [2]float64, i int) bool {
		c := s.nodes[i].Coord
		d := geo.Haversine(target.Lat, target.Lng, c.Lat, c.Lng)
		if d < bestDist || (d == bestDist && i < best) {
			best, bestDist = i, d
		}
		return true
	})
	if best < 0 {
		return SnapResult{}, false, true
	}
	return SnapResult{Node: s.nodes[best], Dist: bestDist}, true, true
}

// window returns the [lat, lng] box holding every point within meters of c.
//
// Latitude spans the angular radius δ directly. For longitude, the haversine
// formula gives sin(Δλ/2) ≤ sin(δ/2) / cos φmax, where φmax is the largest
// absolute latitude in the box.
func window(c graph.Coordinate, meters float64) (minP, maxP [2]float64, ok bool) {
	delta := meters / geo.EarthRadiusMeters // radians
	dLat := geo.AngularDegrees(meters) + windowPad

	phiMax := math.Abs(c.Lat) + dLat
	if phiMax >= 90 {
		return minP, maxP, false
	}
	ratio := math.Sin(delta/2) / math.Cos(phiMax*math.Pi/180)
	if ratio >= 1 {
		return minP, maxP, false
	}
	dLng := 2*math.Asin(ratio)*180/math.Pi + windowPad
	if c.Lng-dLng < -180 || c.Lng+dLng > 180 {
		return minP, maxP, false
	}

	minP = [2]float64{c.Lat - dLat, c.Lng - dLng}
	maxP = [2]float64{c.Lat + dLat, c.Lng + dLng}
	return minP, maxP, true
}
