package routing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"route_finder/pkg/graph"
)

var (
	// ErrInvalidCoordinate is returned for a marker outside the geographic ranges.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrUnknownAlgorithm is returned for an algorithm name the engine does not serve.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// Algorithm names accepted in RouteRequest.Algorithms.
const (
	AlgorithmDijkstra = "dijkstra"
	AlgorithmAStar    = "astar"
	AlgorithmBFS      = "bfs"
)

// DefaultAlgorithms is the order routes are computed and reported in when a
// request names none.
var DefaultAlgorithms = []string{AlgorithmDijkstra, AlgorithmAStar, AlgorithmBFS}

// Marker is a point picked on the map. PlaceID and Address travel with it for
// the client's benefit and play no part in routing.
type Marker struct {
	LatLng  graph.Coordinate
	PlaceID string
	Address string
}

// RouteRequest asks for one route per algorithm from Start to End, through Via
// when it is set.
type RouteRequest struct {
	Start      Marker
	End        Marker
	Via        *Marker
	Algorithms []string // nil = DefaultAlgorithms
}

// AlgorithmRoute is one algorithm's answer.
type AlgorithmRoute struct {
	Algorithm string // requested name
	Strategy  string // Strategy.Name of what ran, e.g. "astar(great_circle,k=1)"
	Result
	Elapsed time.Duration
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Start  SnapResult
	End    SnapResult
	Via    *SnapResult
	Routes []AlgorithmRoute
}

// Stats summarizes the loaded graph.
type Stats struct {
	Nodes int
	Edges int
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, req RouteRequest) (*RouteResult, error)
	Stats() Stats
}

// ViaJoin decides how the two legs of a via route are stitched together.
type ViaJoin int

const (
	// ViaJoinDedupe keeps a single copy of the via node.
	ViaJoinDedupe ViaJoin = iota
	// ViaJoinConcat appends the legs as they are, so the via node appears twice.
	ViaJoinConcat
)

func (j ViaJoin) String() string {
	if j == ViaJoinConcat {
		return "concat"
	}
	return "dedupe"
}

// ParseViaJoin accepts "dedupe" or "concat".
func ParseViaJoin(s string) (ViaJoin, error) {
	switch s {
	case "dedupe", "":
		return ViaJoinDedupe, nil
	case "concat":
		return ViaJoinConcat, nil
	}
	return 0, fmt.Errorf("unknown via join %q (want dedupe or concat)", s)
}

// Options configures an Engine.
type Options struct {
	MaxSnapDistMeters float64 // 0 = unlimited
	ViaJoin           ViaJoin
	AStar             *AStar // nil = DefaultAStar()
	LinearSnap        bool   // use LinearSnapper instead of the R-tree index
}

// Engine implements Router over an in-memory Graph. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	g          *graph.Graph
	snapper    Snapper
	strategies map[string]Strategy
	viaJoin    ViaJoin
}

// NewEngine creates a routing engine for g.
func NewEngine(g *graph.Graph, opts Options) *Engine {
	astar := opts.AStar
	if astar == nil {
		astar = DefaultAStar()
	}

	var snapper Snapper
	if opts.LinearSnap {
		snapper = NewLinearSnapper(g, opts.MaxSnapDistMeters)
	} else {
		snapper = NewIndexedSnapper(g, opts.MaxSnapDistMeters)
	}

	log.Printf("Routing engine ready: %d nodes, %d edges, %s, via join %s",
		g.NumNodes(), g.NumEdges(), astar.Name(), opts.ViaJoin)

	return &Engine{
		g:       g,
		snapper: snapper,
		strategies: map[string]Strategy{
			AlgorithmDijkstra: Dijkstra{},
			AlgorithmAStar:    astar,
			AlgorithmBFS:      BreadthFirst{},
		},
		viaJoin: opts.ViaJoin,
	}
}

// Stats returns node and edge counts of the loaded graph.
func (e *Engine) Stats() Stats {
	return Stats{Nodes: e.g.NumNodes(), Edges: e.g.NumEdges()}
}

// Route snaps the markers to graph nodes and runs every requested algorithm.
func (e *Engine) Route(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	// Step 1: Validate markers.
	if err := req.Start.LatLng.Validate(); err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidCoordinate, err)
	}
	if err := req.End.LatLng.Validate(); err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrInvalidCoordinate, err)
	}
	if req.Via != nil {
		if err := req.Via.LatLng.Validate(); err != nil {
			return nil, fmt.Errorf("%w: via: %v", ErrInvalidCoordinate, err)
		}
	}

	names := req.Algorithms
	if len(names) == 0 {
		names = DefaultAlgorithms
	}
	strategies := make([]Strategy, len(names))
	for i, name := range names {
		s, ok := e.strategies[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
		}
		strategies[i] = s
	}

	// Step 2: Snap points to nearest graph nodes.
	startSnap, err := e.snapper.Snap(req.Start.LatLng)
	if err != nil {
		return nil, fmt.Errorf("snap start: %w", err)
	}
	endSnap, err := e.snapper.Snap(req.End.LatLng)
	if err != nil {
		return nil, fmt.Errorf("snap end: %w", err)
	}
	var viaSnap *SnapResult
	if req.Via != nil {
		v, err := e.snapper.Snap(req.Via.LatLng)
		if err != nil {
			return nil, fmt.Errorf("snap via: %w", err)
		}
		viaSnap = &v
	}

	// Step 3: Run each strategy over one or two legs.
	result := &RouteResult{
		Start:  startSnap,
		End:    endSnap,
		Via:    viaSnap,
		Routes: make([]AlgorithmRoute, 0, len(strategies)),
	}
	for i, s := range strategies {
		t0 := time.Now()
		res, err := e.run(ctx, s, startSnap.Node.Coord, endSnap.Node.Coord, viaSnap)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		result.Routes = append(result.Routes, AlgorithmRoute{
			Algorithm: names[i],
			Strategy:  s.Name(),
			Result:    res,
			Elapsed:   time.Since(t0),
		})
	}

	return result, nil
}

func (e *Engine) run(ctx context.Context, s Strategy, start, end graph.Coordinate, via *SnapResult) (Result, error) {
	if via == nil {
		return s.Search(ctx, e.g, start, end)
	}
	first, err := s.Search(ctx, e.g, start, via.Node.Coord)
	if err != nil {
		return Result{}, err
	}
	second, err := s.Search(ctx, e.g, via.Node.Coord, end)
	if err != nil {
		return Result{}, err
	}
	return JoinLegs(first, second, e.viaJoin), nil
}

// JoinLegs stitches start→via and via→end results. If either leg found no
// path there is no route through the via point and the result is empty.
func JoinLegs(first, second Result, join ViaJoin) Result {
	res := Result{Expanded: first.Expanded + second.Expanded}
	if !first.Found() || !second.Found() {
		return res
	}

	tail := second.Path
	if join == ViaJoinDedupe {
		tail = tail[1:]
	}
	res.Path = make([]graph.Coordinate, 0, len(first.Path)+len(tail))
	res.Path = append(res.Path, first.Path...)
	res.Path = append(res.Path, tail...)
	res.Cost = first.Cost + second.Cost
	return res
}
