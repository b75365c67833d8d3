package routing

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"route_finder/pkg/graph"
)

// Dijkstra finds the minimum-weight path. It stops as soon as the end node is
// taken off the frontier.
type Dijkstra struct{}

func (Dijkstra) Name() string { return "dijkstra" }

func (Dijkstra) Search(ctx context.Context, g *graph.Graph, start, end graph.Coordinate) (Result, error) {
	return bestFirst(ctx, g, start, end, func(_, _ graph.Coordinate, d float64) float64 {
		return d
	})
}

// AStar orders the frontier by d(v) + k·h(v). With an admissible heuristic and
// k ≤ 1 its path cost equals Dijkstra's; anything else trades optimality for
// fewer expansions.
type AStar struct {
	heuristic HeuristicKind
	weight    float64
}

// NewAStar returns an AStar using heuristic kind scaled by weight k.
func NewAStar(kind HeuristicKind, weight float64) (*AStar, error) {
	if _, ok := heuristicNames[kind]; !ok {
		return nil, fmt.Errorf("unknown heuristic %v", kind)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return nil, fmt.Errorf("heuristic weight must be a finite non-negative number, got %v", weight)
	}
	return &AStar{heuristic: kind, weight: weight}, nil
}

// DefaultAStar is the great-circle heuristic with k = 1.
func DefaultAStar() *AStar {
	return &AStar{heuristic: GreatCircle, weight: 1}
}

// Heuristic returns the heuristic in effect.
func (a *AStar) Heuristic() HeuristicKind { return a.heuristic }

// Weight returns the heuristic multiplier k.
func (a *AStar) Weight() float64 { return a.weight }

// Name identifies the heuristic and multiplier, e.g. "astar(great_circle,k=1)".
func (a *AStar) Name() string {
	return "astar(" + a.heuristic.String() + ",k=" + strconv.FormatFloat(a.weight, 'g', -1, 64) + ")"
}

func (a *AStar) Search(ctx context.Context, g *graph.Graph, start, end graph.Coordinate) (Result, error) {
	h, k := a.heuristic, a.weight
	return bestFirst(ctx, g, start, end, func(u, v graph.Coordinate, d float64) float64 {
		if k == 0 {
			return d
		}
		return d + k*h.Estimate(u, v, end)
	})
}
