package routing

import (
	"context"
	"math"

	"route_finder/pkg/graph"
)

// ctxCheckInterval is how many frontier pops happen between context checks.
const ctxCheckInterval = 100

// Result is the outcome of one search.
type Result struct {
	Path     []graph.Coordinate // start to end inclusive; empty when the end is unreachable
	Cost     float64            // sum of edge weights along Path
	Expanded int                // nodes taken off the frontier and expanded
}

// Found reports whether the search reached the end node.
func (r Result) Found() bool { return len(r.Path) > 0 }

// Strategy is a single-pair path search over a Graph.
//
// An unreachable end, or a start with no outgoing edges, is not an error: the
// Result simply has an empty Path. The only error is ctx's.
type Strategy interface {
	Name() string
	Search(ctx context.Context, g *graph.Graph, start, end graph.Coordinate) (Result, error)
}

// link records how a node was first reached.
type link struct {
	from  string
	coord graph.Coordinate
}

// searchState is the per-call working set. Nothing in it outlives Search.
type searchState struct {
	dist    map[string]float64
	prev    map[string]link
	visited map[string]struct{}
}

func newSearchState(startKey string, start graph.Coordinate) *searchState {
	s := &searchState{
		dist:    make(map[string]float64),
		prev:    make(map[string]link),
		visited: make(map[string]struct{}),
	}
	s.dist[startKey] = 0
	s.prev[startKey] = link{coord: start}
	return s
}

// distance returns the best known cost to key, +Inf if never reached.
func (s *searchState) distance(key string) float64 {
	if d, ok := s.dist[key]; ok {
		return d
	}
	return math.Inf(1)
}

func (s *searchState) isVisited(key string) bool {
	_, ok := s.visited[key]
	return ok
}

// reconstruct walks predecessors back from endKey and returns the path in
// start-to-end order.
func (s *searchState) reconstruct(startKey, endKey string) []graph.Coordinate {
	var path []graph.Coordinate
	for key := endKey; ; {
		l := s.prev[key]
		path = append(path, l.coord)
		if key == startKey {
			break
		}
		key = l.from
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// BreadthFirst finds the path with the fewest edges. Weights are ignored for
// ordering; Cost still reports the weight of the returned path.
type BreadthFirst struct{}

func (BreadthFirst) Name() string { return "bfs" }

func (BreadthFirst) Search(ctx context.Context, g *graph.Graph, start, end graph.Coordinate) (Result, error) {
	startKey, endKey := graph.Key(start), graph.Key(end)
	st := newSearchState(startKey, start)

	// Nodes are marked visited on enqueue so each enters the queue once.
	queue := []string{startKey}
	st.visited[startKey] = struct{}{}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var res Result
	for head := 0; head < len(queue); head++ {
		if head%ctxCheckInterval == ctxCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		u := queue[head]
		res.Expanded++
		if u == endKey {
			res.Path = st.reconstruct(startKey, endKey)
			res.Cost = st.dist[endKey]
			return res, nil
		}

		d := st.dist[u]
		for _, e := range g.Neighbors(u) {
			if st.isVisited(e.To) {
				continue
			}
			st.visited[e.To] = struct{}{}
			st.dist[e.To] = d + e.Weight
			st.prev[e.To] = link{from: u, coord: e.End}
			queue = append(queue, e.To)
		}
	}
	return res, nil
}

// priorityFunc returns the frontier priority of v reached over u→v with
// cumulative cost d.
type priorityFunc func(u, v graph.Coordinate, d float64) float64

// bestFirst is the label-setting loop shared by Dijkstra and AStar.
// Relaxation re-enqueues instead of decreasing keys, so stale entries for
// already-visited nodes are skipped on pop. A visited node's distance is
// final: it is never relaxed again, even under an inadmissible heuristic.
func bestFirst(ctx context.Context, g *graph.Graph, start, end graph.Coordinate, prio priorityFunc) (Result, error) {
	startKey, endKey := graph.Key(start), graph.Key(end)
	st := newSearchState(startKey, start)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var pq MinHeap
	pq.Push(startKey, start, 0)

	var res Result
	iterations := 0
	for pq.Len() > 0 {
		// Check context cancellation periodically.
		iterations++
		if iterations%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		item := pq.Pop()
		u := item.Key
		if st.isVisited(u) {
			continue // stale entry
		}
		st.visited[u] = struct{}{}
		res.Expanded++

		if u == endKey {
			res.Path = st.reconstruct(startKey, endKey)
			res.Cost = st.dist[endKey]
			return res, nil
		}

		d := st.dist[u]
		for _, e := range g.Neighbors(u) {
			if st.isVisited(e.To) {
				continue
			}
			nd := d + e.Weight
			if nd < st.distance(e.To) {
				st.dist[e.To] = nd
				st.prev[e.To] = link{from: u, coord: e.End}
				pq.Push(e.To, e.End, prio(item.Coord, e.End, nd))
			}
		}
	}
	return res, nil
}
