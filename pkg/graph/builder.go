package graph

import (
	"sort"

	osmparser "route_finder/pkg/osm"
)

// FromOSM builds a Graph from parsed OSM edges.
//
// Nodes are keyed by the canonical form of their coordinates, so OSM nodes that
// share a position collapse into one graph node. Edges are sorted by source and
// then target OSM id, which makes the resulting dataset order deterministic for
// a given extract. Target-only nodes are registered too so they can be snapped.
func FromOSM(result *osmparser.ParseResult) *Graph {
	edges := make([]osmparser.RawEdge, len(result.Edges))
	copy(edges, result.Edges)

	// Sort edges by source node, then target.
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].FromNodeID != edges[j].FromNodeID {
			return edges[i].FromNodeID < edges[j].FromNodeID
		}
		return edges[i].ToNodeID < edges[j].ToNodeID
	})

	b := NewBuilder()
	for _, e := range edges {
		from := Coordinate{Lat: result.NodeLat[e.FromNodeID], Lng: result.NodeLon[e.FromNodeID]}
		to := Coordinate{Lat: result.NodeLat[e.ToNodeID], Lng: result.NodeLon[e.ToNodeID]}
		b.AddEdge(Key(from), to, e.Weight)
	}
	for _, e := range edges {
		b.AddNode(Key(Coordinate{Lat: result.NodeLat[e.ToNodeID], Lng: result.NodeLon[e.ToNodeID]}))
	}
	return b.Build()
}
