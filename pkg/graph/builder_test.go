package graph

import (
	"testing"

	"github.com/paulmach/osm"

	osmparser "route_finder/pkg/osm"
)

func TestFromOSMSimpleGraph(t *testing.T) {
	// Triangle: 100 -> 200 -> 300 -> 100
	//   Node 100: (1.0, 103.0)
	//   Node 200: (1.1, 103.0)
	//   Node 300: (1.0, 103.1)
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 300, ToNodeID: 100, Weight: 3},
			{FromNodeID: 100, ToNodeID: 200, Weight: 1},
			{FromNodeID: 200, ToNodeID: 300, Weight: 2},
		},
		NodeLat: map[osm.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osm.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	}

	g := FromOSM(result)

	if g.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes())
	}
	if g.NumEdges() != 3 {
		t.Fatalf("NumEdges = %d, want 3", g.NumEdges())
	}

	want := []string{"(1, 103)", "(1.1, 103)", "(1, 103.1)"}
	for i, k := range g.NodeKeys() {
		if k != want[i] {
			t.Errorf("NodeKeys()[%d] = %q, want %q", i, k, want[i])
		}
	}

	// Each node has exactly 1 outgoing edge.
	var total float64
	for _, k := range g.NodeKeys() {
		edges := g.Neighbors(k)
		if len(edges) != 1 {
			t.Errorf("node %s has %d edges, want 1", k, len(edges))
		}
		for _, e := range edges {
			total += e.Weight
		}
	}
	if total != 6 {
		t.Errorf("total weight = %v, want 6", total)
	}

	if got := g.Neighbors("(1, 103)")[0].To; got != "(1.1, 103)" {
		t.Errorf("edge target = %q, want (1.1, 103)", got)
	}
}

func TestFromOSMEmpty(t *testing.T) {
	g := FromOSM(&osmparser.ParseResult{
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	})
	if g.NumNodes() != 0 || g.NumEdges() != 0 {
		t.Errorf("got %d nodes, %d edges, want empty", g.NumNodes(), g.NumEdges())
	}
}

func TestFromOSMRegistersTargetOnlyNodes(t *testing.T) {
	// Oneway 1 -> 2: node 2 has no outgoing edge but must still be snappable.
	result := &osmparser.ParseResult{
		Edges:   []osmparser.RawEdge{{FromNodeID: 1, ToNodeID: 2, Weight: 5}},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1},
	}

	g := FromOSM(result)

	if !g.HasNode("(1.1, 103.1)") {
		t.Fatal("target-only node missing")
	}
	if n := len(g.Neighbors("(1.1, 103.1)")); n != 0 {
		t.Errorf("target-only node has %d edges, want 0", n)
	}
	if len(g.Nodes()) != 2 {
		t.Errorf("Nodes() = %d, want 2", len(g.Nodes()))
	}
}

func TestFromOSMDoesNotReorderInput(t *testing.T) {
	edges := []osmparser.RawEdge{
		{FromNodeID: 2, ToNodeID: 1, Weight: 1},
		{FromNodeID: 1, ToNodeID: 2, Weight: 1},
	}
	result := &osmparser.ParseResult{
		Edges:   edges,
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1},
	}

	FromOSM(result)

	if edges[0].FromNodeID != 2 {
		t.Error("FromOSM sorted the caller's slice")
	}
}
