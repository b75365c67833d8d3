package graph

// Edge is a directed, weighted edge out of a source node.
type Edge struct {
	To     string     // canonical key of End
	End    Coordinate // destination coordinate as stored in the dataset
	Weight float64    // non-negative; unit is uniform across the graph (meters for OSM builds)
}

// Node is a source node that can be snapped to.
type Node struct {
	Key   string
	Coord Coordinate
}

// Graph is an immutable directed graph keyed by coordinate strings.
//
// It is built once and only read afterwards, so any number of searches may use
// it concurrently without locking.
type Graph struct {
	keys     []string          // every source key, dataset order
	nodes    []Node            // source keys that parse, dataset order
	adj      map[string][]Edge // source key -> outgoing edges
	numEdges int
}

// Neighbors returns the outgoing edges of key in dataset order. Unknown keys
// and keys without edges yield nil. The returned slice must not be modified.
func (g *Graph) Neighbors(key string) []Edge {
	return g.adj[key]
}

// HasNode reports whether key appears as a source node.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.adj[key]
	return ok
}

// NodeKeys returns every source key in dataset order.
func (g *Graph) NodeKeys() []string {
	return g.keys
}

// Nodes returns the source nodes whose key parses as a coordinate, in dataset
// order. These are the candidates for snapping.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// NumNodes returns the number of source nodes.
func (g *Graph) NumNodes() int { return len(g.keys) }

// NumEdges returns the total number of directed edges.
func (g *Graph) NumEdges() int { return g.numEdges }

// Builder accumulates nodes and edges and produces an immutable Graph.
// It preserves the order in which source keys are first seen and the order of
// each node's edges.
type Builder struct {
	keys     []string
	adj      map[string][]Edge
	numEdges int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{adj: make(map[string][]Edge)}
}

// AddNode registers key as a source node, even if it never gets an edge.
func (b *Builder) AddNode(key string) {
	if _, ok := b.adj[key]; ok {
		return
	}
	b.keys = append(b.keys, key)
	b.adj[key] = nil
}

// AddEdge appends an edge from the node with the given key to end.
func (b *Builder) AddEdge(from string, end Coordinate, weight float64) {
	b.AddNode(from)
	b.adj[from] = append(b.adj[from], Edge{To: Key(end), End: end, Weight: weight})
	b.numEdges++
}

// Build returns the finished Graph. The Builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	nodes := make([]Node, 0, len(b.keys))
	for _, k := range b.keys {
		c, err := ParseKey(k)
		if err != nil {
			continue
		}
		nodes = append(nodes, Node{Key: k, Coord: c})
	}
	g := &Graph{
		keys:     b.keys,
		nodes:    nodes,
		adj:      b.adj,
		numEdges: b.numEdges,
	}
	b.keys, b.adj = nil, nil
	return g
}
