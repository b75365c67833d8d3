package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient, max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// keyIndex assigns a dense index to every key in g: source keys first in
// dataset order, then destination-only keys in the order they are reached.
func keyIndex(g *Graph) ([]string, map[string]uint32) {
	keys := make([]string, 0, g.NumNodes())
	idx := make(map[string]uint32, g.NumNodes())
	add := func(k string) {
		if _, ok := idx[k]; ok {
			return
		}
		idx[k] = uint32(len(keys))
		keys = append(keys, k)
	}
	for _, k := range g.NodeKeys() {
		add(k)
	}
	for _, k := range g.NodeKeys() {
		for _, e := range g.Neighbors(k) {
			add(e.To)
		}
	}
	return keys, idx
}

// LargestComponent returns the keys belonging to the largest weakly connected
// component (treating the directed graph as undirected). Destination-only
// nodes are counted. Ties go to the component whose first key comes earliest.
func LargestComponent(g *Graph) []string {
	if g.NumNodes() == 0 {
		return nil
	}

	keys, idx := keyIndex(g)
	uf := NewUnionFind(uint32(len(keys)))

	// Union all edges (both directions treated as undirected).
	for _, k := range g.NodeKeys() {
		u := idx[k]
		for _, e := range g.Neighbors(k) {
			uf.Union(u, idx[e.To])
		}
	}

	// Find the representative with the largest size.
	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := range uint32(len(keys)) {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	// Collect all keys in the largest component.
	out := make([]string, 0, bestSize)
	for i, k := range keys {
		if uf.Find(uint32(i)) == bestRoot {
			out = append(out, k)
		}
	}
	return out
}

// FilterToComponent creates a new graph containing only the given keys.
// Source order and per-node edge order are preserved; edges leaving the set
// are dropped.
func FilterToComponent(g *Graph, keys []string) *Graph {
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}

	b := NewBuilder()
	for _, k := range g.NodeKeys() {
		if _, ok := keep[k]; !ok {
			continue
		}
		b.AddNode(k)
		for _, e := range g.Neighbors(k) {
			if _, ok := keep[e.To]; ok {
				b.AddEdge(k, e.End, e.Weight)
			}
		}
	}
	return b.Build()
}
