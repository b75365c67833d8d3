package routing

import (
	"math"

	"route_finder/pkg/graph"
)

// MinHeap is a concrete-typed min-heap for the search frontier.
// Avoids interface boxing overhead of container/heap.
// Entries with equal priority pop in insertion order.
type MinHeap struct {
	items []PQItem
	seq   uint64
}

// PQItem is a priority queue entry.
type PQItem struct {
	Key   string
	Coord graph.Coordinate
	Prio  float64
	seq   uint64
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(key string, coord graph.Coordinate, prio float64) {
	h.items = append(h.items, PQItem{Key: key, Coord: coord, Prio: prio, seq: h.seq})
	h.seq++
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) PeekPrio() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].Prio
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
	h.seq = 0
}

func (h *MinHeap) less(i, j int) bool {
	a, b := &h.items[i], &h.items[j]
	if a.Prio != b.Prio {
		return a.Prio < b.Prio
	}
	return a.seq < b.seq
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
