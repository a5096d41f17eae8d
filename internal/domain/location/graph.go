// Package location models the city sector graph used to route patients
// to nearby doctors. Sectors are a small fixed set of named districts;
// edges carry travel distances in abstract units.
package location

import (
	"container/heap"
	"math"
)

// Unreachable is the distance reported for a sector that exists in the
// graph but has no path from the source.
const Unreachable = math.MaxInt

// ValidSectors is the closed set of sector names the clinic network covers.
var ValidSectors = []string{"G-9", "G-10", "F-8", "F-9", "F-10"}

func IsValidSector(sector string) bool {
	for _, s := range ValidSectors {
		if s == sector {
			return true
		}
	}
	return false
}

type edge struct {
	to       string
	distance int
}

// Graph is an undirected weighted sector graph. Edges are added once at
// startup; duplicate edges are kept as parallel entries, which is harmless
// for shortest-path queries since every entry is relaxed.
type Graph struct {
	adjacency map[string][]edge
}

func NewGraph() *Graph {
	return &Graph{adjacency: make(map[string][]edge)}
}

// NewCityGraph builds the clinic network's sector map with its fixed
// travel distances.
func NewCityGraph() *Graph {
	g := NewGraph()
	_ = g.AddEdge("G-9", "G-10", 2)
	_ = g.AddEdge("G-9", "F-9", 3)
	_ = g.AddEdge("F-9", "F-10", 2)
	_ = g.AddEdge("F-10", "F-8", 2)
	_ = g.AddEdge("F-8", "G-10", 3)
	return g
}

// AddEdge adds a bidirectional edge between two sectors.
func (g *Graph) AddEdge(from, to string, distance int) error {
	if distance < 0 {
		return ErrNegativeWeight
	}
	g.adjacency[from] = append(g.adjacency[from], edge{to: to, distance: distance})
	g.adjacency[to] = append(g.adjacency[to], edge{to: from, distance: distance})
	return nil
}

// Sectors returns every sector that appears in at least one edge.
func (g *Graph) Sectors() []string {
	out := make([]string, 0, len(g.adjacency))
	for s := range g.adjacency {
		out = append(out, s)
	}
	return out
}

// ShortestDistances runs Dijkstra from source and returns the minimum
// distance to every sector present in the graph. Sectors with no path
// from source map to Unreachable. The source itself always maps to 0,
// even if it has no edges.
func (g *Graph) ShortestDistances(source string) map[string]int {
	distances := make(map[string]int, len(g.adjacency)+1)
	for s := range g.adjacency {
		distances[s] = Unreachable
	}
	distances[source] = 0

	frontier := &distanceHeap{{sector: source, distance: 0}}
	visited := make(map[string]bool, len(g.adjacency))

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(frontierItem)
		if visited[current.sector] {
			continue
		}
		visited[current.sector] = true

		for _, e := range g.adjacency[current.sector] {
			if visited[e.to] {
				continue
			}
			if next := current.distance + e.distance; next < distances[e.to] {
				distances[e.to] = next
				heap.Push(frontier, frontierItem{sector: e.to, distance: next})
			}
		}
	}

	return distances
}

type frontierItem struct {
	sector   string
	distance int
}

type distanceHeap []frontierItem

func (h distanceHeap) Len() int           { return len(h) }
func (h distanceHeap) Less(i, j int) bool { return h[i].distance < h[j].distance }
func (h distanceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *distanceHeap) Push(x any)        { *h = append(*h, x.(frontierItem)) }
func (h *distanceHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
