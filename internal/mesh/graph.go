package mesh

import "sort"

// MeshGraph tracks, per peer, the set of neighbors that peer most
// recently announced (spec §3). A confirmed edge (A,B) exists iff A
// announced B and B announced A.
type MeshGraph struct {
	announcements map[string]map[string]struct{}
}

// NewMeshGraph creates an empty graph.
func NewMeshGraph() *MeshGraph {
	return &MeshGraph{announcements: make(map[string]map[string]struct{})}
}

// ReplaceAnnouncements replaces peer's entire outbound announcement set
// with neighbors (no merge — spec §3), filtering out any self-reference.
func (g *MeshGraph) ReplaceAnnouncements(peer string, neighbors []string) {
	set := make(map[string]struct{}, len(neighbors))
	for _, n := range neighbors {
		if n != peer {
			set[n] = struct{}{}
		}
	}
	g.announcements[peer] = set
}

func (g *MeshGraph) announces(a, b string) bool {
	set, ok := g.announcements[a]
	if !ok {
		return false
	}
	_, ok = set[b]
	return ok
}

// Edge is a canonicalized confirmed edge: A is always lexicographically
// <= B.
type Edge struct {
	A, B string
}

// GetConfirmedEdges enumerates every (a,b) pair mutually announced by
// both endpoints, canonicalized by sorted ID so (a,b) and (b,a) never
// both appear.
func (g *MeshGraph) GetConfirmedEdges() []Edge {
	seen := make(map[Edge]struct{})
	var edges []Edge
	for a := range g.announcements {
		for b := range g.announcements[a] {
			if !g.announces(b, a) {
				continue
			}
			e := canonicalEdge(a, b)
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

func canonicalEdge(a, b string) Edge {
	if a <= b {
		return Edge{A: a, B: b}
	}
	return Edge{A: b, B: a}
}

// GetShortestPath runs unit-weight BFS over confirmed edges and returns
// the shortest sequence of peer IDs from start to end, or nil if no such
// sequence exists.
func (g *MeshGraph) GetShortestPath(start, end string) []string {
	if start == end {
		return []string{start}
	}

	adjacency := make(map[string][]string)
	for _, e := range g.GetConfirmedEdges() {
		adjacency[e.A] = append(adjacency[e.A], e.B)
		adjacency[e.B] = append(adjacency[e.B], e.A)
	}

	visited := map[string]bool{start: true}
	prev := make(map[string]string)
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = cur
			if next == end {
				return reconstructPath(prev, start, end)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

func reconstructPath(prev map[string]string, start, end string) []string {
	path := []string{end}
	for path[0] != start {
		path = append([]string{prev[path[0]]}, path...)
	}
	return path
}
