package mesh

import "testing"

func TestReplaceAnnouncementsHasNoMerge(t *testing.T) {
	g := NewMeshGraph()
	g.ReplaceAnnouncements("a", []string{"b", "c"})
	g.ReplaceAnnouncements("a", []string{"d"})

	if g.announces("a", "b") || g.announces("a", "c") {
		t.Fatalf("expected earlier announcement to be fully replaced, not merged")
	}
	if !g.announces("a", "d") {
		t.Fatalf("expected latest announcement to be recorded")
	}
}

func TestReplaceAnnouncementsDropsSelfReference(t *testing.T) {
	g := NewMeshGraph()
	g.ReplaceAnnouncements("a", []string{"a", "b"})
	if g.announces("a", "a") {
		t.Fatalf("expected self-reference to be filtered out")
	}
	if !g.announces("a", "b") {
		t.Fatalf("expected b to still be recorded")
	}
}

func TestGetConfirmedEdgesRequiresMutualAnnouncement(t *testing.T) {
	g := NewMeshGraph()
	g.ReplaceAnnouncements("a", []string{"b"})

	if edges := g.GetConfirmedEdges(); len(edges) != 0 {
		t.Fatalf("expected no confirmed edges with only a one-sided announcement, got %v", edges)
	}

	g.ReplaceAnnouncements("b", []string{"a"})
	edges := g.GetConfirmedEdges()
	if len(edges) != 1 {
		t.Fatalf("expected exactly one confirmed edge, got %v", edges)
	}
	if edges[0] != (Edge{A: "a", B: "b"}) {
		t.Fatalf("expected canonical edge a,b, got %+v", edges[0])
	}
}

func TestGetConfirmedEdgesDoesNotDuplicateReversedPair(t *testing.T) {
	g := NewMeshGraph()
	g.ReplaceAnnouncements("b", []string{"a"})
	g.ReplaceAnnouncements("a", []string{"b"})

	edges := g.GetConfirmedEdges()
	if len(edges) != 1 {
		t.Fatalf("expected one canonicalized edge regardless of announcement order, got %v", edges)
	}
}

func TestGetShortestPathSameNode(t *testing.T) {
	g := NewMeshGraph()
	path := g.GetShortestPath("a", "a")
	if len(path) != 1 || path[0] != "a" {
		t.Fatalf("expected trivial path [a], got %v", path)
	}
}

func TestGetShortestPathNoRoute(t *testing.T) {
	g := NewMeshGraph()
	g.ReplaceAnnouncements("a", []string{"b"})
	g.ReplaceAnnouncements("b", []string{"a"})

	if path := g.GetShortestPath("a", "z"); path != nil {
		t.Fatalf("expected nil path to unreachable node, got %v", path)
	}
}

func TestGetShortestPathAcrossRelay(t *testing.T) {
	g := NewMeshGraph()
	// a - b - c, confirmed both directions on each hop
	g.ReplaceAnnouncements("a", []string{"b"})
	g.ReplaceAnnouncements("b", []string{"a", "c"})
	g.ReplaceAnnouncements("c", []string{"b"})

	path := g.GetShortestPath("a", "c")
	want := []string{"a", "b", "c"}
	if len(path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, path)
		}
	}
}

func TestGetShortestPathPicksShorterOfTwoRoutes(t *testing.T) {
	g := NewMeshGraph()
	// Direct a-d edge, plus a longer a-b-c-d route; BFS must prefer direct.
	pairs := [][2]string{{"a", "d"}, {"a", "b"}, {"b", "c"}, {"c", "d"}}
	for _, p := range pairs {
		existingA := neighborsOf(g, p[0])
		existingB := neighborsOf(g, p[1])
		g.ReplaceAnnouncements(p[0], append(existingA, p[1]))
		g.ReplaceAnnouncements(p[1], append(existingB, p[0]))
	}

	path := g.GetShortestPath("a", "d")
	if len(path) != 2 {
		t.Fatalf("expected direct 2-node path a,d, got %v", path)
	}
}

func neighborsOf(g *MeshGraph, id string) []string {
	set, ok := g.announcements[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}
