// Package pathfind builds a visibility graph over inflated building
// corners and answers A* shortest-path queries against it (spec §4.4).
package pathfind

import (
	"container/heap"
	"math"

	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
)

// InflationPadding is how far a building's corners are pushed outward
// when building visibility-graph nodes, leaving clearance for an agent's
// physical size.
const InflationPadding = 1.0

// MinGapWidth rejects visibility edges that would squeeze an agent
// through a corridor narrower than this, even if the inflated corners
// technically see each other (spec §4.4).
const MinGapWidth = 2.0

// losShrink pulls segment endpoints in slightly before testing
// line-of-sight, avoiding spurious self-intersections at shared corners.
const losShrink = 0.01

// Result is the outcome of a findPath query.
type Result struct {
	Found     bool
	Waypoints []geom.Point2D
	Distance  float64
}

type node struct {
	pos       geom.Point2D
	neighbors map[int]float64
}

// PathFinder builds and queries a visibility graph over an environment's
// inflated building corners. It is lazily (re)built on the first query
// after the environment changes.
type PathFinder struct {
	env   *geom.Environment
	nodes []node
	dirty bool
}

// New creates a PathFinder bound to an environment. Call Invalidate
// whenever the environment's buildings change.
func New(env *geom.Environment) *PathFinder {
	return &PathFinder{env: env, dirty: true}
}

// Invalidate marks the visibility graph stale so the next query rebuilds
// it.
func (pf *PathFinder) Invalidate() { pf.dirty = true }

func (pf *PathFinder) ensureBuilt() {
	if !pf.dirty {
		return
	}
	pf.build()
	pf.dirty = false
}

func (pf *PathFinder) build() {
	buildings := pf.env.Buildings()

	var positions []geom.Point2D
	for _, bld := range buildings {
		inflated := geom.Inflate(bld.Vertices, InflationPadding)
		positions = append(positions, inflated...)
	}

	nodes := make([]node, len(positions))
	for i, p := range positions {
		nodes[i] = node{pos: p, neighbors: make(map[int]float64)}
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if pf.canSee(nodes[i].pos, nodes[j].pos, buildings) {
				d := nodes[i].pos.Distance(nodes[j].pos)
				nodes[i].neighbors[j] = d
				nodes[j].neighbors[i] = d
			}
		}
	}

	pf.nodes = nodes
}

// canSee reports whether a and b can see each other: no original
// (non-inflated) building blocks the shrunk segment, and the segment's
// midpoint keeps at least MinGapWidth/2 clearance from every building.
func (pf *PathFinder) canSee(a, b geom.Point2D, buildings []*geom.Building) bool {
	dir := b.Sub(a)
	length := dir.Length()
	if length < geom.Epsilon {
		return true
	}
	unit := dir.Normalize()
	shrunkA := a.Add(unit.Scale(losShrink))
	shrunkB := b.Sub(unit.Scale(losShrink))

	for _, bld := range buildings {
		if blocksSegment(shrunkA, shrunkB, bld.Vertices) {
			return false
		}
	}

	mid := a.Add(b).Scale(0.5)
	for _, bld := range buildings {
		if distanceToPolygon(mid, bld.Vertices) < MinGapWidth/2 {
			return false
		}
	}

	return true
}

func blocksSegment(a, b geom.Point2D, vertices []geom.Point2D) bool {
	n := len(vertices)
	for i := 0; i < n; i++ {
		c := vertices[i]
		d := vertices[(i+1)%n]
		if _, ok := geom.IntersectSegments(a, b, c, d); ok {
			return true
		}
	}
	return false
}

func distanceToPolygon(p geom.Point2D, vertices []geom.Point2D) float64 {
	n := len(vertices)
	best := math.MaxFloat64
	for i := 0; i < n; i++ {
		d := distanceToSegment(p, vertices[i], vertices[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(p, a, b geom.Point2D) float64 {
	ab := b.Sub(a)
	abLen2 := ab.Dot(ab)
	if abLen2 < geom.Epsilon {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / abLen2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Add(ab.Scale(t))
	return p.Distance(closest)
}

// FindPath queries the visibility graph for a path from start to goal
// (spec §4.4):
//
//  1. no buildings at all -> direct [start, goal];
//  2. start sees goal directly -> direct [start, goal];
//  3. otherwise wire start and goal in as temporary nodes and run A*;
//  4. on failure, return {Found: false, Waypoints: [start, goal]} with
//     the direct distance, so the caller's collision resolver can still
//     make local progress.
func (pf *PathFinder) FindPath(start, goal geom.Point2D) Result {
	buildings := pf.env.Buildings()
	direct := start.Distance(goal)

	if len(buildings) == 0 {
		return Result{Found: true, Waypoints: []geom.Point2D{start, goal}, Distance: direct}
	}

	pf.ensureBuilt()

	if pf.canSee(start, goal, buildings) {
		return Result{Found: true, Waypoints: []geom.Point2D{start, goal}, Distance: direct}
	}

	startIdx := len(pf.nodes)
	goalIdx := startIdx + 1

	temp := append(append([]node(nil), pf.nodes...),
		node{pos: start, neighbors: make(map[int]float64)},
		node{pos: goal, neighbors: make(map[int]float64)},
	)

	wireTemporary(temp, startIdx, buildings, pf.canSeeFn(buildings))
	wireTemporary(temp, goalIdx, buildings, pf.canSeeFn(buildings))
	// temp shares its neighbor maps with pf.nodes, so drop the edges that
	// point at the temporary nodes once the search is done.
	defer func() {
		for _, idx := range []int{startIdx, goalIdx} {
			for j := range temp[idx].neighbors {
				delete(temp[j].neighbors, idx)
			}
		}
	}()

	waypoints, dist, found := astar(temp, startIdx, goalIdx)
	if !found {
		return Result{Found: false, Waypoints: []geom.Point2D{start, goal}, Distance: direct}
	}
	return Result{Found: true, Waypoints: waypoints, Distance: dist}
}

func (pf *PathFinder) canSeeFn(buildings []*geom.Building) func(a, b geom.Point2D) bool {
	return func(a, b geom.Point2D) bool { return pf.canSee(a, b, buildings) }
}

func wireTemporary(nodes []node, idx int, buildings []*geom.Building, canSee func(a, b geom.Point2D) bool) {
	me := nodes[idx].pos
	for j, n := range nodes {
		if j == idx {
			continue
		}
		if canSee(me, n.pos) {
			d := me.Distance(n.pos)
			nodes[idx].neighbors[j] = d
			nodes[j].neighbors[idx] = d
		}
	}
}

type openEntry struct {
	idx  int
	f    float64
	g    float64
}

type openQueue []openEntry

func (q openQueue) Len() int            { return len(q) }
func (q openQueue) Less(i, j int) bool   { return q[i].f < q[j].f }
func (q openQueue) Swap(i, j int)        { q[i], q[j] = q[j], q[i] }
func (q *openQueue) Push(x interface{})  { *q = append(*q, x.(openEntry)) }
func (q *openQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// astar runs an A* search with Euclidean heuristic over nodes from start
// to goal, returning the waypoint positions (including start and goal)
// and total path length.
func astar(nodes []node, start, goal int) ([]geom.Point2D, float64, bool) {
	const inf = math.MaxFloat64

	gScore := make([]float64, len(nodes))
	cameFrom := make([]int, len(nodes))
	visited := make([]bool, len(nodes))
	for i := range gScore {
		gScore[i] = inf
		cameFrom[i] = -1
	}
	gScore[start] = 0

	heuristic := func(i int) float64 { return nodes[i].pos.Distance(nodes[goal].pos) }

	open := &openQueue{{idx: start, f: heuristic(start), g: 0}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(openEntry)
		if visited[cur.idx] {
			continue
		}
		visited[cur.idx] = true

		if cur.idx == goal {
			return reconstruct(nodes, cameFrom, goal), gScore[goal], true
		}

		for neighbor, dist := range nodes[cur.idx].neighbors {
			if visited[neighbor] {
				continue
			}
			tentative := gScore[cur.idx] + dist
			if tentative < gScore[neighbor] {
				gScore[neighbor] = tentative
				cameFrom[neighbor] = cur.idx
				heap.Push(open, openEntry{idx: neighbor, f: tentative + heuristic(neighbor), g: tentative})
			}
		}
	}

	return nil, 0, false
}

func reconstruct(nodes []node, cameFrom []int, goal int) []geom.Point2D {
	var path []geom.Point2D
	for at := goal; at != -1; at = cameFrom[at] {
		path = append([]geom.Point2D{nodes[at].pos}, path...)
	}
	return path
}
