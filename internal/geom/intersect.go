package geom

import "sort"

// SegmentIntersection describes where segment A-B crosses segment C-D.
type SegmentIntersection struct {
	Point Point2D
	T     float64 // parameter along A-B, 0..1
	U     float64 // parameter along C-D, 0..1
}

// IntersectSegments computes the intersection of segment a-b with segment
// c-d. Parallel segments (|denominator| < Epsilon) report no intersection.
// Endpoints lying exactly on the other segment count as an intersection
// when both parameters fall in [0,1].
func IntersectSegments(a, b, c, d Point2D) (SegmentIntersection, bool) {
	r := b.Sub(a)
	s := d.Sub(c)

	denom := r.X*s.Y - r.Y*s.X
	if denom > -Epsilon && denom < Epsilon {
		return SegmentIntersection{}, false
	}

	diff := c.Sub(a)
	t := (diff.X*s.Y - diff.Y*s.X) / denom
	u := (diff.X*r.Y - diff.Y*r.X) / denom

	if t < 0 || t > 1 || u < 0 || u > 1 {
		return SegmentIntersection{}, false
	}

	return SegmentIntersection{Point: a.Add(r.Scale(t)), T: t, U: u}, true
}

// edges returns the (not-closed) polygon's edges as consecutive vertex
// pairs, wrapping from the last vertex back to the first.
func edges(vertices []Point2D) [][2]Point2D {
	n := len(vertices)
	out := make([][2]Point2D, n)
	for i := 0; i < n; i++ {
		out[i] = [2]Point2D{vertices[i], vertices[(i+1)%n]}
	}
	return out
}

// LineThroughPolygon finds where segment A-B crosses a polygon boundary.
// It returns the entry and exit points (the first and last crossing
// sorted by parameter t along A->B) and the distance between them. If
// fewer than two crossings exist and both A and B lie inside the polygon,
// it returns (A, B, |AB|) instead — the whole segment is "inside". If
// neither condition holds, ok is false (spec §4.2).
func LineThroughPolygon(a, b Point2D, vertices []Point2D) (entry, exit Point2D, distance float64, ok bool) {
	var ts []float64
	var pts []Point2D
	for _, e := range edges(vertices) {
		if hit, found := IntersectSegments(a, b, e[0], e[1]); found {
			ts = append(ts, hit.T)
			pts = append(pts, hit.Point)
		}
	}

	if len(ts) >= 2 {
		idx := make([]int, len(ts))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(i, j int) bool { return ts[idx[i]] < ts[idx[j]] })
		entry = pts[idx[0]]
		exit = pts[idx[len(idx)-1]]
		return entry, exit, entry.Distance(exit), true
	}

	if PointInPolygon(a, vertices) && PointInPolygon(b, vertices) {
		return a, b, a.Distance(b), true
	}

	return Point2D{}, Point2D{}, 0, false
}

// hitEpsilon ignores intersections essentially at the segment's own
// origin, preventing a collision resolver from re-hitting the edge it is
// currently sliding away from.
const hitEpsilon = 1e-6

// Collision is the result of a FirstCollision query.
type Collision struct {
	Point    Point2D
	Normal   Point2D // unit, points away from the polygon interior
	Building *Building
	T        float64
}

// FirstCollision finds the earliest point along segment from->to that
// crosses the boundary of any candidate building, returning that point,
// the outward-facing normal of the hit edge, and the building hit.
// Intersections with t < hitEpsilon are ignored.
func FirstCollision(from, to Point2D, candidates []*Building) (Collision, bool) {
	var best Collision
	found := false

	for _, bld := range candidates {
		for _, e := range edges(bld.Vertices) {
			hit, ok := IntersectSegments(from, to, e[0], e[1])
			if !ok || hit.T < hitEpsilon {
				continue
			}
			if found && hit.T >= best.T {
				continue
			}

			edgeVec := e[1].Sub(e[0])
			normal := edgeVec.Perp().Normalize()
			// Orient the normal away from the polygon's interior by
			// testing a point nudged along each candidate direction.
			mid := e[0].Add(e[1]).Scale(0.5)
			probe := mid.Add(normal.Scale(hitEpsilon * 100))
			if PointInPolygon(probe, bld.Vertices) {
				normal = normal.Scale(-1)
			}

			best = Collision{Point: hit.Point, Normal: normal, Building: bld, T: hit.T}
			found = true
		}
	}

	return best, found
}

// ProjectOntoSurface returns v with its component along unit normal n
// removed: v - (v.n)n. Used to slide a velocity/displacement along a wall
// it just struck.
func ProjectOntoSurface(v, n Point2D) Point2D {
	return v.Sub(n.Scale(v.Dot(n)))
}
