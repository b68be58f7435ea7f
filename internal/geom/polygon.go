package geom

import "math"

// Building is a static obstacle: a simple polygon (winding order
// unconstrained, not closed) with material and arbitrary properties.
type Building struct {
	ID         string
	Material   string
	Vertices   []Point2D
	Bounds     AABB
	Properties map[string]string
}

// NewBuilding constructs a Building and computes its bounds. Polygons with
// fewer than 3 vertices are a caller error at the boundary (spec §6); this
// constructor does not itself reject them so that callers can validate
// with IsValidPolygon before committing to building one.
func NewBuilding(id, material string, vertices []Point2D, properties map[string]string) Building {
	return Building{
		ID:         id,
		Material:   material,
		Vertices:   vertices,
		Bounds:     ComputeAABB(vertices),
		Properties: properties,
	}
}

// IsValidPolygon reports whether vertices form a usable polygon: at least
// 3 vertices.
func IsValidPolygon(vertices []Point2D) bool {
	return len(vertices) >= 3
}

// PointInPolygon performs an even-odd ray cast. Points exactly on an edge
// (within Epsilon) are treated as outside: they are rejected before the
// ray test runs.
func PointInPolygon(p Point2D, vertices []Point2D) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := vertices[i], vertices[(i+1)%n]
		ab, ap := b.Sub(a), p.Sub(a)
		t := ap.Dot(ab)
		if math.Abs(ab.X*ap.Y-ab.Y*ap.X) < Epsilon && t >= 0 && t <= ab.Dot(ab) {
			return false
		}
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Inflate offsets every vertex of a polygon outward along the bisector of
// its two adjacent edge normals, by padding/cos(theta) where theta is the
// half-angle between them, clamped to 3*padding to bound the offset at
// sharp corners (spec §4.2).
func Inflate(vertices []Point2D, padding float64) []Point2D {
	n := len(vertices)
	if n < 3 {
		return append([]Point2D(nil), vertices...)
	}

	ccw := signedArea(vertices) > 0

	out := make([]Point2D, n)
	for i := 0; i < n; i++ {
		prev := vertices[(i-1+n)%n]
		cur := vertices[i]
		next := vertices[(i+1)%n]

		e1 := cur.Sub(prev).Normalize()
		e2 := next.Sub(cur).Normalize()

		n1 := e1.Perp()
		n2 := e2.Perp()
		if ccw {
			n1 = n1.Scale(-1)
			n2 = n2.Scale(-1)
		}

		bisector := n1.Add(n2)
		if bisector.Length() < Epsilon {
			// Adjacent edges point directly opposite; fall back to a
			// single edge normal rather than dividing by ~zero below.
			bisector = n1
		}
		bisector = bisector.Normalize()

		cosTheta := bisector.Dot(n1)
		offset := padding
		if math.Abs(cosTheta) > Epsilon {
			offset = padding / math.Abs(cosTheta)
		}
		maxOffset := 3 * padding
		if offset > maxOffset {
			offset = maxOffset
		}

		out[i] = cur.Add(bisector.Scale(offset))
	}
	return out
}

func signedArea(vertices []Point2D) float64 {
	n := len(vertices)
	area := 0.0
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}
