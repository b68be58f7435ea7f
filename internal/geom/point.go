// Package geom implements the 2D computational geometry primitives the
// rest of the simulator builds on: point-in-polygon, segment intersection,
// polygon inflation, collision resolution, and lat/lon projection. It has
// no dependency on anything else in the module.
package geom

import "math"

// Epsilon is the general-purpose tolerance used throughout this package
// for "effectively zero" comparisons (parallel segments, re-hitting the
// edge just departed, degenerate polygons).
const Epsilon = 1e-10

// Point2D is a position or vector in the local meters coordinate frame.
type Point2D struct {
	X, Y float64
}

// Add returns p+q.
func (p Point2D) Add(q Point2D) Point2D { return Point2D{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point2D) Scale(s float64) Point2D { return Point2D{p.X * s, p.Y * s} }

// Dot returns the dot product p.q.
func (p Point2D) Dot(q Point2D) float64 { return p.X*q.X + p.Y*q.Y }

// Length returns the Euclidean norm of p.
func (p Point2D) Length() float64 { return math.Sqrt(p.Dot(p)) }

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 { return p.Sub(q).Length() }

// Normalize returns a unit vector in the direction of p, or the zero
// vector if p is (near) zero length.
func (p Point2D) Normalize() Point2D {
	l := p.Length()
	if l < Epsilon {
		return Point2D{}
	}
	return p.Scale(1 / l)
}

// Perp returns p rotated 90 degrees counter-clockwise.
func (p Point2D) Perp() Point2D { return Point2D{-p.Y, p.X} }

// Lerp linearly interpolates between p and q by t in [0,1].
func Lerp(p, q Point2D, t float64) Point2D {
	return p.Add(q.Sub(p).Scale(t))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether two AABBs overlap (including touching edges).
func (a AABB) Intersects(b AABB) bool {
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX && a.MinY <= b.MaxY && a.MaxY >= b.MinY
}

// Contains reports whether p lies within the box bounds, inclusive.
func (a AABB) Contains(p Point2D) bool {
	return p.X >= a.MinX && p.X <= a.MaxX && p.Y >= a.MinY && p.Y <= a.MaxY
}

// ComputeAABB returns the bounding box of a set of vertices. The zero
// AABB is returned for an empty set.
func ComputeAABB(vertices []Point2D) AABB {
	if len(vertices) == 0 {
		return AABB{}
	}
	box := AABB{MinX: vertices[0].X, MaxX: vertices[0].X, MinY: vertices[0].Y, MaxY: vertices[0].Y}
	for _, v := range vertices[1:] {
		box.MinX = math.Min(box.MinX, v.X)
		box.MaxX = math.Max(box.MaxX, v.X)
		box.MinY = math.Min(box.MinY, v.Y)
		box.MaxY = math.Max(box.MaxY, v.Y)
	}
	return box
}

// SegmentAABB returns the bounding box of the segment a-b.
func SegmentAABB(a, b Point2D) AABB {
	return ComputeAABB([]Point2D{a, b})
}
