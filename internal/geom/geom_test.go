package geom

import (
	"math"
	"testing"
)

func square(cx, cy, half float64) []Point2D {
	return []Point2D{
		{cx - half, cy - half},
		{cx + half, cy - half},
		{cx + half, cy + half},
		{cx - half, cy + half},
	}
}

func TestPointInPolygon(t *testing.T) {
	poly := square(0, 0, 5)

	if !PointInPolygon(Point2D{0, 0}, poly) {
		t.Errorf("expected center to be inside")
	}
	if PointInPolygon(Point2D{10, 10}, poly) {
		t.Errorf("expected far point to be outside")
	}
	// Edge hits are outside per spec.
	if PointInPolygon(Point2D{5, 0}, poly) {
		t.Errorf("expected edge point to be treated as outside")
	}
}

func TestIntersectSegmentsParallel(t *testing.T) {
	_, ok := IntersectSegments(Point2D{0, 0}, Point2D{1, 0}, Point2D{0, 1}, Point2D{1, 1})
	if ok {
		t.Errorf("expected parallel segments to report no intersection")
	}
}

func TestIntersectSegmentsCrossing(t *testing.T) {
	hit, ok := IntersectSegments(Point2D{-1, 0}, Point2D{1, 0}, Point2D{0, -1}, Point2D{0, 1})
	if !ok {
		t.Fatalf("expected crossing segments to intersect")
	}
	if math.Abs(hit.Point.X) > 1e-9 || math.Abs(hit.Point.Y) > 1e-9 {
		t.Errorf("expected intersection at origin, got %+v", hit.Point)
	}
}

func TestLineThroughPolygonNoBuildings(t *testing.T) {
	_, _, _, ok := LineThroughPolygon(Point2D{-10, 0}, Point2D{10, 0}, nil)
	if ok {
		t.Errorf("expected no crossing against an empty polygon")
	}
}

func TestLineThroughPolygonCrossing(t *testing.T) {
	poly := square(0, 0, 5)
	entry, exit, dist, ok := LineThroughPolygon(Point2D{-10, 0}, Point2D{10, 0}, poly)
	if !ok {
		t.Fatalf("expected a crossing")
	}
	if math.Abs(entry.X-(-5)) > 1e-9 {
		t.Errorf("expected entry at x=-5, got %+v", entry)
	}
	if math.Abs(exit.X-5) > 1e-9 {
		t.Errorf("expected exit at x=5, got %+v", exit)
	}
	if math.Abs(dist-10) > 1e-9 {
		t.Errorf("expected distance 10, got %v", dist)
	}
}

func TestLineThroughPolygonBothEndpointsInside(t *testing.T) {
	poly := square(0, 0, 5)
	a, b := Point2D{-1, 0}, Point2D{1, 0}
	entry, exit, dist, ok := LineThroughPolygon(a, b, poly)
	if !ok {
		t.Fatalf("expected both-inside case to report ok")
	}
	if entry != a || exit != b {
		t.Errorf("expected entry=A exit=B for both-inside segment, got %+v %+v", entry, exit)
	}
	if math.Abs(dist-2) > 1e-9 {
		t.Errorf("expected distance 2, got %v", dist)
	}
}

func TestFirstCollisionNormalPointsOutward(t *testing.T) {
	bld := NewBuilding("b1", "concrete", square(0, 0, 5), nil)
	hit, ok := FirstCollision(Point2D{-10, 0}, Point2D{10, 0}, []*Building{&bld})
	if !ok {
		t.Fatalf("expected a collision")
	}
	if hit.Normal.X >= 0 {
		t.Errorf("expected outward normal pointing in -X, got %+v", hit.Normal)
	}
}

func TestFirstCollisionIgnoresNearZeroT(t *testing.T) {
	bld := NewBuilding("b1", "concrete", square(0, 0, 5), nil)
	// Starting exactly on the boundary: the departure edge should not be
	// re-hit immediately.
	_, ok := FirstCollision(Point2D{-5, 0}, Point2D{-4, 0}, []*Building{&bld})
	if ok {
		t.Errorf("expected the departure edge to be ignored (t < epsilon)")
	}
}

func TestProjectOntoSurface(t *testing.T) {
	v := Point2D{1, 1}
	n := Point2D{0, 1}
	proj := ProjectOntoSurface(v, n)
	if math.Abs(proj.X-1) > 1e-9 || math.Abs(proj.Y) > 1e-9 {
		t.Errorf("expected (1,0), got %+v", proj)
	}
}

func TestInflateConvexSquareGrowsOutward(t *testing.T) {
	poly := square(0, 0, 5)
	inflated := Inflate(poly, 1)
	for i, v := range inflated {
		orig := poly[i]
		if v.Distance(Point2D{}) <= orig.Distance(Point2D{}) {
			t.Errorf("vertex %d did not move outward: orig=%+v inflated=%+v", i, orig, v)
		}
	}
}

func TestInflateClampsSharpCorners(t *testing.T) {
	// A very sharp spike: the offset should be clamped to 3*padding.
	poly := []Point2D{
		{0, 0},
		{10, 0.01},
		{0, 0.02},
	}
	padding := 1.0
	inflated := Inflate(poly, padding)
	d := inflated[1].Distance(poly[1])
	if d > 3*padding+1e-6 {
		t.Errorf("expected offset clamped to %v, got %v", 3*padding, d)
	}
}

func TestResolveMovementUnobstructedReturnsTarget(t *testing.T) {
	env := NewEnvironment(nil)
	res := env.ResolveMovement(Point2D{0, 0}, Point2D{10, 10}, 3)
	if res.Blocked {
		t.Errorf("expected unblocked movement with no buildings")
	}
	if res.Position != (Point2D{10, 10}) {
		t.Errorf("expected to reach target, got %+v", res.Position)
	}
}

func TestResolveMovementNeverEndsInsideBuilding(t *testing.T) {
	bld := NewBuilding("b1", "concrete", square(0, 0, 5), nil)
	env := NewEnvironment([]*Building{&bld})

	res := env.ResolveMovement(Point2D{-10, 0}, Point2D{10, 0}, 3)
	if PointInPolygon(res.Position, bld.Vertices) {
		t.Errorf("resolved position %+v lies inside the building", res.Position)
	}
	if !res.Blocked {
		t.Errorf("expected movement through a wall to be blocked")
	}
}

func TestProjectLatLonOriginIsZero(t *testing.T) {
	p := ProjectLatLon(40.0, -73.0, 40.0, -73.0)
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("expected origin to project to (0,0), got %+v", p)
	}
}
