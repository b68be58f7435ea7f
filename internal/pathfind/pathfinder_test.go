package pathfind

import (
	"math"
	"testing"

	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
)

func wallBuilding() *geom.Building {
	poly := []geom.Point2D{
		{X: -1, Y: -20},
		{X: 1, Y: -20},
		{X: 1, Y: 20},
		{X: -1, Y: 20},
	}
	b := geom.NewBuilding("wall", "concrete", poly, nil)
	return &b
}

func TestFindPathNoBuildingsIsDirect(t *testing.T) {
	env := geom.NewEnvironment(nil)
	pf := New(env)

	res := pf.FindPath(geom.Point2D{X: 0, Y: 0}, geom.Point2D{X: 50, Y: 0})
	if !res.Found {
		t.Fatalf("expected a path")
	}
	if len(res.Waypoints) != 2 {
		t.Fatalf("expected direct 2-waypoint path, got %d", len(res.Waypoints))
	}
	if math.Abs(res.Distance-50) > 1e-9 {
		t.Errorf("expected distance 50, got %v", res.Distance)
	}
}

func TestFindPathDirectVisibleIsTwoWaypoints(t *testing.T) {
	bld := wallBuilding()
	env := geom.NewEnvironment([]*geom.Building{bld})
	pf := New(env)

	// Well clear of the wall (which spans x in [-1,1]).
	res := pf.FindPath(geom.Point2D{X: 10, Y: 0}, geom.Point2D{X: 10, Y: 5})
	if !res.Found {
		t.Fatalf("expected a path")
	}
	if len(res.Waypoints) != 2 {
		t.Errorf("expected 2 waypoints for directly visible goal, got %d", len(res.Waypoints))
	}
}

func TestFindPathAroundWallAvoidsBuilding(t *testing.T) {
	bld := wallBuilding()
	env := geom.NewEnvironment([]*geom.Building{bld})
	pf := New(env)

	start := geom.Point2D{X: -10, Y: 0}
	goal := geom.Point2D{X: 10, Y: 0}
	res := pf.FindPath(start, goal)

	if !res.Found {
		t.Fatalf("expected a path around the wall")
	}
	for _, wp := range res.Waypoints {
		if geom.PointInPolygon(wp, bld.Vertices) {
			t.Errorf("waypoint %+v lies inside the building", wp)
		}
	}

	direct := start.Distance(goal)
	if res.Distance <= direct {
		t.Errorf("expected routed distance > direct distance: routed=%v direct=%v", res.Distance, direct)
	}
}

func TestFindPathFailureReturnsDirectFallback(t *testing.T) {
	// Build a closed box around the goal so it is unreachable from
	// outside — the pathfinder should fail gracefully.
	box := []geom.Point2D{
		{X: 18, Y: -2}, {X: 22, Y: -2}, {X: 22, Y: 2}, {X: 18, Y: 2},
	}
	b := geom.NewBuilding("box", "concrete", box, nil)
	env := geom.NewEnvironment([]*geom.Building{&b})
	pf := New(env)

	start := geom.Point2D{X: 0, Y: 0}
	goal := geom.Point2D{X: 20, Y: 0} // inside the sealed box

	res := pf.FindPath(start, goal)
	if res.Found {
		t.Fatalf("expected FindPath to fail for an unreachable goal")
	}
	if len(res.Waypoints) != 2 || res.Waypoints[0] != start || res.Waypoints[1] != goal {
		t.Errorf("expected direct-fallback waypoints, got %+v", res.Waypoints)
	}
}
