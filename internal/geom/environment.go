package geom

// MovementResult is the outcome of resolving an agent's attempted move
// against the environment.
type MovementResult struct {
	Position Point2D
	Blocked  bool
}

// Environment holds the static building polygons agents navigate around.
type Environment struct {
	buildings []*Building
}

// NewEnvironment constructs an Environment from a set of buildings.
func NewEnvironment(buildings []*Building) *Environment {
	return &Environment{buildings: buildings}
}

// Buildings returns the environment's buildings.
func (e *Environment) Buildings() []*Building {
	return e.buildings
}

// GetBuildingsInPath AABB-culls buildings against the segment A-B's
// bounding box, returning only those whose bounds could plausibly be
// crossed.
func (e *Environment) GetBuildingsInPath(a, b Point2D) []*Building {
	segBox := SegmentAABB(a, b)
	var out []*Building
	for _, bld := range e.buildings {
		if segBox.Intersects(bld.Bounds) {
			out = append(out, bld)
		}
	}
	return out
}

// IsInsideBuilding returns the building containing p, or nil if p is
// outside every building.
func (e *Environment) IsInsideBuilding(p Point2D) *Building {
	for _, bld := range e.buildings {
		if !bld.Bounds.Contains(p) {
			continue
		}
		if PointInPolygon(p, bld.Vertices) {
			return bld
		}
	}
	return nil
}

// resolveEpsilon nudges a resolved position past the hit edge so the next
// iteration's segment doesn't immediately re-intersect it.
const resolveEpsilon = 1e-3

// slideEpsilon is the minimum remaining slide magnitude worth another
// iteration of ResolveMovement.
const slideEpsilon = 1e-6

// ResolveMovement walks the segment from->to, sliding along any building
// wall it strikes, for up to maxIter iterations (spec §4.3):
//
//  1. find the first intersection against candidate buildings;
//  2. if none, return `to` unblocked;
//  3. otherwise step to hit+eps*normal, project the residual (to-hit)
//     onto the wall, and recurse with the projected target.
//
// Terminates early once the slide magnitude drops below slideEpsilon.
func (e *Environment) ResolveMovement(from, to Point2D, maxIter int) MovementResult {
	if maxIter <= 0 {
		maxIter = 3
	}

	current := from
	target := to
	blocked := false

	for iter := 0; iter < maxIter; iter++ {
		candidates := e.GetBuildingsInPath(current, target)
		if len(candidates) == 0 {
			return MovementResult{Position: target, Blocked: blocked}
		}

		hit, ok := FirstCollision(current, target, candidates)
		if !ok {
			return MovementResult{Position: target, Blocked: blocked}
		}

		blocked = true
		steppedPosition := hit.Point.Add(hit.Normal.Scale(resolveEpsilon))

		residual := target.Sub(hit.Point)
		slid := ProjectOntoSurface(residual, hit.Normal)
		if slid.Length() < slideEpsilon {
			return MovementResult{Position: steppedPosition, Blocked: true}
		}

		current = steppedPosition
		target = steppedPosition.Add(slid)
	}

	return MovementResult{Position: current, Blocked: true}
}
