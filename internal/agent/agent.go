// Package agent implements the pedestrian locomotion model that drives
// each simulated person's position: a small state machine over five
// modes, path following through the visibility graph, and an escalating
// stuck-recovery loop when the environment won't let progress happen
// (spec §4.9).
package agent

import (
	"math"
	"math/rand"

	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
	"github.com/callebtc/bitchat-simulator-sub000/internal/mesh"
	"github.com/callebtc/bitchat-simulator-sub000/internal/pathfind"
)

// Mode is a person's current locomotion behavior.
type Mode int

const (
	ModeStill Mode = iota
	ModeRandomWalk
	ModeTarget
	ModeBusy
	ModeManual
)

// String renders a mode name for logs and the TUI.
func (m Mode) String() string {
	switch m {
	case ModeStill:
		return "STILL"
	case ModeRandomWalk:
		return "RANDOM_WALK"
	case ModeTarget:
		return "TARGET"
	case ModeBusy:
		return "BUSY"
	case ModeManual:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// Locomotion tuning constants (spec §4.9).
const (
	MinSpeedMPS = 1.0
	MaxSpeedMPS = 3.0

	// WanderAngleDriftMaxRad bounds the per-tick drift applied to a
	// RANDOM_WALK agent's wander angle: U(-0.25, +0.25) rad/step.
	WanderAngleDriftMaxRad = 0.25
	// WanderSpeedFraction is the fraction of MaxSpeed a RANDOM_WALK
	// agent's desired velocity is scaled to.
	WanderSpeedFraction = 0.5
	// WanderVelocityLerp is how far current velocity is nudged toward
	// desired velocity each tick.
	WanderVelocityLerp = 0.1
	// RandomWalkSoftBoundMeters is the |x|,|y| extent past which a
	// RANDOM_WALK agent's velocity is softly bounced back inward.
	RandomWalkSoftBoundMeters = 500.0
	// WanderBounceTurnBaseRad is the minimum turn applied to the wander
	// angle on a collision; the actual turn adds U(0, pi) on top.
	WanderBounceTurnBaseRad = math.Pi / 2

	// WaypointThresholdMeters is how close to an intermediate waypoint
	// counts as having reached it.
	WaypointThresholdMeters = 2.0
	// TargetArriveRadiusMeters is how close to the final target counts
	// as arrival.
	TargetArriveRadiusMeters = 1.0

	// BusyMinProgressMeters and BusyStuckSeconds bound how little
	// progress a BUSY agent may make before abandoning its current
	// in-zone target and picking a new one.
	BusyMinProgressMeters = 1.0
	BusyStuckSeconds      = 1.5
	// BusyTargetAttempts caps how many candidate points BUSY tries
	// before giving up on picking a new target this tick.
	BusyTargetAttempts = 50

	// BusyMinSeconds and BusyMaxSeconds give a range for a caller-driven
	// busy session. SetBusy takes its duration from the caller and does
	// not clamp it to this range.
	BusyMinSeconds = 5.0
	BusyMaxSeconds = 30.0

	// Stuck recovery (TARGET only): below StuckSpeedThresholdLow for
	// StuckLowDurationSeconds enters recovery; above
	// StuckSpeedThresholdHigh for StuckHighDurationSeconds exits it
	// successfully.
	StuckSpeedThresholdLow   = 0.5
	StuckSpeedThresholdHigh  = 1.0
	StuckLowDurationSeconds  = 0.5
	StuckHighDurationSeconds = 1.0

	// StuckRecoveryBaseSeconds is the first escalation delay; each
	// successive stall doubles it up to StuckRecoveryCapSeconds.
	StuckRecoveryBaseSeconds = 1.0
	StuckRecoveryCapSeconds  = 10.0
)

// Agent is one simulated person: a position, a locomotion mode, and
// optionally a mesh radio device it carries.
type Agent struct {
	ID       string
	Nickname string
	Position geom.Point2D
	Velocity geom.Point2D
	Mode     Mode
	MaxSpeed float64

	// Bounds constrains where BUSY may pick outdoor-zone targets.
	Bounds geom.AABB

	// Device is the mesh radio this agent carries, if any.
	Device *mesh.Device

	// OnModeChange, if set, is called whenever the agent transitions
	// modes (e.g. for the engine to log or emit an event).
	OnModeChange func(old, new Mode)

	target      *geom.Point2D
	path        []geom.Point2D
	waypointIdx int

	wanderAngle float64

	busyUntil           float64
	busyBuilding        *geom.Building
	busyLastPosition    geom.Point2D
	busyProgressSeconds float64

	recovering       bool
	recoveryTarget   *geom.Point2D
	recoveryElapsed  float64
	recoveryDuration float64
	lowSpeedSeconds  float64
	highSpeedSeconds float64
	lastPosition     geom.Point2D

	rng *rand.Rand
}

// New creates an agent at pos in RANDOM_WALK mode with a speed drawn
// uniformly from [MinSpeedMPS, MaxSpeedMPS]. rng must be the engine's
// shared, seeded source (spec §5).
func New(id, nickname string, pos geom.Point2D, bounds geom.AABB, rng *rand.Rand) *Agent {
	return &Agent{
		ID:               id,
		Nickname:         nickname,
		Position:         pos,
		Bounds:           bounds,
		Mode:             ModeRandomWalk,
		MaxSpeed:         MinSpeedMPS + rng.Float64()*(MaxSpeedMPS-MinSpeedMPS),
		wanderAngle:      rng.Float64() * 2 * math.Pi,
		recoveryDuration: StuckRecoveryBaseSeconds,
		lastPosition:     pos,
		rng:              rng,
	}
}

func (a *Agent) setMode(m Mode) {
	if m == a.Mode {
		return
	}
	old := a.Mode
	a.Mode = m
	if a.OnModeChange != nil {
		a.OnModeChange(old, m)
	}
}

// SetTarget sends the agent toward dest along the environment's
// visibility graph and switches it to TARGET mode (spec §4.9).
func (a *Agent) SetTarget(dest geom.Point2D, pf *pathfind.PathFinder) {
	a.target = &dest
	a.path = pf.FindPath(a.Position, dest).Waypoints
	a.waypointIdx = 0
	a.lowSpeedSeconds = 0
	a.setMode(ModeTarget)
}

// SetBusy enters BUSY mode for durationSeconds of sim time: it records
// whether the agent is currently inside a building (its busy zone for
// the duration) and switches to BUSY, which repeatedly picks and
// navigates to random in-zone targets until the duration elapses (spec
// §4.9).
func (a *Agent) SetBusy(durationSeconds, now float64, env *geom.Environment) {
	a.busyUntil = now + durationSeconds
	a.busyBuilding = env.IsInsideBuilding(a.Position)
	a.busyLastPosition = a.Position
	a.busyProgressSeconds = 0
	a.target = nil
	a.path = nil
	a.waypointIdx = 0
	a.setMode(ModeBusy)
}

// SetManual hands velocity control to the caller; the agent still moves
// and collides with the environment each tick, but never picks its own
// destination.
func (a *Agent) SetManual(velocity geom.Point2D) {
	a.Velocity = velocity
	a.setMode(ModeManual)
}

// StopManual releases manual control back to RANDOM_WALK.
func (a *Agent) StopManual() {
	a.Velocity = geom.Point2D{}
	a.setMode(ModeRandomWalk)
}

// Tick advances locomotion by dt sim seconds: it picks a velocity
// according to the current mode, attempts the move against env, and runs
// stuck-recovery bookkeeping (spec §4.9, §4.3).
func (a *Agent) Tick(dt, now float64, env *geom.Environment, pf *pathfind.PathFinder) {
	switch a.Mode {
	case ModeStill:
		a.Velocity = geom.Point2D{}
	case ModeBusy:
		if now >= a.busyUntil {
			a.target = nil
			a.path = nil
			a.waypointIdx = 0
			a.setMode(ModeRandomWalk)
		} else {
			a.tickBusy(dt, env, pf)
		}
	case ModeManual:
		// Velocity already set by the caller; nothing to pick.
	case ModeRandomWalk:
		a.tickRandomWalk()
	case ModeTarget:
		a.tickTarget()
	}

	blocked := a.move(dt, env)
	if blocked && a.Mode == ModeRandomWalk {
		a.wanderAngle += WanderBounceTurnBaseRad + a.rng.Float64()*math.Pi
	}

	a.updateStuckRecovery(dt, pf)
}

// tickRandomWalk drifts the wander angle, lerps velocity toward the
// resulting desired direction at half max speed, and softly bounces off
// the world's soft bound (spec §4.9).
func (a *Agent) tickRandomWalk() {
	a.wanderAngle += (a.rng.Float64()*2 - 1) * WanderAngleDriftMaxRad
	desired := geom.Point2D{X: math.Cos(a.wanderAngle), Y: math.Sin(a.wanderAngle)}.
		Scale(a.MaxSpeed * WanderSpeedFraction)
	a.Velocity = geom.Lerp(a.Velocity, desired, WanderVelocityLerp)
	a.applySoftBounce()
}

// applySoftBounce reflects any velocity component still pushing the
// agent further past RandomWalkSoftBoundMeters back toward the center,
// re-deriving the wander angle from the reflected velocity.
func (a *Agent) applySoftBounce() {
	bounced := false
	if a.Position.X > RandomWalkSoftBoundMeters && a.Velocity.X > 0 {
		a.Velocity.X = -a.Velocity.X
		bounced = true
	} else if a.Position.X < -RandomWalkSoftBoundMeters && a.Velocity.X < 0 {
		a.Velocity.X = -a.Velocity.X
		bounced = true
	}
	if a.Position.Y > RandomWalkSoftBoundMeters && a.Velocity.Y > 0 {
		a.Velocity.Y = -a.Velocity.Y
		bounced = true
	} else if a.Position.Y < -RandomWalkSoftBoundMeters && a.Velocity.Y < 0 {
		a.Velocity.Y = -a.Velocity.Y
		bounced = true
	}
	if bounced {
		a.wanderAngle = math.Atan2(a.Velocity.Y, a.Velocity.X)
	}
}

// tickTarget steers toward the final target via stepToward and settles
// to STILL once it arrives (spec §4.9).
func (a *Agent) tickTarget() {
	if a.stepToward() {
		a.Velocity = geom.Point2D{}
		a.target = nil
		a.path = nil
		a.waypointIdx = 0
		a.setMode(ModeStill)
	}
}

// tickBusy maintains the BUSY loop: pick an in-zone target if none is
// set, step toward it, and either advance to the next target on arrival
// or abandon and re-pick if progress has stalled (spec §4.9).
func (a *Agent) tickBusy(dt float64, env *geom.Environment, pf *pathfind.PathFinder) {
	if a.target == nil {
		a.pickBusyTarget(env)
		if a.target == nil {
			a.Velocity = geom.Point2D{}
			return
		}
		a.path = pf.FindPath(a.Position, *a.target).Waypoints
		a.waypointIdx = 0
		a.busyLastPosition = a.Position
		a.busyProgressSeconds = 0
	}

	if a.stepToward() {
		a.target = nil
		a.path = nil
		a.waypointIdx = 0
		return
	}

	progressed := a.Position.Distance(a.busyLastPosition)
	if progressed >= BusyMinProgressMeters {
		a.busyLastPosition = a.Position
		a.busyProgressSeconds = 0
		return
	}

	a.busyProgressSeconds += dt
	if a.busyProgressSeconds >= BusyStuckSeconds {
		a.target = nil
		a.path = nil
		a.waypointIdx = 0
		a.busyProgressSeconds = 0
	}
}

// pickBusyTarget samples up to BusyTargetAttempts candidate points within
// the agent's busy zone (the building it entered BUSY inside, or the
// outdoor bounds otherwise), accepting the first that actually falls
// within that zone. Leaves a.target nil if none qualify.
func (a *Agent) pickBusyTarget(env *geom.Environment) {
	for attempt := 0; attempt < BusyTargetAttempts; attempt++ {
		var candidate geom.Point2D
		if a.busyBuilding != nil {
			candidate = randomPointInBounds(a.rng, a.busyBuilding.Bounds)
			if !geom.PointInPolygon(candidate, a.busyBuilding.Vertices) {
				continue
			}
		} else {
			candidate = randomPointInBounds(a.rng, a.Bounds)
			if env.IsInsideBuilding(candidate) != nil {
				continue
			}
		}
		a.target = &candidate
		return
	}
	a.target = nil
}

func randomPointInBounds(rng *rand.Rand, b geom.AABB) geom.Point2D {
	return geom.Point2D{
		X: b.MinX + rng.Float64()*(b.MaxX-b.MinX),
		Y: b.MinY + rng.Float64()*(b.MaxY-b.MinY),
	}
}

// stepToward sets velocity toward the current nav target (the next
// waypoint on a.path if one remains, else a.target directly), advancing
// waypointIdx as waypoints are reached, with arrival slowdown scaled by
// distance to the final target. Reports whether the final target has
// been reached (spec §4.9's TARGET description, shared by BUSY).
func (a *Agent) stepToward() (arrived bool) {
	if a.target == nil {
		return true
	}

	distFinal := a.Position.Distance(*a.target)
	if distFinal < TargetArriveRadiusMeters {
		a.Velocity = geom.Point2D{}
		return true
	}

	navTarget := *a.target
	if a.waypointIdx < len(a.path) {
		navTarget = a.path[a.waypointIdx]
	}
	toNav := navTarget.Sub(a.Position)
	distNav := toNav.Length()

	if a.waypointIdx < len(a.path) && distNav < WaypointThresholdMeters {
		a.waypointIdx++
		if a.waypointIdx < len(a.path) {
			navTarget = a.path[a.waypointIdx]
		} else {
			navTarget = *a.target
		}
		toNav = navTarget.Sub(a.Position)
		distNav = toNav.Length()
	}

	if distNav < geom.Epsilon {
		a.Velocity = geom.Point2D{}
		return false
	}

	speed := math.Min(a.MaxSpeed, distFinal*2)
	a.Velocity = toNav.Scale(speed / distNav)
	return false
}

// move integrates position by velocity*dt against env, sliding along any
// building it strikes, and reports whether the move was blocked.
func (a *Agent) move(dt float64, env *geom.Environment) bool {
	if a.Velocity == (geom.Point2D{}) {
		return false
	}
	dest := a.Position.Add(a.Velocity.Scale(dt))
	result := env.ResolveMovement(a.Position, dest, 3)
	a.Position = result.Position
	return result.Blocked
}

// updateStuckRecovery implements TARGET-only stuck recovery (spec
// §4.9): sustained low speed enters a RANDOM_WALK recovery excursion;
// sustained high speed exits it successfully (re-pathing to the saved
// target, resetting the escalation), or a timeout exits it as a failure
// (re-pathing anyway, keeping the escalated duration).
func (a *Agent) updateStuckRecovery(dt float64, pf *pathfind.PathFinder) {
	if dt <= 0 {
		return
	}

	// Realized speed (actual displacement this tick / dt), not the
	// commanded heading: a blocked agent can command a large velocity
	// while the environment lets it travel almost nowhere, and that is
	// exactly the condition stuck recovery exists to detect.
	speed := a.Position.Distance(a.lastPosition) / dt
	a.lastPosition = a.Position

	if a.recovering {
		a.recoveryElapsed += dt
		if speed > StuckSpeedThresholdHigh {
			a.highSpeedSeconds += dt
		} else {
			a.highSpeedSeconds = 0
		}

		switch {
		case a.highSpeedSeconds >= StuckHighDurationSeconds:
			a.recoveryDuration = StuckRecoveryBaseSeconds
			a.exitRecovery(pf)
		case a.recoveryElapsed >= a.recoveryDuration:
			a.recoveryDuration = math.Min(a.recoveryDuration*2, StuckRecoveryCapSeconds)
			a.exitRecovery(pf)
		}
		return
	}

	if a.Mode != ModeTarget {
		a.lowSpeedSeconds = 0
		return
	}

	if speed >= StuckSpeedThresholdLow {
		a.lowSpeedSeconds = 0
		return
	}

	a.lowSpeedSeconds += dt
	if a.lowSpeedSeconds < StuckLowDurationSeconds {
		return
	}

	a.lowSpeedSeconds = 0
	a.recoveryTarget = a.target
	a.recovering = true
	a.recoveryElapsed = 0
	a.highSpeedSeconds = 0
	a.target = nil
	a.path = nil
	a.waypointIdx = 0
	a.setMode(ModeRandomWalk)
}

func (a *Agent) exitRecovery(pf *pathfind.PathFinder) {
	a.recovering = false
	a.highSpeedSeconds = 0
	a.recoveryElapsed = 0
	target := a.recoveryTarget
	a.recoveryTarget = nil
	if target != nil {
		a.SetTarget(*target, pf)
	}
}
