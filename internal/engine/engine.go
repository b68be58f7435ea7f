// Package engine drives the discrete-time simulation loop: it owns the
// agents, their mesh devices and links, the environment, and steps all
// of them forward in the fixed per-tick order the rest of the system
// depends on for determinism (spec §4.10, §5).
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/callebtc/bitchat-simulator-sub000/internal/agent"
	"github.com/callebtc/bitchat-simulator-sub000/internal/events"
	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
	"github.com/callebtc/bitchat-simulator-sub000/internal/logmgr"
	"github.com/callebtc/bitchat-simulator-sub000/internal/mesh"
	"github.com/callebtc/bitchat-simulator-sub000/internal/pathfind"
	"github.com/callebtc/bitchat-simulator-sub000/internal/spatial"
	"github.com/callebtc/bitchat-simulator-sub000/pkg/wire"
)

// Connectivity hysteresis thresholds (spec §4.5): a link forms at
// ConnectRangeMeters and only breaks once the endpoints drift out past
// the wider DisconnectRangeMeters, so agents hovering near the boundary
// don't thrash.
const (
	ConnectRangeMeters    = 100.0
	DisconnectRangeMeters = 110.0
)

// Config parameterizes a new Engine.
type Config struct {
	Bounds   geom.AABB
	Seed     int64
	CellSize float64 // spatial grid cell size; 0 uses spatial.DefaultCellSize
}

// Engine owns the full simulation state and advances it tick by tick.
type Engine struct {
	Env        *geom.Environment
	PathFinder *pathfind.PathFinder
	Bus        *events.Bus
	Log        *logmgr.Manager
	Rng        *rand.Rand

	Agents []*agent.Agent
	Links  []*mesh.Link

	Now       float64
	TickCount uint64

	bounds geom.AABB
	grid   *spatial.Grid

	nextAgentID int

	mu sync.RWMutex
}

// Stats is a point-in-time snapshot of the engine's size, safe to read
// concurrently with a running simulation (see Snapshot).
type Stats struct {
	Tick          uint64
	Now           float64
	AgentCount    int
	LinkCount     int
	ConfirmedEdge int
}

// Snapshot returns a consistent summary of the engine's current state.
// Unlike reading e.Agents/e.Links directly, it is safe to call from a
// goroutine other than the one driving Step/Run.
func (e *Engine) Snapshot() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[mesh.Edge]struct{})
	for _, a := range e.Agents {
		if a.Device == nil || a.Device.App == nil {
			continue
		}
		for _, edge := range a.Device.App.Graph.GetConfirmedEdges() {
			seen[edge] = struct{}{}
		}
	}

	return Stats{
		Tick:          e.TickCount,
		Now:           e.Now,
		AgentCount:    len(e.Agents),
		LinkCount:     len(e.Links),
		ConfirmedEdge: len(seen),
	}
}

// New creates an engine over env, seeded deterministically.
func New(env *geom.Environment, cfg Config) *Engine {
	if env == nil {
		env = geom.NewEnvironment(nil)
	}
	return &Engine{
		Env:        env,
		PathFinder: pathfind.New(env),
		Bus:        events.New(),
		Log:        logmgr.New(),
		Rng:        rand.New(rand.NewSource(cfg.Seed)),
		bounds:     cfg.Bounds,
		grid:       spatial.New(cfg.CellSize),
	}
}

// AddAgent creates a new agent with a mesh device at pos, wires its
// protocol stack to this engine's event bus and log, and returns it.
func (e *Engine) AddAgent(nickname string, pos geom.Point2D) *agent.Agent {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextAgentID++
	a := agent.New(fmt.Sprintf("p%d", e.nextAgentID), nickname, pos, e.bounds, e.Rng)

	peerID := peerIDFromAgentIndex(e.nextAgentID)
	dev := mesh.NewDevice(peerID, nickname, e.Rng)
	dev.SetPosition(pos)
	app := mesh.NewApp(dev)

	entityID := peerID.Hex()
	app.OnEvent = func(name string, detail map[string]any) {
		e.Bus.Publish(name, detail)
		e.Log.Log(e.Now, logmgr.LevelDebug, logmgr.CategoryPacket, entityID, name, detail)
	}
	a.OnModeChange = func(from, to agent.Mode) {
		e.Log.Log(e.Now, logmgr.LevelInfo, logmgr.CategoryPerson, a.ID,
			fmt.Sprintf("mode %s -> %s", from, to), nil)
	}

	a.Device = dev
	e.Agents = append(e.Agents, a)
	return a
}

// peerIDFromAgentIndex derives a deterministic, collision-free peer ID
// from an agent's 1-based creation index.
func peerIDFromAgentIndex(idx int) wire.PeerID {
	var id wire.PeerID
	id[0] = byte(idx >> 24)
	id[1] = byte(idx >> 16)
	id[2] = byte(idx >> 8)
	id[3] = byte(idx)
	return id
}

// Step advances the simulation by dt sim seconds, in the fixed order
// the simulation's determinism depends on (spec §4.10):
//
//  1. each agent's locomotion, then its device's tick (scan + protocol)
//  2. recompute each link's RSSI and drain its delivery queue
//  3. tear down any link whose smoothed RSSI crossed the disconnect
//     threshold
//  4. geometric connectivity: form new links within ConnectRangeMeters,
//     break existing ones once endpoints exceed DisconnectRangeMeters
//  5. emit a tick event
func (e *Engine) Step(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickAgents(dt)
	e.updateGrid()
	e.updateLinkRSSIAndDeliver()
	e.updateConnectivity()
	e.pruneInactiveConnections()

	e.TickCount++
	e.Now += dt

	e.Bus.Publish("tick", map[string]any{
		"tick": e.TickCount,
		"now":  e.Now,
	})
}

func (e *Engine) tickAgents(dt float64) {
	for _, a := range e.Agents {
		a.Tick(dt, e.Now, e.Env, e.PathFinder)
		if a.Device != nil {
			a.Device.SetPosition(a.Position)
			a.Device.Tick(e.Now)
		}
	}
}

func (e *Engine) updateGrid() {
	entries := make([]spatial.Entry, len(e.Agents))
	for i, a := range e.Agents {
		entries[i] = spatial.Entry{ID: a.ID, Pos: a.Position}
	}
	e.grid.UpdateAll(entries)
}

// updateLinkRSSIAndDeliver recomputes every active link's RSSI, marks
// ones that have dropped below the disconnect threshold, and delivers
// whatever packets have finished their latency delay.
func (e *Engine) updateLinkRSSIAndDeliver() {
	var tornDown []*mesh.Link
	var survivors []*mesh.Link

	for _, l := range e.Links {
		if !l.IsActive {
			continue
		}
		a, b := l.EndpointA, l.EndpointB
		if a.Position == nil || b.Position == nil {
			survivors = append(survivors, l)
			continue
		}

		dist := a.Position.Distance(*b.Position)
		buildingLoss, _ := mesh.BuildingLossDB(e.Env, *a.Position, *b.Position)
		target := mesh.TargetRSSI(dist, buildingLoss, a.AntennaStrength, b.AntennaStrength)

		if l.UpdateRSSI(e.Now, target) {
			tornDown = append(tornDown, l)
			continue
		}
		survivors = append(survivors, l)

		for _, qp := range l.Drain(e.Now) {
			recipient := l.Other(qp.From)
			recipient.ReceivePacket(qp.Packet, qp.From, e.Now)
		}
	}

	for _, l := range tornDown {
		e.teardownLink(l, "rssi_below_threshold")
	}
	e.Links = survivors
}

func (e *Engine) teardownLink(l *mesh.Link, reason string) {
	l.IsActive = false
	l.EndpointA.Connections().RemoveConnection(l)
	l.EndpointB.Connections().RemoveConnection(l)
	e.Bus.Publish("connection_broken", map[string]any{
		"link":   l.ID,
		"a":      l.EndpointA.PeerID.Hex(),
		"b":      l.EndpointB.PeerID.Hex(),
		"reason": reason,
	})
	e.Log.Log(e.Now, logmgr.LevelInfo, logmgr.CategoryConnection, l.ID, "connection broken: "+reason, nil)
}

// updateConnectivity applies the geometric hysteresis gate: pairs within
// ConnectRangeMeters with no existing link may form one; pairs with an
// existing link that have drifted past DisconnectRangeMeters tear it
// down (spec §4.5).
func (e *Engine) updateConnectivity() {
	linked := make(map[[2]*mesh.Device]*mesh.Link)
	for _, l := range e.Links {
		linked[devicePairKey(l.EndpointA, l.EndpointB)] = l
	}

	var toBreak []*mesh.Link
	seen := make(map[[2]*mesh.Device]bool)

	for _, l := range e.Links {
		pa, pb := l.EndpointA.Position, l.EndpointB.Position
		if l.IsActive && pa != nil && pb != nil && pa.Distance(*pb) > DisconnectRangeMeters {
			toBreak = append(toBreak, l)
		}
	}

	for _, ai := range e.Agents {
		if ai.Device == nil {
			continue
		}
		neighbors := e.grid.GetNeighbors(ai.Position, DisconnectRangeMeters)
		for _, nb := range neighbors {
			aj := e.agentByID(nb.ID)
			if aj == nil || aj == ai || aj.Device == nil {
				continue
			}
			key := devicePairKey(ai.Device, aj.Device)
			if seen[key] {
				continue
			}
			seen[key] = true

			dist := ai.Position.Distance(aj.Position)
			existing := linked[key]

			switch {
			case existing != nil && dist > DisconnectRangeMeters:
				toBreak = append(toBreak, existing)
			case existing == nil && dist < ConnectRangeMeters:
				e.tryFormLink(ai, aj, dist)
			}
		}
	}

	for _, l := range toBreak {
		e.teardownLink(l, "out_of_range")
	}
	if len(toBreak) > 0 {
		live := e.Links[:0]
		for _, l := range e.Links {
			if l.IsActive {
				live = append(live, l)
			}
		}
		e.Links = live
	}
}

func devicePairKey(a, b *mesh.Device) [2]*mesh.Device {
	if a.PeerID.Hex() < b.PeerID.Hex() {
		return [2]*mesh.Device{a, b}
	}
	return [2]*mesh.Device{b, a}
}

// pruneInactiveConnections drops links a device's connection manager is
// still tracking after the *other* endpoint's enforceLimits evicted them
// to make room for a newer connection (AddConnection only updates the
// evicting side's own bookkeeping).
func (e *Engine) pruneInactiveConnections() {
	for _, a := range e.Agents {
		if a.Device != nil {
			a.Device.Connections().PruneInactive()
		}
	}
}

func (e *Engine) agentByID(id string) *agent.Agent {
	for _, a := range e.Agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// tryFormLink attempts to open a new connection between two nearby agents'
// devices, respecting each device's connection-manager caps (spec §4.7).
// The scanning side becomes the initiator ("client"): prefer a.Device if
// it is the one scanning, else fall back to the symmetric case with
// b.Device scanning. Neither side scanning means no link forms this tick.
func (e *Engine) tryFormLink(a, b *agent.Agent, dist float64) {
	p1, p2 := a.Device, b.Device

	var client, server *mesh.Device
	switch {
	case p1.IsScanning && p1.Connections().CanAcceptConnection(p1, true) && p2.Connections().CanAcceptConnection(p2, false):
		client, server = p1, p2
	case p2.IsScanning && p2.Connections().CanAcceptConnection(p2, true) && p1.Connections().CanAcceptConnection(p1, false):
		client, server = p2, p1
	default:
		return
	}

	l := mesh.NewLink(client, server, client)
	client.Connections().AddConnection(client, l)
	server.Connections().AddConnection(server, l)
	e.Links = append(e.Links, l)

	e.Bus.Publish("connection_formed", map[string]any{
		"link":     l.ID,
		"client":   client.PeerID.Hex(),
		"server":   server.PeerID.Hex(),
		"distance": dist,
	})
	e.Log.Log(e.Now, logmgr.LevelInfo, logmgr.CategoryConnection, l.ID, "connection formed", map[string]any{
		"distance": dist,
	})
}

// Run drives Step at a fixed hz wall-clock rate until ctx is cancelled,
// mirroring a long-running service's ticker loop. Each tick still
// advances sim time by a fixed 1/hz regardless of actual wall-clock
// jitter, keeping the simulation itself deterministic.
func (e *Engine) Run(ctx context.Context, hz float64) error {
	if hz <= 0 {
		hz = 1
	}
	dt := 1.0 / hz
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Step(dt)
		}
	}
}
