// Package mesh implements the BLE link RSSI model, device identity and
// connection management, and the store-and-forward gossip protocol that
// rides on top of them (spec §4.6-§4.8).
package mesh

import (
	"math"

	"github.com/google/uuid"

	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
	"github.com/callebtc/bitchat-simulator-sub000/pkg/wire"
)

// Packet is the mesh protocol's packet type, re-exported from pkg/wire so
// callers of this package don't need a second import for it.
type Packet = wire.Packet

// RSSI model constants (spec §4.6).
const (
	RSSIAt1Meter         = -40.0 // dBm at 1m with baseline antenna strength
	PathLossExponent     = 2.5
	DisconnectThresholdDBm = -85.0
	NoiseAmplitudeDB     = 3.0
	NoisePeriodSeconds   = 15.0
	SmoothingAlpha       = 0.3

	// WallLossDB is the fixed per-building entry loss, on top of the
	// distance-proportional material attenuation below.
	WallLossDB = 15.0
	// MaterialAttenuationPerMeter is the simple model's single constant
	// regardless of the dense/internal distinction (spec §4.6, §9 open
	// question) — SameBuildingDense is still threaded through so a future
	// per-regime constant has somewhere to plug in without changing the
	// output of today's single-constant model.
	MaterialAttenuationPerMeter = 12.0

	baselineAntennaStrength = 50.0
)

// AntennaGainDB converts a device's antenna strength into a dB gain
// relative to the baseline strength of 50: 10*log10(max(1,strength)/50).
func AntennaGainDB(strength float64) float64 {
	if strength < 1 {
		strength = 1
	}
	return 10 * math.Log10(strength/baselineAntennaStrength)
}

// BuildingLossDB sums, over every building the segment a-b traverses, the
// fixed WallLossDB entry cost plus MaterialAttenuationPerMeter times the
// traversal length inside that building (spec §4.6). sameBuildingDense
// reports whether both endpoints sit inside the same building, for the
// open "dense vs internal" distinction this model does not yet act on.
func BuildingLossDB(env *geom.Environment, a, b geom.Point2D) (lossDB float64, sameBuildingDense bool) {
	if env == nil {
		return 0, false
	}

	candidates := env.GetBuildingsInPath(a, b)
	for _, bld := range candidates {
		_, _, traversal, ok := geom.LineThroughPolygon(a, b, bld.Vertices)
		if !ok {
			continue
		}
		lossDB += WallLossDB + MaterialAttenuationPerMeter*traversal
	}

	bldA := env.IsInsideBuilding(a)
	bldB := env.IsInsideBuilding(b)
	sameBuildingDense = bldA != nil && bldB != nil && bldA.ID == bldB.ID

	return lossDB, sameBuildingDense
}

// TargetRSSI computes the noiseless target RSSI for a link at distance d
// meters, given each endpoint's antenna strength and the accumulated
// building loss along the path (spec §4.6):
//
//	AT_1M - 10*n*log10(max(d,0.1)) - buildingLoss + gainA + gainB
func TargetRSSI(distanceMeters, buildingLossDB, strengthA, strengthB float64) float64 {
	d := distanceMeters
	if d < 0.1 {
		d = 0.1
	}
	return RSSIAt1Meter - 10*PathLossExponent*math.Log10(d) - buildingLossDB +
		AntennaGainDB(strengthA) + AntennaGainDB(strengthB)
}

// QueuedPacket is an in-flight delivery sitting in a link's latency
// queue.
type QueuedPacket struct {
	Packet    Packet
	From      *Device
	DeliverAt float64 // sim time, seconds
	seq       uint64  // insertion order, breaks DeliverAt ties
}

// Link is a point-to-point BLE connection between two devices.
type Link struct {
	ID              string
	EndpointA       *Device
	EndpointB       *Device
	Initiator       *Device
	IsActive        bool
	PacketsSent     int
	PacketsReceived int

	RSSI       float64
	RSSITarget float64
	noisePhase float64
	LatencyMs  float64

	queue    []QueuedPacket
	nextSeq  uint64
}

// DefaultLatencyMs is the fixed one-way delivery delay applied to every
// packet a link queues, modeling BLE connection-interval scheduling
// rather than propagation delay.
const DefaultLatencyMs = 50.0

// NewLink creates an active link between two devices. initiator must be
// one of a or b and becomes the client side (spec §4.7's initiator/client
// convention).
func NewLink(a, b, initiator *Device) *Link {
	return &Link{
		ID:        uuid.NewString(),
		EndpointA: a,
		EndpointB: b,
		Initiator: initiator,
		IsActive:  true,
		LatencyMs: DefaultLatencyMs,
	}
}

// Other returns the endpoint that is not d.
func (l *Link) Other(d *Device) *Device {
	if l.EndpointA == d {
		return l.EndpointB
	}
	return l.EndpointA
}

// IsClient reports whether d is the initiating ("client") side.
func (l *Link) IsClient(d *Device) bool { return l.Initiator == d }

// UpdateRSSI records target, the noiseless RSSI the caller computed from
// the current geometry (see TargetRSSI), then advances the noise phase and applies exponential smoothing (spec
// §4.6). now is the simulation clock in seconds (used for noise phase,
// which is periodic and must not depend on dt). It returns true if the
// smoothed RSSI has dropped below the disconnect threshold, signalling
// the caller should tear the link down.
func (l *Link) UpdateRSSI(now float64, target float64) (tearDown bool) {
	l.RSSITarget = target
	l.noisePhase = now * (2 * math.Pi / NoisePeriodSeconds)
	noise := math.Sin(l.noisePhase) * NoiseAmplitudeDB
	l.RSSI += (target + noise - l.RSSI) * SmoothingAlpha
	return l.RSSI < DisconnectThresholdDBm
}

// Send enqueues a packet for delivery to the endpoint opposite from. The
// caller is responsible for emitting the packet_transmitted event — Send
// itself only manages the queue so it can be unit tested without an event
// bus.
func (l *Link) Send(p Packet, from *Device, now float64) {
	l.PacketsSent++
	l.nextSeq++
	l.queue = append(l.queue, QueuedPacket{
		Packet:    p,
		From:      from,
		DeliverAt: now + l.LatencyMs/1000.0,
		seq:       l.nextSeq,
	})
}

// Drain removes every queued packet whose deliverAt has passed (ties
// broken by insertion order, matching the order the queue drains in, per
// spec §5) and returns them for the caller to hand to the recipient
// device. It does not call back into Device itself, keeping Link free of
// a dependency cycle with the mesh protocol layer.
func (l *Link) Drain(now float64) []QueuedPacket {
	if len(l.queue) == 0 {
		return nil
	}

	var ready []QueuedPacket
	var remaining []QueuedPacket
	for _, qp := range l.queue {
		if qp.DeliverAt <= now {
			ready = append(ready, qp)
		} else {
			remaining = append(remaining, qp)
		}
	}
	l.queue = remaining

	// Stable-sort ready entries by (deliverAt, seq) so same-tick
	// deliveries resolve in the order their deadlines and, on a tie,
	// their insertion occurred.
	for i := 1; i < len(ready); i++ {
		for j := i; j > 0; j-- {
			a, b := ready[j-1], ready[j]
			if a.DeliverAt > b.DeliverAt || (a.DeliverAt == b.DeliverAt && a.seq > b.seq) {
				ready[j-1], ready[j] = ready[j], ready[j-1]
			} else {
				break
			}
		}
	}

	l.PacketsReceived += len(ready)
	return ready
}
