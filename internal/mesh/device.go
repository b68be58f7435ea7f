package mesh

import (
	"math/rand"

	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
	"github.com/callebtc/bitchat-simulator-sub000/pkg/wire"
)

// PowerMode governs how aggressively a device scans for neighbors.
type PowerMode int

const (
	PowerModeEco PowerMode = iota
	PowerModeNormal
	PowerModePerformance
)

// ScanIntervalMs returns the base scan interval for a power mode
// (spec §4.7).
func (m PowerMode) ScanIntervalMs() float64 {
	switch m {
	case PowerModeEco:
		return 60_000
	case PowerModePerformance:
		return 10_000
	default:
		return 30_000
	}
}

// DefaultConnectionLimit is each of maxClients/maxServers/maxTotal's
// default value (spec §4.7).
const DefaultConnectionLimit = 8

// Device is a mesh radio's identity and scan/connection state. Position
// is optional (a device not yet bound to an agent has none).
type Device struct {
	PeerID       wire.PeerID
	Nickname     string
	Position     *geom.Point2D
	AntennaStrength float64

	PowerMode PowerMode
	conns     *ConnectionManager

	App *App

	rng           *rand.Rand
	lastScan      float64
	currentDelay  float64
	scanInitialized bool
	IsScanning    bool
}

// NewDevice creates a device with default connection limits and normal
// power mode. rng must be the engine's shared, seeded source so scan
// jitter stays deterministic (spec §5).
func NewDevice(id wire.PeerID, nickname string, rng *rand.Rand) *Device {
	d := &Device{
		PeerID:          id,
		Nickname:        nickname,
		AntennaStrength: 50,
		PowerMode:       PowerModeNormal,
		rng:             rng,
	}
	d.conns = NewConnectionManager(DefaultConnectionLimit, DefaultConnectionLimit, DefaultConnectionLimit)
	return d
}

// Connections returns the device's connection manager.
func (d *Device) Connections() *ConnectionManager { return d.conns }

// SetPosition updates the device's known position (mirrors its owning
// agent).
func (d *Device) SetPosition(p geom.Point2D) { d.Position = &p }

// Tick runs the device's per-tick work: the bound app's tick, then scan
// scheduling with jitter (spec §4.7). now is sim seconds.
func (d *Device) Tick(now float64) {
	if d.App != nil {
		d.App.Tick(now)
	}
	d.tickScan(now)
}

func (d *Device) tickScan(now float64) {
	if !d.scanInitialized {
		// Randomize the initial offset so devices don't all scan in
		// lockstep from tick zero.
		d.currentDelay = d.jitteredInterval()
		d.lastScan = now - d.rng.Float64()*d.currentDelay/1000.0
		d.scanInitialized = true
	}

	if (now-d.lastScan)*1000.0 > d.currentDelay {
		d.IsScanning = true
		d.lastScan = now
		d.currentDelay = d.jitteredInterval()
	} else {
		d.IsScanning = false
	}
}

// jitteredInterval draws base*(1+U(-0.2,+0.2)), preventing synchronized
// scanning across devices ("thundering herd").
func (d *Device) jitteredInterval() float64 {
	base := d.PowerMode.ScanIntervalMs()
	jitter := -0.2 + d.rng.Float64()*0.4
	return base * (1 + jitter)
}

// ReceivePacket hands a delivered packet to the bound app's ingress
// pipeline. from is the neighbor device the packet arrived over, used for
// split-horizon relay and isDirect bookkeeping.
func (d *Device) ReceivePacket(p wire.Packet, from *Device, now float64) {
	if d.App != nil {
		d.App.Ingress(p, from, now)
	}
}
