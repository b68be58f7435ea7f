package mesh

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/callebtc/bitchat-simulator-sub000/pkg/wire"
)

// AnnounceIntervalMs is the fixed period between a device's own ANNOUNCE
// broadcasts (spec §4.8).
const AnnounceIntervalMs = 5000.0

// seenCacheSize bounds the dedup cache so memory stays flat over an
// arbitrarily long run (spec §4.8).
const seenCacheSize = 1000

// EventFunc is how App reports protocol-level events (a received
// message, a relay, a new confirmed edge) to whatever is listening —
// the engine's event bus in practice, but App has no compile-time
// dependency on it.
type EventFunc func(name string, detail map[string]any)

// App is the mesh protocol running on top of one device: it schedules
// that device's own announcements, deduplicates and interprets incoming
// packets, and relays what it doesn't originate (spec §4.8).
type App struct {
	Device *Device
	Graph  *MeshGraph
	Peers  *PeerManager

	OnEvent EventFunc

	seen             *lru.Cache[string, struct{}]
	lastAnnounceAt   float64
	announceInitialized bool
}

// NewApp creates a device's protocol stack and binds it to the device.
func NewApp(d *Device) *App {
	cache, _ := lru.New[string, struct{}](seenCacheSize)
	app := &App{
		Device: d,
		Graph:  NewMeshGraph(),
		Peers:  NewPeerManager(),
		seen:   cache,
	}
	d.App = app
	return app
}

func (a *App) emit(name string, detail map[string]any) {
	if a.OnEvent != nil {
		a.OnEvent(name, detail)
	}
}

// Tick fires the device's own ANNOUNCE broadcast once per
// AnnounceIntervalMs (spec §4.8). now is sim seconds.
func (a *App) Tick(now float64) {
	if !a.announceInitialized {
		a.lastAnnounceAt = now
		a.announceInitialized = true
	}
	if (now-a.lastAnnounceAt)*1000.0 < AnnounceIntervalMs {
		return
	}
	a.lastAnnounceAt = now
	a.broadcastAnnounce(now)
}

func (a *App) directNeighborIDs() []wire.PeerID {
	links := a.Device.Connections().Links()
	ids := make([]wire.PeerID, 0, len(links))
	for _, l := range links {
		if !l.IsActive {
			continue
		}
		ids = append(ids, l.Other(a.Device).PeerID)
	}
	return ids
}

func (a *App) broadcastAnnounce(now float64) {
	neighbors := a.directNeighborIDs()

	var payload []byte
	payload = append(payload, wire.EncodeNickname(a.Device.Nickname)...)
	payload = append(payload, wire.EncodeNeighbors(neighbors)...)

	p := wire.Packet{
		Version:     2,
		Type:        wire.MessageTypeAnnounce,
		TTL:         wire.MaxTTL,
		Timestamp:   uint64(now * 1000.0),
		SenderID:    a.Device.PeerID,
		HasRecipient: true,
		RecipientID: wire.Broadcast,
		Payload:     payload,
	}

	a.markSeen(p)

	self := a.Device.PeerID.Hex()
	neighborHex := make([]string, len(neighbors))
	for i, n := range neighbors {
		neighborHex[i] = n.Hex()
	}
	a.Graph.ReplaceAnnouncements(self, neighborHex)

	for _, l := range a.Device.Connections().Links() {
		if !l.IsActive {
			continue
		}
		l.Send(p, a.Device, now)
		a.emit("packet_transmitted", map[string]any{
			"link":   l.ID,
			"from":   self,
			"type":   p.Type.String(),
		})
	}
}

func (a *App) markSeen(p wire.Packet) {
	a.seen.Add(wire.Fingerprint(p), struct{}{})
}

// Ingress handles a packet this device just received over a link from
// the neighbor device "from" (spec §4.8):
//
//  1. drop the device's own packets reflected back to it
//  2. deduplicate on the fingerprint; a packet seen before (from any
//     neighbor) is dropped without being interpreted or relayed again
//  3. interpret ANNOUNCE and MESSAGE payloads
//  4. decrement TTL and relay to every other active link (split
//     horizon: never back to "from"), unless TTL has reached zero
func (a *App) Ingress(p wire.Packet, from *Device, now float64) {
	if p.SenderID == a.Device.PeerID {
		return
	}

	fp := wire.Fingerprint(p)
	if a.seen.Contains(fp) {
		return
	}
	a.seen.Add(fp, struct{}{})

	senderHex := p.SenderID.Hex()

	switch p.Type {
	case wire.MessageTypeAnnounce:
		a.handleAnnounce(p, from, senderHex, now)
	case wire.MessageTypeMessage:
		a.emit("message_received", map[string]any{
			"from": senderHex,
			"to":   a.Device.PeerID.Hex(),
		})
	}

	a.relay(p, from, now)
}

func (a *App) handleAnnounce(p wire.Packet, from *Device, senderHex string, now float64) {
	elements := wire.DecodeTLV(p.Payload)
	nickname := wire.DecodeNickname(elements)
	neighbors := wire.DecodeNeighbors(elements)

	neighborHex := make([]string, len(neighbors))
	for i, n := range neighbors {
		neighborHex[i] = n.Hex()
	}
	a.Graph.ReplaceAnnouncements(senderHex, neighborHex)

	isDirect := from != nil && from.PeerID == p.SenderID
	hops := int(wire.MaxTTL - p.TTL)
	a.Peers.Update(senderHex, nickname, isDirect, hops, now)

	a.emit("peer_announced", map[string]any{
		"peer":     senderHex,
		"nickname": nickname,
		"direct":   isDirect,
	})
}

// relay decrements TTL and forwards to every active link except the one
// the packet arrived on, dropping once TTL has at most one hop left so it
// is never forwarded at TTL 0 (spec §4.8's split-horizon rule).
func (a *App) relay(p wire.Packet, from *Device, now float64) {
	if p.TTL <= 1 {
		return
	}

	out := p.Clone()
	out.TTL--

	for _, l := range a.Device.Connections().Links() {
		if !l.IsActive {
			continue
		}
		if l.Other(a.Device) == from {
			continue
		}
		l.Send(out, a.Device, now)
		a.emit("packet_relayed", map[string]any{
			"link": l.ID,
			"from": a.Device.PeerID.Hex(),
			"type": out.Type.String(),
		})
	}
}
