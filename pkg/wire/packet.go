// Package wire implements the mesh chat binary packet format and its TLV
// payload encoding. It has no dependency on the simulation engine: it only
// knows how to turn a Packet into bytes and back.
package wire

import "encoding/hex"

// MessageType identifies what a Packet's payload means. Only Announce and
// Message are interpreted by the mesh protocol; every other type is valid
// wire data that gets relayed verbatim.
type MessageType byte

// Known message types. Values outside this set are still valid on the
// wire; they decode fine and are relayed but never interpreted.
const (
	MessageTypeAnnounce       MessageType = 0x01
	MessageTypeMessage        MessageType = 0x02
	MessageTypeLeave          MessageType = 0x03
	MessageTypeNoiseHandshake MessageType = 0x10
	MessageTypeNoiseEncrypted MessageType = 0x11
	MessageTypeFragment       MessageType = 0x20
	MessageTypeRequestSync    MessageType = 0x21
	MessageTypeFileTransfer   MessageType = 0x22
)

// String returns a human-readable name for known types, or "UNKNOWN" for
// anything else.
func (t MessageType) String() string {
	switch t {
	case MessageTypeAnnounce:
		return "ANNOUNCE"
	case MessageTypeMessage:
		return "MESSAGE"
	case MessageTypeLeave:
		return "LEAVE"
	case MessageTypeNoiseHandshake:
		return "NOISE_HANDSHAKE"
	case MessageTypeNoiseEncrypted:
		return "NOISE_ENCRYPTED"
	case MessageTypeFragment:
		return "FRAGMENT"
	case MessageTypeRequestSync:
		return "REQUEST_SYNC"
	case MessageTypeFileTransfer:
		return "FILE_TRANSFER"
	default:
		return "UNKNOWN"
	}
}

// Canonical lengths of fixed-size fields.
const (
	PeerIDLen    = 8
	SignatureLen = 64

	// MaxTTL is the hop budget a freshly originated packet starts with.
	MaxTTL = 7
)

// PeerID is an 8-byte mesh device identifier. The broadcast address is
// all-0xFF.
type PeerID [PeerIDLen]byte

// Broadcast is the reserved "everyone" recipient address.
var Broadcast = PeerID{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Hex renders the peer ID as canonical lowercase hex, the form used at all
// string-keyed boundaries (peer tables, mesh graph, logs).
func (p PeerID) Hex() string {
	return hex.EncodeToString(p[:])
}

// IsBroadcast reports whether this ID is the reserved broadcast address.
func (p PeerID) IsBroadcast() bool {
	return p == Broadcast
}

// PeerIDFromHex parses a canonical hex peer ID. Malformed input decodes to
// the zero PeerID and ok=false; callers at trust boundaries should check ok.
func PeerIDFromHex(s string) (PeerID, bool) {
	var id PeerID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != PeerIDLen {
		return id, false
	}
	copy(id[:], b)
	return id, true
}

// Packet is a fully decoded mesh packet, independent of which wire version
// produced it.
type Packet struct {
	Version     uint8
	Type        MessageType
	TTL         uint8
	Timestamp   uint64 // ms since epoch, monotonically nondecreasing
	SenderID    PeerID
	RecipientID PeerID // only meaningful when HasRecipient is true
	HasRecipient bool
	Payload     []byte
	Signature   [SignatureLen]byte
	HasSignature bool
	Route        []PeerID // v2 only
	HasRoute     bool
}

// Clone returns a deep copy safe to mutate (e.g. for TTL decrement before
// relay) without aliasing the original's slices.
func (p Packet) Clone() Packet {
	out := p
	if p.Payload != nil {
		out.Payload = append([]byte(nil), p.Payload...)
	}
	if p.Route != nil {
		out.Route = append([]PeerID(nil), p.Route...)
	}
	return out
}
