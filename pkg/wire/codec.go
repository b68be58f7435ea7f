package wire

import "encoding/binary"

// Flag bits in the header's flags byte.
const (
	flagHasRecipient byte = 0x01
	flagHasSignature byte = 0x02
	flagIsCompressed byte = 0x04
	flagHasRoute     byte = 0x08
)

// Fixed header sizes, by version. v1 uses a 2-byte payload length; v2
// widens it to 4 bytes to carry larger payloads alongside routes. Any
// deviation from these breaks wire compatibility (spec §9).
const (
	headerSizeV1 = 14 // version|type|ttl|timestamp(8)|flags|payloadLen(2)
	headerSizeV2 = 16 // version|type|ttl|timestamp(8)|flags|payloadLen(4)

	// minDecodeLen is the smallest input Decode will accept: a v1 header
	// plus a sender ID, per spec §4.1.
	minDecodeLen = headerSizeV1 + PeerIDLen
)

// Encode serializes a Packet into its binary wire form. It builds the
// buffer in one pass, sized by summing the contribution of every field
// that is actually present.
//
// recipientID, signature and each route hop are always written at their
// canonical length: Encode never truncates or pads beyond PeerIDLen /
// SignatureLen because Packet already stores them at that size.
func Encode(p Packet) []byte {
	hasRoute := p.HasRoute && p.Version >= 2 && len(p.Route) > 0

	size := headerLen(p.Version)
	size += PeerIDLen // senderID
	if p.HasRecipient {
		size += PeerIDLen
	}
	if hasRoute {
		size += 1 + len(p.Route)*PeerIDLen
	}
	size += len(p.Payload)
	if p.HasSignature {
		size += SignatureLen
	}

	buf := make([]byte, size)
	off := 0

	buf[off] = p.Version
	off++
	buf[off] = byte(p.Type)
	off++
	buf[off] = p.TTL
	off++
	binary.BigEndian.PutUint64(buf[off:off+8], p.Timestamp)
	off += 8

	flags := byte(0)
	if p.HasRecipient {
		flags |= flagHasRecipient
	}
	if p.HasSignature {
		flags |= flagHasSignature
	}
	if hasRoute {
		flags |= flagHasRoute
	}
	buf[off] = flags
	off++

	if p.Version >= 2 {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(p.Payload)))
		off += 4
	} else {
		binary.BigEndian.PutUint16(buf[off:off+2], uint16(len(p.Payload)))
		off += 2
	}

	copy(buf[off:off+PeerIDLen], p.SenderID[:])
	off += PeerIDLen

	if p.HasRecipient {
		copy(buf[off:off+PeerIDLen], p.RecipientID[:])
		off += PeerIDLen
	}

	if hasRoute {
		buf[off] = byte(len(p.Route))
		off++
		for _, hop := range p.Route {
			copy(buf[off:off+PeerIDLen], hop[:])
			off += PeerIDLen
		}
	}

	copy(buf[off:off+len(p.Payload)], p.Payload)
	off += len(p.Payload)

	if p.HasSignature {
		copy(buf[off:off+SignatureLen], p.Signature[:])
		off += SignatureLen
	}

	return buf
}

func headerLen(version uint8) int {
	if version >= 2 {
		return headerSizeV2
	}
	return headerSizeV1
}

// Decode parses a binary packet. On any malformed input it returns the
// zero Packet and ok=false: callers never see a partially populated
// Packet nor a panic (spec §7 — malformed input is never fatal).
func Decode(data []byte) (Packet, bool) {
	if len(data) < minDecodeLen {
		return Packet{}, false
	}

	version := data[0]
	if version != 1 && version != 2 {
		return Packet{}, false
	}

	hdrLen := headerLen(version)
	if len(data) < hdrLen+PeerIDLen {
		return Packet{}, false
	}

	var p Packet
	p.Version = version
	p.Type = MessageType(data[1])
	p.TTL = data[2]
	p.Timestamp = binary.BigEndian.Uint64(data[3:11])
	flags := data[11]

	if flags&flagIsCompressed != 0 {
		// Compression is not implemented; hard fail rather than
		// silently returning garbage payload bytes.
		return Packet{}, false
	}

	off := 12
	var payloadLen int
	if version >= 2 {
		if len(data) < off+4 {
			return Packet{}, false
		}
		payloadLen = int(binary.BigEndian.Uint32(data[off : off+4]))
		off += 4
	} else {
		if len(data) < off+2 {
			return Packet{}, false
		}
		payloadLen = int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
	}

	if len(data) < off+PeerIDLen {
		return Packet{}, false
	}
	copy(p.SenderID[:], data[off:off+PeerIDLen])
	off += PeerIDLen

	if flags&flagHasRecipient != 0 {
		if len(data) < off+PeerIDLen {
			return Packet{}, false
		}
		copy(p.RecipientID[:], data[off:off+PeerIDLen])
		off += PeerIDLen
		p.HasRecipient = true
	}

	// HAS_ROUTE is only meaningful on v2; on v1 it is ignored entirely,
	// matching Encode which never sets it for v1.
	if version >= 2 && flags&flagHasRoute != 0 {
		if off >= len(data) {
			return Packet{}, false
		}
		count := int(data[off])
		off++
		if len(data) < off+count*PeerIDLen {
			return Packet{}, false
		}
		route := make([]PeerID, count)
		for i := 0; i < count; i++ {
			copy(route[i][:], data[off:off+PeerIDLen])
			off += PeerIDLen
		}
		p.Route = route
		p.HasRoute = true
	}

	if payloadLen < 0 || len(data) < off+payloadLen {
		return Packet{}, false
	}
	if payloadLen > 0 {
		p.Payload = append([]byte(nil), data[off:off+payloadLen]...)
	}
	off += payloadLen

	if flags&flagHasSignature != 0 {
		if len(data) < off+SignatureLen {
			return Packet{}, false
		}
		copy(p.Signature[:], data[off:off+SignatureLen])
		off += SignatureLen
		p.HasSignature = true
	}

	return p, true
}
