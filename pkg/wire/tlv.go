package wire

// TLV element types carried inside an ANNOUNCE payload.
const (
	TLVNickname        byte = 0x01
	TLVDirectNeighbors byte = 0x04
)

// maxTLVValueLen is the largest value a single TLV element can carry: the
// length byte is one octet, so values over 255 bytes cannot be encoded.
// Callers are responsible for staying under this (spec §4.1).
const maxTLVValueLen = 255

// EncodeNickname wraps a nickname string in a single NICKNAME TLV element.
// Callers must keep the UTF-8 encoding at or under 255 bytes; longer
// strings are silently truncated to the maximum length since exceeding it
// is a caller error, not a decodable wire condition.
func EncodeNickname(nickname string) []byte {
	b := []byte(nickname)
	if len(b) > maxTLVValueLen {
		b = b[:maxTLVValueLen]
	}
	out := make([]byte, 2+len(b))
	out[0] = TLVNickname
	out[1] = byte(len(b))
	copy(out[2:], b)
	return out
}

// EncodeNeighbors wraps a concatenation of peer IDs in a single
// DIRECT_NEIGHBORS TLV element. Callers must keep len(ids)*8 <= 255.
func EncodeNeighbors(ids []PeerID) []byte {
	n := len(ids)
	if n*PeerIDLen > maxTLVValueLen {
		n = maxTLVValueLen / PeerIDLen
	}
	out := make([]byte, 2+n*PeerIDLen)
	out[0] = TLVDirectNeighbors
	out[1] = byte(n * PeerIDLen)
	for i := 0; i < n; i++ {
		copy(out[2+i*PeerIDLen:2+(i+1)*PeerIDLen], ids[i][:])
	}
	return out
}

// TLVElement is one decoded type|length|value element.
type TLVElement struct {
	Type  byte
	Value []byte
}

// DecodeTLV walks a payload decoding each type|length|value element. It
// stops cleanly (returning whatever elements parsed so far, no error) the
// instant it hits a malformed element: a declared length that runs past
// the end of the buffer, or fewer than 2 bytes remaining for a new
// type|length pair. Per spec §4.1 a malformed element never fails the
// whole payload.
func DecodeTLV(payload []byte) []TLVElement {
	var elements []TLVElement
	off := 0
	for off+2 <= len(payload) {
		typ := payload[off]
		length := int(payload[off+1])
		off += 2
		if off+length > len(payload) {
			break
		}
		elements = append(elements, TLVElement{
			Type:  typ,
			Value: append([]byte(nil), payload[off:off+length]...),
		})
		off += length
	}
	return elements
}

// DecodeNickname finds the first NICKNAME element in a decoded TLV
// payload and returns it as a string, or "" if absent.
func DecodeNickname(elements []TLVElement) string {
	for _, e := range elements {
		if e.Type == TLVNickname {
			return string(e.Value)
		}
	}
	return ""
}

// DecodeNeighbors finds the first DIRECT_NEIGHBORS element and splits its
// value into individual peer IDs, dropping any trailing bytes that don't
// form a complete ID.
func DecodeNeighbors(elements []TLVElement) []PeerID {
	for _, e := range elements {
		if e.Type != TLVDirectNeighbors {
			continue
		}
		count := len(e.Value) / PeerIDLen
		ids := make([]PeerID, count)
		for i := 0; i < count; i++ {
			copy(ids[i][:], e.Value[i*PeerIDLen:(i+1)*PeerIDLen])
		}
		return ids
	}
	return nil
}
