package wire

import (
	"encoding/hex"
	"hash/fnv"
	"strconv"
)

// Fingerprint computes the packet dedup key: FNV-1a 32-bit over the ASCII
// concatenation "version|type|senderHex|recipientHex|timestamp|payloadHex|
// signatureHex|routeConcatHex", separator "|", empty string for any absent
// optional field, rendered as lowercase hex (spec §6).
//
// This exact text encoding is part of the wire contract: two
// implementations that disagree on it will dedup packets differently and
// diverge on what they relay.
func Fingerprint(p Packet) string {
	recipientHex := ""
	if p.HasRecipient {
		recipientHex = p.RecipientID.Hex()
	}

	payloadHex := ""
	if len(p.Payload) > 0 {
		payloadHex = hex.EncodeToString(p.Payload)
	}

	signatureHex := ""
	if p.HasSignature {
		signatureHex = hex.EncodeToString(p.Signature[:])
	}

	routeHex := ""
	if p.HasRoute && len(p.Route) > 0 {
		buf := make([]byte, 0, len(p.Route)*PeerIDLen)
		for _, hop := range p.Route {
			buf = append(buf, hop[:]...)
		}
		routeHex = hex.EncodeToString(buf)
	}

	s := strconv.Itoa(int(p.Version)) + "|" +
		strconv.Itoa(int(p.Type)) + "|" +
		p.SenderID.Hex() + "|" +
		recipientHex + "|" +
		strconv.FormatUint(p.Timestamp, 10) + "|" +
		payloadHex + "|" +
		signatureHex + "|" +
		routeHex

	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
