package wire

import (
	"bytes"
	"testing"
)

func samplePeerID(start byte) PeerID {
	var id PeerID
	for i := range id {
		id[i] = start + byte(i)
	}
	return id
}

func TestEncodeDecodeRoundTripV1(t *testing.T) {
	p := Packet{
		Version:  1,
		Type:     MessageTypeMessage,
		TTL:      7,
		SenderID: samplePeerID(1),
		Payload:  []byte{0xAA, 0xBB, 0xCC},
	}

	encoded := Encode(p)
	if len(encoded) != 25 {
		t.Fatalf("expected 25 encoded bytes, got %d", len(encoded))
	}

	decoded, ok := Decode(encoded)
	if !ok {
		t.Fatalf("Decode failed on well-formed packet")
	}

	if decoded.Version != p.Version || decoded.Type != p.Type || decoded.TTL != p.TTL {
		t.Errorf("header mismatch: got %+v", decoded)
	}
	if decoded.SenderID != p.SenderID {
		t.Errorf("senderID mismatch: got %x want %x", decoded.SenderID, p.SenderID)
	}
	if !bytes.Equal(decoded.Payload, p.Payload) {
		t.Errorf("payload mismatch: got %x want %x", decoded.Payload, p.Payload)
	}
	if decoded.HasRecipient || decoded.HasSignature || decoded.HasRoute {
		t.Errorf("unexpected optional fields set: %+v", decoded)
	}
}

func TestEncodeDecodeRoundTripAllFields(t *testing.T) {
	cases := []Packet{
		{
			Version:     1,
			Type:        MessageTypeAnnounce,
			TTL:         5,
			Timestamp:   1234567890,
			SenderID:    samplePeerID(1),
			RecipientID: Broadcast,
			HasRecipient: true,
			Payload:      []byte("hello"),
		},
		{
			Version:      2,
			Type:         MessageTypeMessage,
			TTL:          3,
			Timestamp:    42,
			SenderID:     samplePeerID(9),
			RecipientID:  samplePeerID(20),
			HasRecipient: true,
			Payload:      []byte{1, 2, 3, 4},
			HasSignature: true,
			Route:        []PeerID{samplePeerID(30), samplePeerID(40)},
			HasRoute:     true,
		},
		{
			Version:  2,
			Type:     MessageTypeLeave,
			TTL:      1,
			SenderID: samplePeerID(5),
		},
	}

	for i, p := range cases {
		encoded := Encode(p)
		decoded, ok := Decode(encoded)
		if !ok {
			t.Fatalf("case %d: Decode failed", i)
		}
		if decoded.Version != p.Version ||
			decoded.Type != p.Type ||
			decoded.TTL != p.TTL ||
			decoded.Timestamp != p.Timestamp ||
			decoded.SenderID != p.SenderID ||
			decoded.HasRecipient != p.HasRecipient ||
			decoded.HasSignature != p.HasSignature ||
			decoded.HasRoute != p.HasRoute {
			t.Fatalf("case %d: header mismatch\n got  %+v\n want %+v", i, decoded, p)
		}
		if p.HasRecipient && decoded.RecipientID != p.RecipientID {
			t.Errorf("case %d: recipient mismatch", i)
		}
		if !bytes.Equal(decoded.Payload, p.Payload) {
			t.Errorf("case %d: payload mismatch: got %x want %x", i, decoded.Payload, p.Payload)
		}
		if p.HasSignature && decoded.Signature != p.Signature {
			t.Errorf("case %d: signature mismatch", i)
		}
		if len(decoded.Route) != len(p.Route) {
			t.Fatalf("case %d: route length mismatch: got %d want %d", i, len(decoded.Route), len(p.Route))
		}
		for j := range p.Route {
			if decoded.Route[j] != p.Route[j] {
				t.Errorf("case %d: route hop %d mismatch", i, j)
			}
		}
	}
}

func TestDecodeTruncatedAlwaysFails(t *testing.T) {
	lengths := []int{0, 1, 10, 21}
	for _, n := range lengths {
		_, ok := Decode(make([]byte, n))
		if ok {
			t.Errorf("expected Decode to fail for %d-byte input", n)
		}
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	p := Packet{Version: 1, SenderID: samplePeerID(1)}
	encoded := Encode(p)
	encoded[0] = 3
	if _, ok := Decode(encoded); ok {
		t.Errorf("expected Decode to reject version 3")
	}
}

func TestDecodeRejectsOversizedPayloadLen(t *testing.T) {
	p := Packet{Version: 1, SenderID: samplePeerID(1), Payload: []byte{1, 2, 3}}
	encoded := Encode(p)
	// Corrupt the declared payload length to claim more bytes than exist.
	encoded[12] = 0xFF
	encoded[13] = 0xFF
	if _, ok := Decode(encoded); ok {
		t.Errorf("expected Decode to reject an oversized declared payload length")
	}
}

func TestDecodeRejectsCompressedFlag(t *testing.T) {
	p := Packet{Version: 1, SenderID: samplePeerID(1)}
	encoded := Encode(p)
	encoded[11] |= flagIsCompressed
	if _, ok := Decode(encoded); ok {
		t.Errorf("expected Decode to hard-fail on IS_COMPRESSED")
	}
}

func TestHasRouteIgnoredOnV1(t *testing.T) {
	p := Packet{
		Version:  1,
		SenderID: samplePeerID(1),
		Route:    []PeerID{samplePeerID(2)},
		HasRoute: true,
	}
	encoded := Encode(p)
	decoded, ok := Decode(encoded)
	if !ok {
		t.Fatalf("Decode failed")
	}
	if decoded.HasRoute || len(decoded.Route) != 0 {
		t.Errorf("expected HAS_ROUTE to never be set on v1, got %+v", decoded)
	}
}
