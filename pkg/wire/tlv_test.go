package wire

import "testing"

func TestNicknameRoundTrip(t *testing.T) {
	names := []string{"", "alice", "a very long nickname with spaces and emoji 🎉"}
	for _, name := range names {
		encoded := EncodeNickname(name)
		elements := DecodeTLV(encoded)
		got := DecodeNickname(elements)
		if got != name {
			t.Errorf("round trip mismatch: got %q want %q", got, name)
		}
	}
}

func TestNeighborsRoundTrip(t *testing.T) {
	ids := []PeerID{samplePeerID(1), samplePeerID(10), samplePeerID(20)}
	encoded := EncodeNeighbors(ids)
	elements := DecodeTLV(encoded)
	got := DecodeNeighbors(elements)
	if len(got) != len(ids) {
		t.Fatalf("expected %d neighbors, got %d", len(ids), len(got))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("neighbor %d mismatch: got %x want %x", i, got[i], ids[i])
		}
	}
}

func TestDecodeTLVStopsOnMalformedElement(t *testing.T) {
	good := EncodeNickname("bob")
	// Append a truncated element: type+length header claiming more bytes
	// than actually follow.
	malformed := append(append([]byte(nil), good...), 0x04, 0xFF)

	elements := DecodeTLV(malformed)
	if len(elements) != 1 {
		t.Fatalf("expected exactly 1 clean element before the malformed tail, got %d", len(elements))
	}
	if DecodeNickname(elements) != "bob" {
		t.Errorf("expected the leading valid element to still decode")
	}
}

func TestDecodeTLVEmptyPayload(t *testing.T) {
	elements := DecodeTLV(nil)
	if len(elements) != 0 {
		t.Errorf("expected no elements for empty payload")
	}
}

func TestCombinedAnnouncePayload(t *testing.T) {
	nick := EncodeNickname("carol")
	neighbors := EncodeNeighbors([]PeerID{samplePeerID(3), samplePeerID(4)})
	payload := append(append([]byte(nil), nick...), neighbors...)

	elements := DecodeTLV(payload)
	if DecodeNickname(elements) != "carol" {
		t.Errorf("nickname mismatch in combined payload")
	}
	got := DecodeNeighbors(elements)
	if len(got) != 2 || got[0] != samplePeerID(3) || got[1] != samplePeerID(4) {
		t.Errorf("neighbors mismatch in combined payload: %x", got)
	}
}
