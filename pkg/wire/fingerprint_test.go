package wire

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	p := Packet{
		Version:   1,
		Type:      MessageTypeMessage,
		TTL:       7,
		Timestamp: 100,
		SenderID:  samplePeerID(1),
		Payload:   []byte("hi"),
	}
	a := Fingerprint(p)
	b := Fingerprint(p)
	if a != b {
		t.Fatalf("fingerprint not deterministic: %s vs %s", a, b)
	}
}

func TestFingerprintDistinguishesTimestamp(t *testing.T) {
	base := Packet{Version: 1, Type: MessageTypeAnnounce, SenderID: samplePeerID(1), Timestamp: 1}
	other := base
	other.Timestamp = 2

	if Fingerprint(base) == Fingerprint(other) {
		t.Errorf("expected distinct fingerprints for distinct timestamps")
	}
}

func TestFingerprintDistinguishesPayload(t *testing.T) {
	base := Packet{Version: 1, Type: MessageTypeMessage, SenderID: samplePeerID(1), Payload: []byte("a")}
	other := base
	other.Payload = []byte("b")

	if Fingerprint(base) == Fingerprint(other) {
		t.Errorf("expected distinct fingerprints for distinct payloads")
	}
}

func TestFingerprintDistinguishesZeroRecipientFromAbsent(t *testing.T) {
	withRecipient := Packet{Version: 1, SenderID: samplePeerID(1), RecipientID: PeerID{}, HasRecipient: true}
	withoutRecipient := Packet{Version: 1, SenderID: samplePeerID(1)}

	// An explicit zero recipient is not the same as an absent one: the
	// recipientHex field differs ("" vs the zero ID's hex encoding).
	if Fingerprint(withRecipient) == Fingerprint(withoutRecipient) {
		t.Errorf("expected an explicit zero recipient to differ from an absent one")
	}
}
