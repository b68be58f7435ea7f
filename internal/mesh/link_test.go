package mesh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/callebtc/bitchat-simulator-sub000/pkg/wire"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestAntennaGainDBBaselineIsZero(t *testing.T) {
	if g := AntennaGainDB(50); !almostEqual(g, 0, 1e-9) {
		t.Fatalf("expected zero gain at baseline strength, got %v", g)
	}
}

func TestAntennaGainDBClampsBelowOne(t *testing.T) {
	g := AntennaGainDB(-5)
	want := 10 * math.Log10(1.0/50.0)
	if !almostEqual(g, want, 1e-9) {
		t.Fatalf("expected strength clamped to 1, got %v want %v", g, want)
	}
}

func TestTargetRSSIMatchesBaselineAt1Meter(t *testing.T) {
	got := TargetRSSI(1.0, 0, 50, 50)
	if !almostEqual(got, RSSIAt1Meter, 1e-9) {
		t.Fatalf("expected %v at 1m with no building loss and baseline strengths, got %v", RSSIAt1Meter, got)
	}
}

func TestTargetRSSIDecreasesWithDistance(t *testing.T) {
	near := TargetRSSI(2, 0, 50, 50)
	far := TargetRSSI(20, 0, 50, 50)
	if far >= near {
		t.Fatalf("expected RSSI to weaken with distance, near=%v far=%v", near, far)
	}
}

func TestTargetRSSIClampsSubMeterDistance(t *testing.T) {
	a := TargetRSSI(0.1, 0, 50, 50)
	b := TargetRSSI(0.0001, 0, 50, 50)
	if !almostEqual(a, b, 1e-9) {
		t.Fatalf("expected distance below 0.1m to clamp identically, got %v and %v", a, b)
	}
}

func TestUpdateRSSIConvergesTowardTarget(t *testing.T) {
	l := NewLink(nil, nil, nil)
	l.RSSI = -40
	for i := 0; i < 200; i++ {
		l.UpdateRSSI(float64(i)*0.1, -70)
	}
	// The last update ran at now=19.9s; the smoothed value tracks the
	// target plus that tick's sinusoidal noise.
	want := -70 + math.Sin(19.9*(2*math.Pi/NoisePeriodSeconds))*NoiseAmplitudeDB
	if !almostEqual(l.RSSI, want, 1.0) {
		t.Fatalf("expected RSSI to converge near %v (-70 plus noise) after many ticks, got %v", want, l.RSSI)
	}
}

func TestUpdateRSSISignalsTearDownBelowThreshold(t *testing.T) {
	l := NewLink(nil, nil, nil)
	l.RSSI = DisconnectThresholdDBm - 0.01
	tearDown := l.UpdateRSSI(0, DisconnectThresholdDBm-20)
	if !tearDown {
		t.Fatalf("expected tear-down signal once smoothed RSSI is below threshold")
	}
}

func samplePeerID(start byte) wire.PeerID {
	var id wire.PeerID
	for i := range id {
		id[i] = start + byte(i)
	}
	return id
}

func TestDrainOrdersBySameTickDeliveryThenInsertion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewDevice(samplePeerID(1), "a", rng)
	b := NewDevice(samplePeerID(2), "b", rng)
	l := NewLink(a, b, a)
	l.LatencyMs = 0

	p1 := wire.Packet{Version: 2, SenderID: a.PeerID, Timestamp: 1}
	p2 := wire.Packet{Version: 2, SenderID: a.PeerID, Timestamp: 2}
	l.Send(p1, a, 0)
	l.Send(p2, a, 0)

	ready := l.Drain(0)
	if len(ready) != 2 {
		t.Fatalf("expected both packets ready at the same deliverAt, got %d", len(ready))
	}
	if ready[0].Packet.Timestamp != 1 || ready[1].Packet.Timestamp != 2 {
		t.Fatalf("expected insertion order to break the tie, got %+v", ready)
	}
}

func TestDrainLeavesNotYetDueEntriesQueued(t *testing.T) {
	a := NewDevice(samplePeerID(1), "a", rand.New(rand.NewSource(1)))
	l := NewLink(a, nil, a)
	l.LatencyMs = 1000

	l.Send(wire.Packet{SenderID: a.PeerID}, a, 0)
	if ready := l.Drain(0); len(ready) != 0 {
		t.Fatalf("expected nothing ready before latency elapses, got %d", len(ready))
	}
	if ready := l.Drain(1.0); len(ready) != 1 {
		t.Fatalf("expected the packet ready once latency has elapsed, got %d", len(ready))
	}
}
