package engine

import (
	"testing"

	"github.com/callebtc/bitchat-simulator-sub000/internal/agent"
	"github.com/callebtc/bitchat-simulator-sub000/internal/geom"
	"github.com/callebtc/bitchat-simulator-sub000/internal/mesh"
	"github.com/callebtc/bitchat-simulator-sub000/pkg/wire"
)

func newTestEngine() *Engine {
	return New(geom.NewEnvironment(nil), Config{
		Bounds: geom.AABB{MinX: -500, MinY: -500, MaxX: 500, MaxY: 500},
		Seed:   1,
	})
}

func stillAt(e *Engine, nickname string, pos geom.Point2D) *agent.Agent {
	a := e.AddAgent(nickname, pos)
	a.Mode = agent.ModeStill
	return a
}

// stepUntilLinked steps e until it has formed linkCount links or maxTicks
// is exhausted. A link only forms once one endpoint's device scans (spec
// §4.10), which is a once-per-~30s jittered pulse, not every tick.
func stepUntilLinked(e *Engine, linkCount, maxTicks int) {
	for i := 0; i < maxTicks && len(e.Links) < linkCount; i++ {
		e.Step(0.1)
	}
}

func TestTwoAgentsFormLinkWithinRange(t *testing.T) {
	e := newTestEngine()
	stillAt(e, "alice", geom.Point2D{X: 0, Y: 0})
	stillAt(e, "bob", geom.Point2D{X: 50, Y: 0})

	stepUntilLinked(e, 1, 500)

	if len(e.Links) != 1 {
		t.Fatalf("expected a link to form between agents 50m apart, got %d links", len(e.Links))
	}
}

func TestTwoAgentsOutOfRangeDoNotLink(t *testing.T) {
	e := newTestEngine()
	stillAt(e, "alice", geom.Point2D{X: 0, Y: 0})
	stillAt(e, "bob", geom.Point2D{X: 200, Y: 0})

	e.Step(0.1)

	if len(e.Links) != 0 {
		t.Fatalf("expected no link at 200m, got %d", len(e.Links))
	}
}

func TestHysteresisKeepsLinkAliveBetweenThresholds(t *testing.T) {
	e := newTestEngine()
	stillAt(e, "alice", geom.Point2D{X: 0, Y: 0})
	b := stillAt(e, "bob", geom.Point2D{X: 95, Y: 0})

	stepUntilLinked(e, 1, 500)
	if len(e.Links) != 1 {
		t.Fatalf("expected link formed at 95m")
	}

	// Drift to 105m: past the form threshold but still under the break
	// threshold, so the existing link must persist.
	b.Position = geom.Point2D{X: 105, Y: 0}
	e.Step(0.1)
	if len(e.Links) != 1 {
		t.Fatalf("expected link to persist at 105m (hysteresis band), got %d", len(e.Links))
	}

	// Drift to 115m: past the break threshold.
	b.Position = geom.Point2D{X: 115, Y: 0}
	e.Step(0.1)
	if len(e.Links) != 0 {
		t.Fatalf("expected link broken at 115m, got %d", len(e.Links))
	}
}

func findLinkWith(links []*mesh.Link, d *mesh.Device) *mesh.Link {
	for _, l := range links {
		if l.EndpointA == d || l.EndpointB == d {
			return l
		}
	}
	return nil
}

func TestThreeAgentLineRelaysTwoHops(t *testing.T) {
	e := newTestEngine()
	d1 := stillAt(e, "d1", geom.Point2D{X: 0, Y: 0})
	stillAt(e, "d2", geom.Point2D{X: 50, Y: 0})
	d3 := stillAt(e, "d3", geom.Point2D{X: 100, Y: 0})

	received := make(chan struct{}, 8)
	d3.Device.App.OnEvent = func(name string, detail map[string]any) {
		if name == "message_received" {
			received <- struct{}{}
		}
	}

	stepUntilLinked(e, 2, 500) // form d1-d2 and d2-d3 links
	if len(e.Links) != 2 {
		t.Fatalf("expected a 2-hop line topology, got %d links", len(e.Links))
	}

	l12 := findLinkWith(e.Links, d1.Device)
	if l12 == nil {
		t.Fatalf("expected to find d1's link")
	}

	msg := wire.Packet{
		Version:  2,
		Type:     wire.MessageTypeMessage,
		TTL:      wire.MaxTTL,
		SenderID: d1.Device.PeerID,
		HasRecipient: true,
		RecipientID:  wire.Broadcast,
	}
	l12.Send(msg, d1.Device, e.Now)

	// Advance enough ticks for both hops' latency to elapse and for the
	// relay on d2 to forward onward.
	for i := 0; i < 10; i++ {
		e.Step(0.05)
	}

	select {
	case <-received:
	default:
		t.Fatalf("expected d3 to receive the message relayed through d2")
	}
}

func TestStepAdvancesClockAndTickCount(t *testing.T) {
	e := newTestEngine()
	e.Step(0.5)
	e.Step(0.5)

	if e.TickCount != 2 {
		t.Fatalf("expected tick count 2, got %d", e.TickCount)
	}
	if e.Now != 1.0 {
		t.Fatalf("expected sim clock at 1.0s, got %v", e.Now)
	}
}

func TestStepSurvivesAgentStuckInSealedBuilding(t *testing.T) {
	box := []geom.Point2D{
		{X: -0.02, Y: -0.02}, {X: 0.02, Y: -0.02}, {X: 0.02, Y: 0.02}, {X: -0.02, Y: 0.02},
	}
	b := geom.NewBuilding("b1", "concrete", box, nil)
	env := geom.NewEnvironment([]*geom.Building{&b})
	e := New(env, Config{Bounds: geom.AABB{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50}, Seed: 5})
	a := e.AddAgent("alice", geom.Point2D{})

	for i := 0; i < 100; i++ {
		e.Step(0.1)
	}

	// Regardless of whether it ever escapes the tiny sealed box, the
	// engine must not panic or deadlock across many stuck-recovery
	// escalations; reaching here is the assertion.
	_ = a
}
