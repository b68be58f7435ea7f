// Package sink provides simulation event output destinations: stdout,
// NDJSON file, and websocket broadcast.
package sink

import "context"

// Event is a single simulation event as published on the engine's bus
// (spec §6): a tick, a connection forming/breaking, a packet
// transmitted/relayed/received, or a peer announcement.
type Event struct {
	Timestamp float64        `json:"timestamp"`
	Topic     string         `json:"topic"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Sink defines the interface for simulation event output destinations.
type Sink interface {
	// Send forwards an event to the destination. Returns an error if
	// the event cannot be delivered.
	Send(ctx context.Context, evt Event) error

	// Close cleanly shuts down the sink and releases any resources.
	Close() error

	// Name returns a unique identifier for this sink.
	Name() string
}
