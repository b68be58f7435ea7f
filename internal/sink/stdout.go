package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Stdout writes one NDJSON line per event to standard output.
type Stdout struct{}

// NewStdout creates a new stdout sink.
func NewStdout() *Stdout {
	return &Stdout{}
}

// Send writes evt to stdout as a single JSON line.
func (s *Stdout) Send(_ context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// Close is a no-op for the stdout sink.
func (s *Stdout) Close() error {
	return nil
}

// Name returns the sink identifier.
func (s *Stdout) Name() string {
	return "stdout"
}
