package sink

import (
	"fmt"

	"github.com/callebtc/bitchat-simulator-sub000/internal/config"
)

// New creates a Sink based on the configured type.
func New(cfg config.SinkConfig) (Sink, error) {
	switch cfg.Type {
	case "stdout":
		return NewStdout(), nil
	case "file":
		return NewFile(cfg.Path)
	case "websocket":
		return NewWebSocket(cfg.Addr)
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Type)
	}
}
