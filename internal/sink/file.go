package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File appends one NDJSON line per event to a log file.
type File struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewFile creates a new file sink writing to path, creating parent
// directories as needed.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file sink path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	return &File{path: path, file: f}, nil
}

// Send appends evt to the file as a single JSON line.
func (f *File) Send(_ context.Context, evt Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = f.file.Write(append(data, '\n'))
	return err
}

// Close closes the underlying file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// Name returns the sink identifier.
func (f *File) Name() string {
	return fmt.Sprintf("file:%s", f.path)
}
