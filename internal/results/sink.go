// File: internal/results/sink.go

// Package results persists one structured record per processed job.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/json-iterator/go"
)

// Record is the terminal outcome of one job. Answer is always present — the
// empty string when extraction found nothing — so the output has exactly one
// line per job attempted.
type Record struct {
	GPTURL   string `json:"gpt_url"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	TS       int64  `json:"ts"`
}

// Sink appends records to a JSONL log. The log is append-only across runs:
// re-running a batch against the same target adds lines, never mutates or
// removes prior ones.
type Sink struct {
	mu   sync.Mutex
	path string
}

// NewSink returns a sink writing to path. Parent directories are created; the
// file itself is created lazily on first append.
func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results dir: %w", err)
	}
	return &Sink{path: path}, nil
}

// Path returns the destination file path.
func (s *Sink) Path() string { return s.path }

// Append serializes the record as a single JSONL line and appends it. The
// file is opened O_APPEND per call so concurrent runs interleave whole lines
// rather than corrupting each other.
func (s *Sink) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}
