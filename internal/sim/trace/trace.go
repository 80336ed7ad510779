// Package trace is the JSON-lines operational trace sink: every
// notification, acceptance, rejection, cancellation, and registry
// transition the dispatcher reports becomes one line. Grounded on the
// structured logging.info(...) progress lines scattered through the
// Python reference's world.py/courier.py, restructured here as one
// event type per line instead of free-form log text.
package trace

import (
	"fmt"
	"os"
	"sync"

	"github.com/bitly/go-simplejson"
)

// Sink writes one JSON object per Trace call to an underlying file,
// newline-delimited. Safe for concurrent use, though the simulator's
// own virtual-time model never calls Trace from two goroutines at
// once (see internal/sim/vtime) — the mutex guards against a future
// caller that isn't bound by that guarantee (e.g. a post-run log
// scraper running alongside a live sink).
type Sink struct {
	mu   sync.Mutex
	file *os.File
}

// Open creates (or truncates) the trace file at path.
func Open(path string) (*Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	return &Sink{file: file}, nil
}

// Trace appends one JSON line built from event and fields.
func (s *Sink) Trace(event string, fields map[string]any) {
	payload := simplejson.New()
	payload.Set("event", event)
	for k, v := range fields {
		payload.Set(k, v)
	}

	line, err := payload.MarshalJSON()
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Write(line)
	s.file.Write([]byte("\n"))
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	return s.file.Close()
}
