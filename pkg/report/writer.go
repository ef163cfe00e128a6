package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/itohio/comfort/pkg/module"
)

var _ module.Sink = (*Writer)(nil)

// Writer publishes readings as report lines.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Report implements module.Sink.
func (w *Writer) Report(r module.Reading) error {
	line := FormatLine(r) + "\n"

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.w, line); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
