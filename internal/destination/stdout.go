package destination

import (
	"bufio"
	"fmt"
	"io"

	"github.com/korbank/logdevourer/internal/line"
)

// Stdout writes every record to an underlying writer (os.Stdout in
// production, anything else in tests) and flushes immediately. Any I/O
// error here is fatal to the whole process — this is the one destination
// whose failure the Engine does not try to route around.
type Stdout struct {
	w *bufio.Writer
}

// NewStdout wraps w (typically os.Stdout).
func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: bufio.NewWriter(w)}
}

func (s *Stdout) Send(rec line.Line) error {
	if _, err := s.w.Write(rec); err != nil {
		return fmt.Errorf("stdout write: %w", err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("stdout write: %w", err)
	}
	return s.w.Flush()
}

func (s *Stdout) Close() error { return s.w.Flush() }

func (s *Stdout) String() string { return "stdout" }
