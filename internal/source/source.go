// Package source implements the Source side of the multiplexing engine:
// FileSource, UDPSource, UNIXSource, and FileHandleSource, each exposing a
// single narrow capability interface instead of an open inheritance
// hierarchy.
package source

import "github.com/korbank/logdevourer/internal/line"

// ID is the stable identity of a source used for logging: an absolute path
// for a FileSource, or "proto:host:port" / "proto:path" for a socket
// source.
type ID string

// State is the lifecycle state of a Source.
type State int

const (
	// Unopened is the initial state, and the state a Source returns to
	// after a recoverable open failure.
	Unopened State = iota
	// Open means the Source holds a live descriptor.
	Open
	// Closed is a terminal state reached only via explicit teardown.
	Closed
)

// Source is the narrow capability contract every source variant satisfies.
// Implementations must never panic on a recoverable I/O condition; fatal,
// unrecoverable errors are reported by ReadLines's error return, and the
// Engine closes the source and keeps running.
type Source interface {
	// ID returns the stable identity of this source, for logging.
	ID() ID

	// Open is idempotent. It may leave the source Unopened on a
	// recoverable error (missing file, bind conflict); it never returns
	// an error for a condition that's expected to clear up on retry.
	Open() error

	// Fileno returns the kernel descriptor once Open, and ok=false when
	// Unopened or Closed.
	Fileno() (fd int, ok bool)

	// IsPollable reports whether readiness on Fileno is meaningful under
	// the platform's readiness primitive. False for regular files.
	IsPollable() bool

	// RotationNeeded is non-trivial only for FileSource; other variants
	// default to false.
	RotationNeeded() bool

	// Reopen handles rotation/truncation. Default is a no-op.
	Reopen() error

	// Flush persists any durable state (FileSource's PositionStore).
	// Default is a no-op.
	Flush() error

	// ReadLines drains all currently available complete lines without
	// blocking. It may leave a partial line buffered internally. A
	// non-nil error is fatal to this source only.
	ReadLines() ([]line.Line, error)

	// Close releases held resources. Idempotent.
	Close() error

	// State reports the current lifecycle state.
	State() State
}
