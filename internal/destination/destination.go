// Package destination implements the Destination side of the
// multiplexing engine: STDOUT, TCP (reconnecting), UDP (fire-and-forget),
// and UNIX-dgram (retrying or fire-and-forget).
package destination

import "github.com/korbank/logdevourer/internal/line"

// Destination is the narrow capability contract every destination
// variant satisfies. Send appends a newline terminator to the given
// serialized record and transmits it according to the variant's policy.
type Destination interface {
	// Send enqueues-or-transmits a single serialized record. An error is
	// only ever returned by the STDOUT destination, where it is fatal to
	// the process; every other variant swallows or retries transient
	// errors internally per its documented policy.
	Send(rec line.Line) error

	// Close releases held resources (connections, sockets).
	Close() error

	// String returns a human-readable identity for logging.
	String() string
}
