// Package line defines the unit of exchange between sources, the
// normalizer, and destinations: an opaque, newline-free byte sequence.
package line

import "fmt"

// Line is a single log line with the trailing newline already stripped.
// It never contains an embedded '\n'.
type Line []byte

// String returns a human readable representation, truncated so that very
// long lines don't flood diagnostic output.
func (l Line) String() string {
	const max = 200
	if len(l) > max {
		return fmt.Sprintf("%q...(%d bytes)", string(l[:max]), len(l))
	}
	return fmt.Sprintf("%q", string(l))
}

// Bytes returns the raw content.
func (l Line) Bytes() []byte {
	return []byte(l)
}
