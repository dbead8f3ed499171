// Package normalizer defines the external collaborator contract the
// Engine consumes: a pure, synchronous, thread-safe mapping from a raw
// Line to a structured Record. How rules are compiled is out of scope —
// this package only provides the interface plus two dependency-free
// implementations useful for running the daemon without an external rule
// compiler wired in.
package normalizer

import (
	"strings"

	"github.com/korbank/logdevourer/internal/line"
)

// Record is a structured result of normalizing one line. Fields carries
// whatever key/value pairs the normalizer extracted; Raw always carries
// the original line, so an identity normalizer and a JSON serializer
// round-trip losslessly.
type Record struct {
	Raw    line.Line
	Fields map[string]string
}

// Normalizer maps a raw line to a structured Record, or reports ok=false
// for an unrecognized line — which the Engine silently drops, per policy.
type Normalizer interface {
	Normalize(l line.Line) (rec Record, ok bool)
}

// Identity wraps every line unchanged into a Record with no extracted
// fields. This is the "identity normalizer" used in the file-tail
// scenario: the daemon becomes a crash-safe line forwarder without
// depending on any rule language.
type Identity struct{}

func (Identity) Normalize(l line.Line) (Record, bool) {
	return Record{Raw: l, Fields: map[string]string{}}, true
}

// KeyValueNormalizer splits a whitespace-separated sequence of key=value
// tokens into structured Fields, in the spirit of the rule-based
// normalizer this daemon is designed against: a minimal, dependency-free
// stand-in for the external rule compiler. A line with no parseable
// key=value token is unrecognized and dropped, per the "unrecognized
// line -> drop" policy (spec.md §7.6).
type KeyValueNormalizer struct{}

func (KeyValueNormalizer) Normalize(l line.Line) (Record, bool) {
	fields := make(map[string]string)
	for _, tok := range strings.Fields(string(l)) {
		i := strings.IndexByte(tok, '=')
		if i <= 0 {
			continue
		}
		fields[tok[:i]] = tok[i+1:]
	}
	if len(fields) == 0 {
		return Record{}, false
	}
	return Record{Raw: l, Fields: fields}, true
}
