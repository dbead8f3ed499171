// Package engine implements the source/sink multiplexing core: the
// single-threaded, cooperative readiness loop that drains Sources,
// normalizes and serializes each line, and fans it out to Destinations in
// configured order.
package engine

import (
	"fmt"

	"github.com/korbank/logdevourer/internal/constants"
	"github.com/korbank/logdevourer/internal/destination"
	"github.com/korbank/logdevourer/internal/errors"
	"github.com/korbank/logdevourer/internal/line"
	"github.com/korbank/logdevourer/internal/normalizer"
	"github.com/korbank/logdevourer/internal/poller"
	"github.com/korbank/logdevourer/internal/serializer"
	"github.com/korbank/logdevourer/internal/source"
)

// Logger is the diagnostic sink the Engine reports through. It is a
// superset of source.Diag so the Engine can hand sources a thin adapter
// without depending on any concrete logging implementation.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errf(format string, args ...interface{})
	Critf(format string, args ...interface{})
}

// nopLogger discards everything. Used when no logger is wired, mainly in
// tests.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errf(string, ...interface{})   {}
func (nopLogger) Critf(string, ...interface{})  {}

// diagAdapter lets a Logger double as every Source's Diag. NewSourceDiag
// is exported so the caller assembling Sources can pass the same Logger
// the Engine itself was built with.
type diagAdapter struct{ l Logger }

// NewSourceDiag adapts l to the narrow source.Diag interface sources take
// at construction time.
func NewSourceDiag(l Logger) source.Diag {
	return diagAdapter{l}
}

func (d diagAdapter) Warnf(id source.ID, format string, args ...interface{}) {
	d.l.Warnf("%s: "+format, append([]interface{}{id}, args...)...)
}

func (d diagAdapter) Errf(id source.ID, format string, args ...interface{}) {
	d.l.Errf("%s: "+format, append([]interface{}{id}, args...)...)
}

// TickMillis is the default poll/tick period, per spec.md §4.5.
const TickMillis = constants.DefaultTickMillis

// Engine owns every Source and Destination for the life of the process
// and runs the steady-state readiness loop described in spec.md §4.5. It
// is single-threaded and cooperative: Run returns only when the shutdown
// channel is closed or a tick reports a fatal error.
type Engine struct {
	sources      []source.Source
	destinations []destination.Destination
	normalizer   normalizer.Normalizer
	serializer   serializer.Serializer
	poller       *poller.Poller
	log          Logger
	tickMillis   int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger wires the Logger the Engine reports through. Sources keep
// the Diag they were constructed with; NewSourceDiag adapts the same
// Logger for them.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTickMillis overrides the default 100ms tick period.
func WithTickMillis(ms int) Option {
	return func(e *Engine) { e.tickMillis = ms }
}

// New constructs an Engine from its configured sources, destinations,
// normalizer and serializer. Sources are not yet opened; call Run to
// start the main loop.
func New(srcs []source.Source, dsts []destination.Destination, norm normalizer.Normalizer, ser serializer.Serializer, opts ...Option) *Engine {
	e := &Engine{
		sources:      srcs,
		destinations: dsts,
		normalizer:   norm,
		serializer:   ser,
		poller:       poller.New(),
		log:          nopLogger{},
		tickMillis:   TickMillis,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run opens every source, registers pollable ones with the Poller, then
// runs the steady-state loop until shutdown is closed. It always flushes
// every source and closes every destination before returning, regardless
// of how it exits.
func (e *Engine) Run(shutdown <-chan struct{}) error {
	for _, src := range e.sources {
		e.openSource(src)
	}

	defer func() {
		if err := e.shutdown(); err != nil {
			e.log.Errf("shutdown: %v", err)
		}
	}()

	for {
		select {
		case <-shutdown:
			return nil
		default:
		}

		if err := e.tick(); err != nil {
			return err
		}

		select {
		case <-shutdown:
			return nil
		default:
		}
	}
}

// tick runs one iteration of the steady-state loop (spec.md §4.5 steps
// 1-5). A non-nil return is a fatal, invariant-violating condition that
// must bring the Engine down (step 8 of the error taxonomy); all other
// failures are handled internally and never propagate here.
func (e *Engine) tick() error {
	ready := e.poller.Poll(e.tickMillis)

	for _, src := range e.sources {
		if src.State() == source.Unopened {
			// Retried at next tick, per the error taxonomy: a recoverable
			// open failure is not fatal and not logged again here (Open
			// already logged it via diag).
			e.openSource(src)
			continue
		}
		if src.State() != source.Open {
			continue
		}
		if !src.IsPollable() {
			ready = append(ready, src)
		}
	}

	for _, src := range ready {
		if src.State() != source.Open {
			continue
		}
		lines, err := src.ReadLines()
		for _, l := range lines {
			if ferr := e.dispatch(l); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			e.log.Errf("%s: read error, closing source: %v", src.ID(), err)
			e.poller.Remove(src)
			src.Close()
			continue
		}
	}

	for _, src := range e.sources {
		if src.State() != source.Open {
			continue
		}
		if src.RotationNeeded() {
			if err := src.Reopen(); err != nil {
				e.log.Warnf("%s: reopen failed: %v", src.ID(), err)
				continue
			}
			// Sources that become pollable after a reopen would need
			// re-registration here; none currently do (kept for
			// symmetry with spec.md §4.5 step 4).
			if src.IsPollable() {
				e.poller.Add(src)
			}
		}
	}

	for _, src := range e.sources {
		if src.State() != source.Open {
			continue
		}
		if err := src.Flush(); err != nil {
			e.log.Warnf("%s: flush failed: %v", src.ID(), err)
		}
	}

	return nil
}

// dispatch normalizes, serializes, and fans a single raw line out to every
// destination in configured order. An unrecognized line is silently
// dropped (spec.md §7.6). Every non-nil Send error is fatal to the Engine
// in practice: only the STDOUT destination ever returns one (every other
// variant swallows or retries internally), and a broken STDOUT is an
// unrecoverable invariant violation per spec.md §7.8.
func (e *Engine) dispatch(l line.Line) error {
	rec, ok := e.normalizer.Normalize(l)
	if !ok {
		return nil
	}

	out, err := e.serializer.Serialize(rec)
	if err != nil {
		e.log.Warnf("serialize failed, dropping line: %v", err)
		return nil
	}

	for _, dst := range e.destinations {
		if err := dst.Send(out); err != nil {
			e.log.Critf("%s: fatal send error: %v", dst.String(), err)
			return fmt.Errorf("%s: fatal send error: %w", dst.String(), err)
		}
	}
	return nil
}

// openSource opens src if it is not already Open, registering it with the
// Poller when it becomes pollable. A recoverable open failure leaves it
// Unopened and is logged at warning, per the error taxonomy.
func (e *Engine) openSource(src source.Source) {
	if src.State() == source.Open {
		return
	}
	if err := src.Open(); err != nil {
		e.log.Warnf("%s: open failed: %v", src.ID(), err)
		return
	}
	if src.State() == source.Open && src.IsPollable() {
		e.poller.Add(src)
	}
}

// shutdown flushes every source and closes every destination. It always
// makes a best effort across all of them — one failure never skips the
// rest — and aggregates every failure into the returned error rather than
// stopping at the first one.
func (e *Engine) shutdown() error {
	errs := errors.NewMultiError()
	for _, src := range e.sources {
		if src.State() == source.Open {
			if err := src.Flush(); err != nil {
				e.log.Warnf("%s: flush on shutdown failed: %v", src.ID(), err)
				errs.Add(fmt.Errorf("%s: flush: %w", src.ID(), err))
			}
		}
		if err := src.Close(); err != nil {
			e.log.Warnf("%s: close on shutdown failed: %v", src.ID(), err)
			errs.Add(fmt.Errorf("%s: close: %w", src.ID(), err))
		}
	}
	for _, dst := range e.destinations {
		if err := dst.Close(); err != nil {
			e.log.Warnf("%s: close on shutdown failed: %v", dst.String(), err)
			errs.Add(fmt.Errorf("%s: close: %w", dst.String(), err))
		}
	}
	return errs.ErrorOrNil()
}
