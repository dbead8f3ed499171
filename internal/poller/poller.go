// Package poller wraps a level-triggered readiness primitive
// (golang.org/x/sys/unix.Poll) with the contract the Engine needs: add a
// pollable source, and block until any of them is readable or a timeout
// elapses, tolerating signal interruption.
package poller

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/korbank/logdevourer/internal/source"
)

// Poller multiplexes readiness across every pollable Source registered
// with it. Non-pollable sources (FileSource) are never stored here — they
// are driven by the Engine's tick instead.
type Poller struct {
	byFd map[int]source.Source
}

// New creates an empty Poller.
func New() *Poller {
	return &Poller{byFd: make(map[int]source.Source)}
}

// Add registers src if it has a descriptor and isn't already present
// (identity is by descriptor number). Returns whether it was added.
func (p *Poller) Add(src source.Source) bool {
	fd, ok := src.Fileno()
	if !ok {
		return false
	}
	if _, exists := p.byFd[fd]; exists {
		return false
	}
	p.byFd[fd] = src
	return true
}

// Remove drops src from the poll set, if it is pollable and present.
func (p *Poller) Remove(src source.Source) {
	fd, ok := src.Fileno()
	if !ok {
		return
	}
	delete(p.byFd, fd)
}

// Contains reports whether src is currently registered.
func (p *Poller) Contains(src source.Source) bool {
	fd, ok := src.Fileno()
	if !ok {
		return false
	}
	_, present := p.byFd[fd]
	return present
}

// Count returns the number of registered descriptors.
func (p *Poller) Count() int { return len(p.byFd) }

// Empty reports whether no descriptors are registered.
func (p *Poller) Empty() bool { return len(p.byFd) == 0 }

// Poll blocks up to timeoutMs waiting for any registered descriptor to
// become readable, and returns the sources that are ready. If the
// underlying syscall is interrupted by a signal, Poll returns an empty
// result rather than propagating the error.
func (p *Poller) Poll(timeoutMs int) []source.Source {
	// unix.Poll with an empty fd set still honors the timeout, which is
	// what the Engine wants: it doubles as the tick sleep when nothing
	// pollable is registered yet.
	fds := make([]unix.PollFd, 0, len(p.byFd))
	order := make([]int, 0, len(p.byFd))
	for fd := range p.byFd {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		order = append(order, fd)
	}

	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return nil
	}
	if n <= 0 {
		return nil
	}

	ready := make([]source.Source, 0, n)
	for i, pfd := range fds {
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready = append(ready, p.byFd[order[i]])
		}
	}
	return ready
}
