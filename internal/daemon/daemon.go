// Package daemon provides process-lifecycle helpers for running
// logdevourer in the background: installing/running it as a host-managed
// service via github.com/kardianos/service (the idiomatic Go replacement
// for a manual double-fork), plus the privilege-drop helper the original
// daemonize.py called setguid.
package daemon

import (
	"fmt"

	kservice "github.com/kardianos/service"
)

// Runner adapts a start/stop pair of functions to kardianos/service's
// Interface. Start must return promptly (the Engine's main loop runs on
// its own goroutine); Stop is called with the shutdown request and must
// block only long enough to signal that goroutine.
type Runner struct {
	StartFunc func() error
	StopFunc  func() error
}

func (r *Runner) Start(s kservice.Service) error {
	return r.StartFunc()
}

func (r *Runner) Stop(s kservice.Service) error {
	return r.StopFunc()
}

// Config names the service as the host's service manager sees it.
type Config struct {
	Name        string
	DisplayName string
	Description string
}

// New builds a kardianos/service.Service wrapping start/stop, under the
// given identity. Calling Run on the result blocks until the service
// manager (or, in foreground mode, the controlling terminal) asks it to
// stop.
func New(cfg Config, start, stop func() error) (kservice.Service, error) {
	svcCfg := &kservice.Config{
		Name:        cfg.Name,
		DisplayName: cfg.DisplayName,
		Description: cfg.Description,
	}
	svc, err := kservice.New(&Runner{StartFunc: start, StopFunc: stop}, svcCfg)
	if err != nil {
		return nil, fmt.Errorf("daemon: building service: %w", err)
	}
	return svc, nil
}

