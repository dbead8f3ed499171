// Command logdevourer runs the log source/sink multiplexing daemon.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/korbank/logdevourer/internal/config"
	kservice "github.com/kardianos/service"

	"github.com/korbank/logdevourer/internal/daemon"
	"github.com/korbank/logdevourer/internal/destination"
	"github.com/korbank/logdevourer/internal/engine"
	"github.com/korbank/logdevourer/internal/logsink"
	"github.com/korbank/logdevourer/internal/normalizer"
	"github.com/korbank/logdevourer/internal/pidfile"
	"github.com/korbank/logdevourer/internal/serializer"
	"github.com/korbank/logdevourer/internal/source"
	"github.com/korbank/logdevourer/internal/version"
)

const serviceName = "logdevourer"

func main() {
	var (
		cfgPath     string
		pidPath     string
		user        string
		group       string
		foreground  bool
		showVersion bool
	)

	flag.StringVar(&cfgPath, "cfg", "/etc/logdevourer/logdevourer.yaml", "Config file path")
	flag.StringVar(&pidPath, "pidfile", "/var/run/logdevourer.pid", "Pid file path")
	flag.StringVar(&user, "user", "", "Drop privileges to this user after startup")
	flag.StringVar(&group, "group", "", "Drop privileges to this group after startup")
	flag.BoolVar(&foreground, "foreground", false, "Run in the foreground instead of via the service manager")
	flag.BoolVar(&showVersion, "version", false, "Display version")
	flag.Parse()

	if showVersion {
		version.PrintAndExit()
	}

	action := "run"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	log := logsink.NewStdout(os.Stdout)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Errf("config: %v", err)
		os.Exit(1)
	}

	switch action {
	case "run", "start":
		runDaemon(cfg, pidPath, user, group, foreground, log)
	case "stop", "restart", "install", "uninstall":
		controlService(action, log)
	case "reload":
		reload(pidPath, log)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q: expected run, start, stop, restart, reload, install, uninstall\n", action)
		os.Exit(2)
	}
}

func runDaemon(cfg *config.Config, pidPath, user, group string, foreground bool, log *logsink.Sink) {
	if user != "" || group != "" {
		if err := daemon.SetUIDGID(user, group); err != nil {
			log.Errf("privilege drop: %v", err)
			os.Exit(3)
		}
	}

	pf, err := pidfile.Open(pidPath)
	if err != nil {
		log.Errf("pidfile: %v", err)
		os.Exit(4)
	}
	pf.Claim()
	defer pf.Close()

	srcs, err := buildSources(cfg, log)
	if err != nil {
		log.Errf("building sources: %v", err)
		os.Exit(1)
	}

	shutdown := make(chan struct{})
	dsts, err := buildDestinations(cfg, shutdown)
	if err != nil {
		log.Errf("building destinations: %v", err)
		os.Exit(1)
	}

	eng := engine.New(srcs, dsts, normalizer.Identity{}, serializer.JSON{},
		engine.WithLogger(log), engine.WithTickMillis(cfg.Options.TickMillis))

	start := func() error {
		go func() {
			if err := eng.Run(shutdown); err != nil {
				log.Critf("engine: %v", err)
				os.Exit(5)
			}
		}()
		return nil
	}
	stop := func() error {
		close(shutdown)
		return nil
	}

	if foreground {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		start()
		<-sigCh
		stop()
		return
	}

	svc, err := daemon.New(daemon.Config{
		Name:        serviceName,
		DisplayName: "logdevourer",
		Description: "log source/sink multiplexing daemon",
	}, start, stop)
	if err != nil {
		log.Errf("service: %v", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		log.Errf("service: %v", err)
		os.Exit(1)
	}
}

func buildSources(cfg *config.Config, log *logsink.Sink) ([]source.Source, error) {
	diag := engine.NewSourceDiag(log)
	var srcs []source.Source
	for _, s := range cfg.Sources {
		switch s.Proto {
		case config.SourceFile:
			srcs = append(srcs, source.NewFileSource(s.Path, cfg.Options.StateDir, diag))
		case config.SourceUDP:
			srcs = append(srcs, source.NewUDPSource(s.Host, s.Port, diag))
		case config.SourceUNIX:
			srcs = append(srcs, source.NewUNIXSource(s.Path, diag))
		case config.SourceStdin:
			srcs = append(srcs, source.NewFileHandleSource("stdin", os.Stdin, diag))
		default:
			return nil, fmt.Errorf("unhandled source proto %q", s.Proto)
		}
	}
	return srcs, nil
}

func buildDestinations(cfg *config.Config, shutdown <-chan struct{}) ([]destination.Destination, error) {
	var dsts []destination.Destination
	for _, d := range cfg.Destinations {
		switch d.Proto {
		case config.DestStdout:
			dsts = append(dsts, destination.NewStdout(os.Stdout))
		case config.DestTCP:
			dsts = append(dsts, destination.NewTCP(d.Host, d.Port, shutdown))
		case config.DestUDP:
			dst, err := destination.NewUDP(d.Host, d.Port)
			if err != nil {
				return nil, err
			}
			dsts = append(dsts, dst)
		case config.DestUNIX:
			dst, err := destination.NewUnixDgram(d.Path, d.Retry, shutdown)
			if err != nil {
				return nil, err
			}
			dsts = append(dsts, dst)
		default:
			return nil, fmt.Errorf("unhandled destination proto %q", d.Proto)
		}
	}
	return dsts, nil
}

func controlService(action string, log *logsink.Sink) {
	svc, err := daemon.New(daemon.Config{
		Name:        serviceName,
		DisplayName: "logdevourer",
		Description: "log source/sink multiplexing daemon",
	}, func() error { return nil }, func() error { return nil })
	if err != nil {
		log.Errf("service: %v", err)
		os.Exit(1)
	}
	if err := kservice.Control(svc, action); err != nil {
		log.Errf("service %s: %v", action, err)
		os.Exit(1)
	}
}

// reload sends SIGHUP to the daemon named by the pid file. The
// normalizer's rule language is out of scope, so this only delivers the
// signal; acting on it is the normalizer implementation's responsibility.
func reload(pidPath string, log *logsink.Sink) {
	b, err := os.ReadFile(pidPath)
	if err != nil {
		log.Errf("reload: reading pidfile: %v", err)
		os.Exit(1)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		log.Errf("reload: parsing pidfile: %v", err)
		os.Exit(1)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		log.Errf("reload: finding process %d: %v", pid, err)
		os.Exit(1)
	}
	if err := proc.Signal(syscall.SIGHUP); err != nil {
		log.Errf("reload: signaling process %d: %v", pid, err)
		os.Exit(1)
	}
}
