// Package logsink is the daemon's structured diagnostic sink: the eight
// syslog severities and standard facility taxonomy, backed either by a
// real syslog transport or by a buffered file/stdout writer in the
// teacher's own day-rotated style, for foreground and debug runs.
package logsink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/RackSec/srslog"
)

// Severity is one of the eight standard syslog severities.
type Severity int

const (
	Emerg Severity = iota
	Alert
	Crit
	Err
	Warning
	Notice
	Info
	Debug
)

func (s Severity) String() string {
	switch s {
	case Emerg:
		return "emerg"
	case Alert:
		return "alert"
	case Crit:
		return "crit"
	case Err:
		return "err"
	case Warning:
		return "warning"
	case Notice:
		return "notice"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Facility is one of the standard syslog facilities, matching the taxonomy
// named in logging_handlers.py.
type Facility string

const (
	FacilityAuth     Facility = "auth"
	FacilityAuthpriv Facility = "authpriv"
	FacilityCron     Facility = "cron"
	FacilityDaemon   Facility = "daemon"
	FacilityFTP      Facility = "ftp"
	FacilityKern     Facility = "kern"
	FacilityLocal0   Facility = "local0"
	FacilityLocal1   Facility = "local1"
	FacilityLocal2   Facility = "local2"
	FacilityLocal3   Facility = "local3"
	FacilityLocal4   Facility = "local4"
	FacilityLocal5   Facility = "local5"
	FacilityLocal6   Facility = "local6"
	FacilityLocal7   Facility = "local7"
	FacilityLpr      Facility = "lpr"
	FacilityMail     Facility = "mail"
	FacilityNews     Facility = "news"
	FacilitySyslog   Facility = "syslog"
	FacilityUser     Facility = "user"
	FacilityUucp     Facility = "uucp"
)

var srslogFacilities = map[Facility]srslog.Priority{
	FacilityAuth:     srslog.LOG_AUTH,
	FacilityAuthpriv: srslog.LOG_AUTHPRIV,
	FacilityCron:     srslog.LOG_CRON,
	FacilityDaemon:   srslog.LOG_DAEMON,
	FacilityFTP:      srslog.LOG_FTP,
	FacilityKern:     srslog.LOG_KERN,
	FacilityLocal0:   srslog.LOG_LOCAL0,
	FacilityLocal1:   srslog.LOG_LOCAL1,
	FacilityLocal2:   srslog.LOG_LOCAL2,
	FacilityLocal3:   srslog.LOG_LOCAL3,
	FacilityLocal4:   srslog.LOG_LOCAL4,
	FacilityLocal5:   srslog.LOG_LOCAL5,
	FacilityLocal6:   srslog.LOG_LOCAL6,
	FacilityLocal7:   srslog.LOG_LOCAL7,
	FacilityLpr:      srslog.LOG_LPR,
	FacilityMail:     srslog.LOG_MAIL,
	FacilityNews:     srslog.LOG_NEWS,
	FacilitySyslog:   srslog.LOG_SYSLOG,
	FacilityUser:     srslog.LOG_USER,
	FacilityUucp:     srslog.LOG_UUCP,
}

var srslogSeverities = map[Severity]srslog.Priority{
	Emerg:   srslog.LOG_EMERG,
	Alert:   srslog.LOG_ALERT,
	Crit:    srslog.LOG_CRIT,
	Err:     srslog.LOG_ERR,
	Warning: srslog.LOG_WARNING,
	Notice:  srslog.LOG_NOTICE,
	Info:    srslog.LOG_INFO,
	Debug:   srslog.LOG_DEBUG,
}

// Sink is the engine.Logger implementation. It is safe for concurrent use.
type Sink struct {
	mu  sync.Mutex
	out logWriter
}

// logWriter abstracts the two backends a Sink can be built on: a live
// syslog connection, or a local bufio writer.
type logWriter interface {
	write(sev Severity, message string)
}

// NewSyslog dials a syslog daemon over network (udp/tcp) or a local
// socket and returns a Sink backed by it. srslog tolerates the log
// daemon being briefly unavailable at write time, which is the one
// property logging_handlers.py calls out explicitly about Python's
// SysLogHandler.
func NewSyslog(network, addr string, facility Facility, tag string) (*Sink, error) {
	fac, ok := srslogFacilities[facility]
	if !ok {
		return nil, fmt.Errorf("logsink: unknown facility %q", facility)
	}
	w, err := srslog.Dial(network, addr, fac|srslog.LOG_INFO, tag)
	if err != nil {
		return nil, fmt.Errorf("logsink: dialing syslog: %w", err)
	}
	return &Sink{out: &syslogWriter{w: w}}, nil
}

// NewStdout returns a Sink that writes to w, buffered, one
// "YYYYMMDD-HHMMSS|SEVERITY|message" line per call.
func NewStdout(w io.Writer) *Sink {
	return &Sink{out: newFileWriter(bufio.NewWriter(w))}
}

// NewFile returns a Sink that writes day-rotated log files under dir, in
// the teacher's own logger package's style: one file per calendar day,
// created on first write or on day rollover, buffered and flushed per
// call.
func NewFile(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logsink: creating %s: %w", dir, err)
	}
	return &Sink{out: &dayRotatingWriter{dir: dir}}, nil
}

func (s *Sink) logf(sev Severity, format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.write(sev, fmt.Sprintf(format, args...))
}

func (s *Sink) Debugf(format string, args ...interface{})   { s.logf(Debug, format, args...) }
func (s *Sink) Infof(format string, args ...interface{})    { s.logf(Info, format, args...) }
func (s *Sink) Warnf(format string, args ...interface{})    { s.logf(Warning, format, args...) }
func (s *Sink) Errf(format string, args ...interface{})     { s.logf(Err, format, args...) }
func (s *Sink) Critf(format string, args ...interface{})    { s.logf(Crit, format, args...) }
func (s *Sink) Alertf(format string, args ...interface{})   { s.logf(Alert, format, args...) }
func (s *Sink) Emergf(format string, args ...interface{})   { s.logf(Emerg, format, args...) }
func (s *Sink) Noticef(format string, args ...interface{})  { s.logf(Notice, format, args...) }

// Close releases any resources held by the backend (the syslog
// connection, or a buffered file handle).
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type syslogWriter struct {
	w *srslog.Writer
}

func (sw *syslogWriter) write(sev Severity, message string) {
	pri := srslogSeverities[sev]
	switch {
	case pri <= srslog.LOG_ERR:
		sw.w.Err(message)
	case pri == srslog.LOG_WARNING:
		sw.w.Warning(message)
	case pri == srslog.LOG_NOTICE:
		sw.w.Notice(message)
	case pri == srslog.LOG_INFO:
		sw.w.Info(message)
	default:
		sw.w.Debug(message)
	}
}

func (sw *syslogWriter) Close() error { return sw.w.Close() }

// fileWriter is the simple, non-rotating backend used by NewStdout.
type fileWriter struct {
	w *bufio.Writer
}

func newFileWriter(w *bufio.Writer) *fileWriter { return &fileWriter{w: w} }

func (fw *fileWriter) write(sev Severity, message string) {
	fmt.Fprintf(fw.w, "%s|%s|%s\n", time.Now().Format("20060102-150405"), strings.ToUpper(sev.String()), message)
	fw.w.Flush()
}

// dayRotatingWriter opens a new "YYYYMMDD.log" file in dir whenever the
// calendar day changes, matching the teacher's own logger package.
type dayRotatingWriter struct {
	dir      string
	fd       *os.File
	w        *bufio.Writer
	lastDate string
}

func (d *dayRotatingWriter) write(sev Severity, message string) {
	now := time.Now()
	dateStr := now.Format("20060102")
	if dateStr != d.lastDate {
		d.rotate(dateStr)
	}
	if d.w == nil {
		return
	}
	fmt.Fprintf(d.w, "%s|%s|%s\n", now.Format("20060102-150405"), strings.ToUpper(sev.String()), message)
	d.w.Flush()
}

func (d *dayRotatingWriter) rotate(dateStr string) {
	if d.fd != nil {
		d.w.Flush()
		d.fd.Close()
	}
	path := fmt.Sprintf("%s/%s.log", d.dir, dateStr)
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		d.fd, d.w = nil, nil
		return
	}
	d.fd = fd
	d.w = bufio.NewWriter(fd)
	d.lastDate = dateStr
}

func (d *dayRotatingWriter) Close() error {
	if d.w != nil {
		d.w.Flush()
	}
	if d.fd != nil {
		return d.fd.Close()
	}
	return nil
}
