// Package config loads the YAML document that describes a running
// daemon's sources, destinations, and options, and normalizes its
// dynamically-shaped entries (bare strings or mappings) into the closed
// tagged variants the core consumes. The core itself never sees YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	ldErrors "github.com/korbank/logdevourer/internal/errors"
)

// SourceProto is the closed set of source protocols a SourceSpec can
// name.
type SourceProto string

const (
	SourceFile  SourceProto = "file"
	SourceUDP   SourceProto = "udp"
	SourceUNIX  SourceProto = "unix"
	SourceStdin SourceProto = "stdin"
)

// DestinationProto is the closed set of destination protocols a
// DestinationSpec can name.
type DestinationProto string

const (
	DestStdout DestinationProto = "stdout"
	DestTCP    DestinationProto = "tcp"
	DestUDP    DestinationProto = "udp"
	DestUNIX   DestinationProto = "unix"
)

// SourceSpec is one normalized source entry.
type SourceSpec struct {
	Proto SourceProto
	Path  string // FileSource, UNIXSource
	Host  string // UDPSource, default "" (any)
	Port  int    // UDPSource
}

// DestinationSpec is one normalized destination entry.
type DestinationSpec struct {
	Proto DestinationProto
	Host  string // TCP, UDP
	Port  int    // TCP, UDP
	Path  string // UNIX
	Retry bool   // UNIX only, default true
}

// Options holds the tunables under the top-level "options" key.
type Options struct {
	Rulebase   string
	StateDir   string
	TickMillis int
}

const defaultTickMillis = 100

// Config is the fully normalized configuration the Engine is assembled
// from.
type Config struct {
	Sources      []SourceSpec
	Destinations []DestinationSpec
	Options      Options
}

// rawConfig mirrors the YAML document's literal shape before
// normalization: sources and destinations are left as interface{} because
// each entry may be a bare string or a mapping.
type rawConfig struct {
	Sources      []interface{} `yaml:"sources"`
	Destinations []interface{} `yaml:"destinations"`
	Options      rawOptions    `yaml:"options"`
}

type rawOptions struct {
	Rulebase   string `yaml:"rulebase"`
	StateDir   string `yaml:"state_dir"`
	TickMillis int    `yaml:"tick_ms"`
}

// Load reads and normalizes the YAML config at path. Any unrecognized
// shape or missing required field is a non-zero-exit config error per the
// error taxonomy — Load never guesses.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, ldErrors.Wrapf(ldErrors.ErrInvalidConfig, "config: parsing %s: %v", path, err)
	}

	cfg := &Config{
		Options: Options{
			Rulebase:   raw.Options.Rulebase,
			StateDir:   raw.Options.StateDir,
			TickMillis: raw.Options.TickMillis,
		},
	}
	if cfg.Options.TickMillis <= 0 {
		cfg.Options.TickMillis = defaultTickMillis
	}
	if cfg.Options.StateDir == "" {
		return nil, ldErrors.Wrap(ldErrors.ErrMissingConfig, "config: options.state_dir is required")
	}

	for i, v := range raw.Sources {
		spec, err := normalizeSource(v)
		if err != nil {
			return nil, fmt.Errorf("config: sources[%d]: %w", i, err)
		}
		cfg.Sources = append(cfg.Sources, spec)
	}

	for i, v := range raw.Destinations {
		spec, err := normalizeDestination(v)
		if err != nil {
			return nil, fmt.Errorf("config: destinations[%d]: %w", i, err)
		}
		cfg.Destinations = append(cfg.Destinations, spec)
	}

	return cfg, nil
}

func normalizeSource(v interface{}) (SourceSpec, error) {
	if s, ok := v.(string); ok {
		if s == "" {
			return SourceSpec{}, fmt.Errorf("empty source path")
		}
		return SourceSpec{Proto: SourceFile, Path: s}, nil
	}

	m, ok := asMap(v)
	if !ok {
		return SourceSpec{}, fmt.Errorf("expected a string path or a mapping, got %T", v)
	}

	proto := strings.ToLower(stringField(m, "proto"))
	switch SourceProto(proto) {
	case SourceUDP:
		port, ok := intField(m, "port")
		if !ok {
			return SourceSpec{}, fmt.Errorf("udp source requires \"port\"")
		}
		return SourceSpec{Proto: SourceUDP, Host: stringField(m, "host"), Port: port}, nil
	case SourceUNIX:
		path := stringField(m, "path")
		if path == "" {
			return SourceSpec{}, fmt.Errorf("unix source requires \"path\"")
		}
		return SourceSpec{Proto: SourceUNIX, Path: path}, nil
	case SourceStdin:
		return SourceSpec{Proto: SourceStdin}, nil
	default:
		return SourceSpec{}, fmt.Errorf("unrecognized source proto %q", proto)
	}
}

func normalizeDestination(v interface{}) (DestinationSpec, error) {
	if s, ok := v.(string); ok {
		if strings.EqualFold(s, "stdout") {
			return DestinationSpec{Proto: DestStdout}, nil
		}
		return DestinationSpec{}, fmt.Errorf("unrecognized bare destination %q", s)
	}

	m, ok := asMap(v)
	if !ok {
		return DestinationSpec{}, fmt.Errorf("expected \"stdout\" or a mapping, got %T", v)
	}

	proto := strings.ToLower(stringField(m, "proto"))
	switch DestinationProto(proto) {
	case DestStdout:
		return DestinationSpec{Proto: DestStdout}, nil
	case DestTCP:
		host := stringField(m, "host")
		port, ok := intField(m, "port")
		if !ok {
			return DestinationSpec{}, fmt.Errorf("tcp destination requires \"port\"")
		}
		if host == "" {
			return DestinationSpec{}, fmt.Errorf("tcp destination requires \"host\"")
		}
		return DestinationSpec{Proto: DestTCP, Host: host, Port: port}, nil
	case DestUDP:
		host := stringField(m, "host")
		port, ok := intField(m, "port")
		if !ok {
			return DestinationSpec{}, fmt.Errorf("udp destination requires \"port\"")
		}
		if host == "" {
			return DestinationSpec{}, fmt.Errorf("udp destination requires \"host\"")
		}
		return DestinationSpec{Proto: DestUDP, Host: host, Port: port}, nil
	case DestUNIX:
		path := stringField(m, "path")
		if path == "" {
			return DestinationSpec{}, fmt.Errorf("unix destination requires \"path\"")
		}
		retry := true
		if r, ok := m["retry"]; ok {
			b, ok := r.(bool)
			if !ok {
				return DestinationSpec{}, fmt.Errorf("\"retry\" must be a boolean")
			}
			retry = b
		}
		return DestinationSpec{Proto: DestUNIX, Path: path, Retry: retry}, nil
	default:
		return DestinationSpec{}, fmt.Errorf("unrecognized destination proto %q", proto)
	}
}

// asMap coerces a decoded YAML mapping node out of v. yaml.v3 decodes
// mappings into map[string]interface{} when unmarshaled into an
// interface{}, but map[interface{}]interface{} is accepted too for
// robustness against hand-built test fixtures.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intField(m map[string]interface{}, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
