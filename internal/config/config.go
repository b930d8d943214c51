package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "gosift.toml"

// Output formats of the validate command.
const (
	OutputPretty = "pretty"
	OutputJSON   = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the CLI configuration.
type Config struct {
	// Language selects the message dictionary (BCP 47 tag, e.g. "en", "ja").
	Language string `toml:"language"`
	Output   string `toml:"output"`
	Color    string `toml:"color"`
	// Jobs bounds concurrent file validation.
	Jobs  int   `toml:"jobs"`
	Serve Serve `toml:"serve"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Serve configures the HTTP server.
type Serve struct {
	Addr         string `toml:"addr"`
	Path         string `toml:"path"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Language: "en",
		Output:   OutputPretty,
		Color:    ColorAuto,
		Jobs:     runtime.GOMAXPROCS(0),
		Serve: Serve{
			Addr:         ":8080",
			Path:         "/validate",
			MaxBodyBytes: 1 << 20,
		},
	}
}

// Find looks for FileName in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest FileName, or the defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks enumerated values and bounds.
func (c Config) Validate() error {
	switch c.Output {
	case OutputPretty, OutputJSON:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", OutputPretty, OutputJSON, c.Output)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never, got %q", c.Color)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.Serve.Path == "" || !strings.HasPrefix(c.Serve.Path, "/") {
		return fmt.Errorf("[serve].path must start with /, got %q", c.Serve.Path)
	}
	if c.Serve.MaxBodyBytes < 0 {
		return fmt.Errorf("[serve].max_body_bytes must not be negative")
	}
	return nil
}
