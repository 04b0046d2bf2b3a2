package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Color modes of the diagnostic printer.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents a cubelang.yaml file. Every section is optional.
type Config struct {
	Cube    CubeConfig    `yaml:"cube"`
	Display DisplayConfig `yaml:"display"`
	Run     RunConfig     `yaml:"run"`
	Log     LogConfig     `yaml:"log"`
}

type CubeConfig struct {
	// Size is the number of layers along every edge of the cube.
	Size int `yaml:"size,omitempty"`
}

type DisplayConfig struct {
	// Color is one of auto, always or never. Auto colors output only when
	// stderr is a terminal.
	Color string `yaml:"color,omitempty"`

	// MaxWidth bounds the length of printed source lines and move lines.
	MaxWidth int `yaml:"max_width,omitempty"`
}

type RunConfig struct {
	// Timeout limits a single run, e.g. "30s" or "2m". Zero disables it.
	Timeout string `yaml:"timeout,omitempty"`
}

type LogConfig struct {
	Verbose bool `yaml:"verbose,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a cubelang.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses cubelang.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for a configuration file starting from dir and
// walking up to parent directories. It returns an empty path and a nil
// error when there is none.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Cube.Size < 0 || c.Cube.Size == 1 {
		return fmt.Errorf("%s: cube.size must be at least 2, got %d", path, c.Cube.Size)
	}
	switch c.Display.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: display.color must be one of auto, always, never; got %q", path, c.Display.Color)
	}
	if c.Display.MaxWidth < 0 {
		return fmt.Errorf("%s: display.max_width must not be negative", path)
	}
	if c.Run.Timeout != "" {
		d, err := time.ParseDuration(c.Run.Timeout)
		if err != nil {
			return fmt.Errorf("%s: run.timeout: %w", path, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: run.timeout must not be negative", path)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Cube.Size == 0 {
		c.Cube.Size = DefaultCubeSize
	}
	if c.Display.Color == "" {
		c.Display.Color = ColorAuto
	}
	if c.Display.MaxWidth == 0 {
		c.Display.MaxWidth = DefaultMaxWidth
	}
	if c.Run.Timeout == "" {
		c.Run.Timeout = DefaultTimeout
	}
}

// Timeout returns the run timeout. Zero means no limit.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil {
		return 0
	}
	return d
}
