// Package config loads the YAML configuration file shared by the command
// line and the inspector.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/litescript/terraframe/internal/geodesy"
	"github.com/litescript/terraframe/internal/logging"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds data locations and transformation switches.
type Config struct {
	// EOPFile is an IERS finals2000A file. Empty means no Earth orientation
	// data: UT1 = UTC and no polar motion or nutation corrections.
	EOPFile string `yaml:"eop_file,omitempty"`

	// SeriesDir holds the IERS tab5.2a/b/d tables.
	SeriesDir string `yaml:"series_dir,omitempty"`

	ApplyPolarMotion         bool `yaml:"apply_polar_motion"`
	ApplyNutationCorrections bool `yaml:"apply_nutation_corrections"`

	LogLevel  string `yaml:"log_level,omitempty"`
	Ellipsoid string `yaml:"ellipsoid,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ApplyPolarMotion:         true,
		ApplyNutationCorrections: true,
		LogLevel:                 "info",
		Ellipsoid:                geodesy.WGS84.String(),
	}
}

// Load reads a YAML configuration file. Keys absent from the file keep
// their defaults, unknown keys are rejected, and relative data paths are
// resolved against the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.EOPFile = resolve(base, cfg.EOPFile)
	cfg.SeriesDir = resolve(base, cfg.SeriesDir)
	return cfg, nil
}

// Decode parses and validates a configuration document.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if _, err := geodesy.ParseEllipsoid(c.Ellipsoid); err != nil {
		return fmt.Errorf("%w: ellipsoid: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// Figure returns the parsed ellipsoid.
func (c Config) Figure() geodesy.Ellipsoid {
	e, _ := geodesy.ParseEllipsoid(c.Ellipsoid)
	return e
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
