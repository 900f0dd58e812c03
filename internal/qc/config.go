package qc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuned defaults. Window sizes and tolerances are empirical, carried as
// configuration rather than derived.
const (
	DefaultSpikeWindow    = 11
	DefaultSpikeThresh    = 6.0
	DefaultFlatlineWindow = 11
	DefaultFlatlineTol    = 1e-6
)

// SpikeConfig tunes the rolling-MAD spike check.
type SpikeConfig struct {
	// Window is the centered window size and must be odd; even values are
	// widened by one.
	Window int     `yaml:"window"`
	Thresh float64 `yaml:"thresh"`
}

// FlatlineConfig tunes the rolling-variance flatline check.
type FlatlineConfig struct {
	// Window is the centered window size and must be odd; even values are
	// widened by one.
	Window int     `yaml:"window"`
	Tol    float64 `yaml:"tol"`
}

// Config holds the QC engine tuning. Zero or missing values fall back to
// the documented defaults.
type Config struct {
	Spike    SpikeConfig    `yaml:"spike"`
	Flatline FlatlineConfig `yaml:"flatline"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Spike:    SpikeConfig{Window: DefaultSpikeWindow, Thresh: DefaultSpikeThresh},
		Flatline: FlatlineConfig{Window: DefaultFlatlineWindow, Tol: DefaultFlatlineTol},
	}
}

// normalized fills unset values with defaults and forces both window sizes
// odd so the windows center cleanly.
func (c Config) normalized() Config {
	if c.Spike.Window <= 0 {
		c.Spike.Window = DefaultSpikeWindow
	}
	if c.Spike.Window%2 == 0 {
		c.Spike.Window++
	}
	if c.Spike.Thresh <= 0 {
		c.Spike.Thresh = DefaultSpikeThresh
	}
	if c.Flatline.Window <= 0 {
		c.Flatline.Window = DefaultFlatlineWindow
	}
	if c.Flatline.Window%2 == 0 {
		c.Flatline.Window++
	}
	if c.Flatline.Tol <= 0 {
		c.Flatline.Tol = DefaultFlatlineTol
	}
	return c
}

// LoadConfig reads a YAML QC configuration file. Keys absent from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load qc config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML QC configuration document.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse qc config: %w", err)
	}
	return c.normalized(), nil
}
