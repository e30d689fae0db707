// Package config provides YAML configuration parsing for WifiBoard.
//
// This package enables running WifiBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: "Home WiFi"
//	port: 8080
//	scan_interval: 2s
//	scan_timeout: 10s
//	history_size: 30
//	scanner: auto
//	log_file: /var/log/wifiboard.log
//
//	autostart: true
//	mode: multi
//	track: [HomeNet, HomeNet_5G]
//
//	survey_db: survey.db
//	model_file: signal_model.json
//	knn_neighbors: 5
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minScanInterval is the minimum allowed scan interval for file-based
// configs. This prevents hammering the platform scan tool, which on most
// systems cannot complete a scan much faster than this anyway.
const minScanInterval = 1 * time.Second

// maxHistorySize bounds the per-network rolling buffer.
const maxHistorySize = 1000

// Scanner selection values for the scanner field.
const (
	ScannerAuto      = "auto"
	ScannerSystem    = "system"
	ScannerSimulated = "simulated"
)

// Monitoring mode values for the mode field.
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// Config is the root configuration structure for WifiBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "WifiBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// ScanInterval is the time between monitoring scans.
	// Accepts duration strings like "2s", "500ms", "1m". Defaults to 2s.
	ScanInterval Duration `yaml:"scan_interval"`

	// ScanTimeout bounds a single platform scan. Defaults to 10s.
	ScanTimeout Duration `yaml:"scan_timeout"`

	// HistorySize is the per-network rolling buffer capacity, 1..1000.
	// Defaults to 30.
	HistorySize int `yaml:"history_size"`

	// Scanner selects the scan backend: "auto" (system with simulated
	// fallback), "system", or "simulated". Defaults to auto.
	Scanner string `yaml:"scanner"`

	// LogFile is an optional rotating log target. Empty logs to stderr.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	LogFile string `yaml:"log_file"`

	// Autostart starts monitoring as soon as the server is up.
	Autostart bool `yaml:"autostart"`

	// Mode is the selection mode used with autostart and track:
	// "single" or "multi". Defaults to single.
	Mode string `yaml:"mode"`

	// Track lists the networks to monitor initially. In single mode at
	// most one entry is allowed; in multi mode an empty list tracks every
	// visible network. Values support environment variable substitution.
	Track []string `yaml:"track"`

	// SurveyDB is the SQLite path for site survey data. Empty disables
	// survey-backed features.
	SurveyDB string `yaml:"survey_db"`

	// ModelFile is the trained prediction model (JSON). Empty disables
	// location-based predictions.
	ModelFile string `yaml:"model_file"`

	// KNNNeighbors is the k used when training a nearest-neighbor model
	// from survey data. Defaults to 5.
	KNNNeighbors int `yaml:"knn_neighbors"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded after parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Title, LogFile, SurveyDB,
// ModelFile, and Track values. Defaults are applied for Port (8080),
// ScanInterval (2s), ScanTimeout (10s), HistorySize (30), Scanner (auto),
// Mode (single), and KNNNeighbors (5).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = Duration(2 * time.Second)
	}
	if cfg.ScanTimeout == 0 {
		cfg.ScanTimeout = Duration(10 * time.Second)
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = 30
	}
	if cfg.Scanner == "" {
		cfg.Scanner = ScannerAuto
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSingle
	}
	if cfg.KNNNeighbors == 0 {
		cfg.KNNNeighbors = 5
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"title", &c.Title},
		{"log_file", &c.LogFile},
		{"survey_db", &c.SurveyDB},
		{"model_file", &c.ModelFile},
	} {
		expanded, err := expandEnvVars(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.ScanInterval.Duration() < minScanInterval {
		return fmt.Errorf("scan_interval must be at least %s, got %s", minScanInterval, c.ScanInterval.Duration())
	}
	if c.ScanTimeout.Duration() < time.Second {
		return fmt.Errorf("scan_timeout must be at least 1s, got %s", c.ScanTimeout.Duration())
	}

	if c.HistorySize < 1 || c.HistorySize > maxHistorySize {
		return fmt.Errorf("history_size must be between 1 and %d, got %d", maxHistorySize, c.HistorySize)
	}

	switch c.Scanner {
	case ScannerAuto, ScannerSystem, ScannerSimulated:
	default:
		return fmt.Errorf("scanner must be %q, %q, or %q, got %q",
			ScannerAuto, ScannerSystem, ScannerSimulated, c.Scanner)
	}

	switch c.Mode {
	case ModeSingle, ModeMulti:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeSingle, ModeMulti, c.Mode)
	}

	for i, ssid := range c.Track {
		expanded, err := expandEnvVars(ssid)
		if err != nil {
			return fmt.Errorf("track[%d]: %w", i, err)
		}
		if strings.TrimSpace(expanded) == "" {
			return fmt.Errorf("track[%d]: network name is empty", i)
		}
		c.Track[i] = expanded
	}
	if c.Mode == ModeSingle && len(c.Track) > 1 {
		return fmt.Errorf("mode %q allows at most one tracked network, got %d", ModeSingle, len(c.Track))
	}

	if c.KNNNeighbors < 1 {
		return fmt.Errorf("knn_neighbors must be at least 1, got %d", c.KNNNeighbors)
	}

	return nil
}
