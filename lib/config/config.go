// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sysstats/sysstats/lib/helper"
	"github.com/sysstats/sysstats/lib/install"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "SYSSTATS_CONFIG"

// AllowedIntervals are the sampling intervals a config may choose.
var AllowedIntervals = []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second}

// Config is the sysstats configuration.
type Config struct {
	// Interval is the time between samples: 1s, 2s, or 5s.
	// Default: 2s
	Interval time.Duration `yaml:"interval"`

	// LogLevel is debug, info, warn, or error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// Helper configures the privileged helper and how to reach it.
	Helper HelperConfig `yaml:"helper"`
}

// HelperConfig configures the privileged helper.
type HelperConfig struct {
	// ServiceName names the systemd unit or launchd job.
	// Default: com.example.SysStatsHelper
	ServiceName string `yaml:"service_name"`

	// SocketPath is where the helper listens.
	// Default: /var/run/com.example.SysStatsHelper.sock
	SocketPath string `yaml:"socket_path"`

	// InstallDir receives the installed helper binary.
	// Default: /usr/local/libexec/sysstats on Linux,
	// /Library/PrivilegedHelperTools on macOS.
	InstallDir string `yaml:"install_dir"`

	// BundledBinary is the helper executable shipped with sysstats.
	// Empty means sysstats-helper next to the running executable.
	BundledBinary string `yaml:"bundled_binary"`

	// CallTimeout bounds each request to the helper.
	// Default: 10s
	CallTimeout time.Duration `yaml:"call_timeout"`

	// ExpectedVersion is the helper protocol version to accept.
	// Default: the version this build speaks.
	ExpectedVersion string `yaml:"expected_version"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Interval: 2 * time.Second,
		LogLevel: "info",
		Helper: HelperConfig{
			ServiceName:     helper.ServiceName,
			SocketPath:      helper.DefaultSocketPath,
			InstallDir:      install.DefaultInstallDir,
			CallTimeout:     10 * time.Second,
			ExpectedVersion: helper.Version,
		},
	}
}

// Load loads the file at path, or at $SYSSTATS_CONFIG when path is
// empty. With neither it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and expands path variables.
// An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.Helper.SocketPath = expandVars(c.Helper.SocketPath)
	c.Helper.InstallDir = expandVars(c.Helper.InstallDir)
	c.Helper.BundledBinary = expandVars(c.Helper.BundledBinary)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} with the variable's value and
// ${VAR:-default} with the default when VAR is unset or empty.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(AllowedIntervals, c.Interval) {
		errs = append(errs, fmt.Errorf("interval %s is not one of 1s, 2s, 5s", c.Interval))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if c.Helper.ServiceName == "" {
		errs = append(errs, errors.New("helper.service_name is required"))
	}
	if !filepath.IsAbs(c.Helper.SocketPath) {
		errs = append(errs, fmt.Errorf("helper.socket_path must be absolute, got %q", c.Helper.SocketPath))
	}
	if !filepath.IsAbs(c.Helper.InstallDir) {
		errs = append(errs, fmt.Errorf("helper.install_dir must be absolute, got %q", c.Helper.InstallDir))
	}
	if c.Helper.BundledBinary != "" && !filepath.IsAbs(c.Helper.BundledBinary) {
		errs = append(errs, fmt.Errorf("helper.bundled_binary must be absolute, got %q", c.Helper.BundledBinary))
	}
	if c.Helper.CallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("helper.call_timeout must be positive, got %s", c.Helper.CallTimeout))
	}
	if c.Helper.ExpectedVersion == "" {
		errs = append(errs, errors.New("helper.expected_version is required"))
	}

	return errors.Join(errs...)
}

// Level returns the configured log level. An invalid level, which
// Validate reports, falls back to info.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel parses debug, info, warn, or error.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level %q is not one of debug, info, warn, error", name)
}
