// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sysstats/sysstats/lib/helper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sysstats.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Interval != 2*time.Second {
		t.Errorf("expected interval=2s, got %s", cfg.Interval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log_level=info, got %s", cfg.LogLevel)
	}
	if cfg.Helper.SocketPath != "/var/run/com.example.SysStatsHelper.sock" {
		t.Errorf("expected default socket path, got %s", cfg.Helper.SocketPath)
	}
	if cfg.Helper.ExpectedVersion != helper.Version {
		t.Errorf("expected expected_version=%s, got %s", helper.Version, cfg.Helper.ExpectedVersion)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Interval != Default().Interval || cfg.Helper != Default().Helper {
		t.Errorf("Load() without a file = %+v, want defaults", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	fromEnv := writeConfig(t, "interval: 5s\n")
	fromFlag := writeConfig(t, "interval: 1s\n")
	t.Setenv(EnvVar, fromEnv)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(env) failed: %v", err)
	}
	if cfg.Interval != 5*time.Second {
		t.Errorf("interval from SYSSTATS_CONFIG = %s, want 5s", cfg.Interval)
	}

	cfg, err = Load(fromFlag)
	if err != nil {
		t.Fatalf("Load(flag) failed: %v", err)
	}
	if cfg.Interval != time.Second {
		t.Errorf("interval from --config = %s, want 1s", cfg.Interval)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
interval: 1s
log_level: debug

helper:
  service_name: org.test.Helper
  socket_path: /run/test/helper.sock
  install_dir: /opt/test/libexec
  bundled_binary: /opt/test/bin/sysstats-helper
  call_timeout: 3s
  expected_version: 2.0.0
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	expected := HelperConfig{
		ServiceName:     "org.test.Helper",
		SocketPath:      "/run/test/helper.sock",
		InstallDir:      "/opt/test/libexec",
		BundledBinary:   "/opt/test/bin/sysstats-helper",
		CallTimeout:     3 * time.Second,
		ExpectedVersion: "2.0.0",
	}
	if cfg.Helper != expected {
		t.Errorf("helper = %+v, want %+v", cfg.Helper, expected)
	}
	if cfg.Interval != time.Second || cfg.Level() != slog.LevelDebug {
		t.Errorf("interval=%s level=%s, want 1s debug", cfg.Interval, cfg.Level())
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "helper:\n  call_timeout: 4s\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Helper.CallTimeout != 4*time.Second {
		t.Errorf("call_timeout = %s, want 4s", cfg.Helper.CallTimeout)
	}
	if cfg.Helper.SocketPath != helper.DefaultSocketPath || cfg.Interval != 2*time.Second {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "intervall: 2s\n"},
		{name: "unknown nested key", content: "helper:\n  socket: /tmp/x.sock\n"},
		{name: "bad duration", content: "interval: soon\n"},
		{name: "not yaml", content: "interval: [1s\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, test.content)); err == nil {
				t.Error("LoadFile succeeded")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile succeeded on a missing file")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) failed: %v", err)
	}
	if cfg.Interval != 2*time.Second {
		t.Errorf("interval = %s, want the 2s default", cfg.Interval)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("SYSSTATS_TEST_PREFIX", "/opt/stats")
	t.Setenv("SYSSTATS_TEST_EMPTY", "")

	tests := []struct {
		input    string
		expected string
	}{
		{"${SYSSTATS_TEST_PREFIX}/libexec", "/opt/stats/libexec"},
		{"${SYSSTATS_TEST_UNSET:-/usr/local}/libexec", "/usr/local/libexec"},
		{"${SYSSTATS_TEST_EMPTY:-/fallback}", "/fallback"},
		{"${SYSSTATS_TEST_PREFIX:-/ignored}/bin", "/opt/stats/bin"},
		{"${SYSSTATS_TEST_UNSET}/x", "/x"},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input); got != test.expected {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.expected)
		}
	}
}

func TestLoadFileExpandsPaths(t *testing.T) {
	t.Setenv("SYSSTATS_TEST_ROOT", "/srv/stats")
	cfg, err := LoadFile(writeConfig(t, `
helper:
  socket_path: ${SYSSTATS_TEST_ROOT}/helper.sock
  install_dir: ${SYSSTATS_TEST_LIBEXEC:-/usr/libexec/sysstats}
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Helper.SocketPath != "/srv/stats/helper.sock" {
		t.Errorf("socket_path = %s", cfg.Helper.SocketPath)
	}
	if cfg.Helper.InstallDir != "/usr/libexec/sysstats" {
		t.Errorf("install_dir = %s", cfg.Helper.InstallDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errors []string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "five seconds", modify: func(c *Config) { c.Interval = 5 * time.Second }},
		{
			name:   "interval outside the set",
			modify: func(c *Config) { c.Interval = 3 * time.Second },
			errors: []string{"interval 3s"},
		},
		{
			name:   "bad log level",
			modify: func(c *Config) { c.LogLevel = "verbose" },
			errors: []string{`log_level "verbose"`},
		},
		{
			name: "several problems reported together",
			modify: func(c *Config) {
				c.Helper.ServiceName = ""
				c.Helper.SocketPath = "relative.sock"
				c.Helper.CallTimeout = 0
				c.Helper.BundledBinary = "bin/helper"
			},
			errors: []string{
				"helper.service_name is required",
				"helper.socket_path must be absolute",
				"helper.call_timeout must be positive",
				"helper.bundled_binary must be absolute",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if len(test.errors) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want errors")
			}
			for _, fragment := range test.errors {
				if !strings.Contains(err.Error(), fragment) {
					t.Errorf("Validate() = %q, missing %q", err, fragment)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, expected := range tests {
		level, err := ParseLevel(name)
		if err != nil || level != expected {
			t.Errorf("ParseLevel(%q) = %s, %v; want %s", name, level, err, expected)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) succeeded")
	}
}
