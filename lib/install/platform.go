// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"bytes"
	"context"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/helper.service.tmpl templates/helper.plist.tmpl
var templateFiles embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"xml": xmlEscape,
}).ParseFS(templateFiles, "templates/*.tmpl"))

func xmlEscape(value string) string {
	var buffer bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buffer, []byte(value))
	return buffer.String()
}

// Platform is a service manager.
type Platform interface {
	// Name identifies the service manager in logs.
	Name() string
	// DefinitionDir is the default directory for service definitions.
	DefinitionDir() string
	// DefinitionFile is the definition file name for serviceName.
	DefinitionFile(serviceName string) string
	// Render produces the service definition for layout.
	Render(layout Layout) ([]byte, error)
	// Activate loads and starts the service after its files are in
	// place. A running instance is restarted onto the new binary.
	Activate(ctx context.Context, runner Runner, layout Layout) error
	// Deactivate stops and unloads the service.
	Deactivate(ctx context.Context, runner Runner, layout Layout) error
	// Escalate returns the command that runs argv with administrator
	// privileges.
	Escalate(argv []string) (name string, args []string)
}

func render(name string, layout Layout) ([]byte, error) {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, name, layout.templateData()); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buffer.Bytes(), nil
}

// Systemd manages the helper as a system unit.
type Systemd struct{}

func (Systemd) Name() string                             { return "systemd" }
func (Systemd) DefinitionDir() string                    { return "/etc/systemd/system" }
func (Systemd) DefinitionFile(serviceName string) string { return serviceName + ".service" }

func (Systemd) Render(layout Layout) ([]byte, error) {
	return render("helper.service.tmpl", layout)
}

func (s Systemd) Activate(ctx context.Context, runner Runner, layout Layout) error {
	unit := s.DefinitionFile(layout.ServiceName)
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", unit},
		{"restart", unit},
	} {
		if _, err := runner.Run(ctx, "systemctl", args...); err != nil {
			return fmt.Errorf("activating %s: %w", unit, err)
		}
	}
	return nil
}

func (s Systemd) Deactivate(ctx context.Context, runner Runner, layout Layout) error {
	unit := s.DefinitionFile(layout.ServiceName)
	if _, err := runner.Run(ctx, "systemctl", "disable", "--now", unit); err != nil {
		return fmt.Errorf("deactivating %s: %w", unit, err)
	}
	return nil
}

// Escalate uses pkexec, which prompts through the desktop's polkit
// agent.
func (Systemd) Escalate(argv []string) (string, []string) {
	return "pkexec", argv
}

// Launchd manages the helper as a launch daemon.
type Launchd struct{}

func (Launchd) Name() string                             { return "launchd" }
func (Launchd) DefinitionDir() string                    { return "/Library/LaunchDaemons" }
func (Launchd) DefinitionFile(serviceName string) string { return serviceName + ".plist" }

func (Launchd) Render(layout Layout) ([]byte, error) {
	return render("helper.plist.tmpl", layout)
}

func (l Launchd) Activate(ctx context.Context, runner Runner, layout Layout) error {
	// bootout fails when the job is not loaded; that is the fresh
	// install case.
	_, _ = runner.Run(ctx, "launchctl", "bootout", "system/"+layout.ServiceName)
	if _, err := runner.Run(ctx, "launchctl", "bootstrap", "system", layout.DefinitionPath(l)); err != nil {
		return fmt.Errorf("activating %s: %w", layout.ServiceName, err)
	}
	return nil
}

func (Launchd) Deactivate(ctx context.Context, runner Runner, layout Layout) error {
	if _, err := runner.Run(ctx, "launchctl", "bootout", "system/"+layout.ServiceName); err != nil {
		return fmt.Errorf("deactivating %s: %w", layout.ServiceName, err)
	}
	return nil
}

// Escalate wraps argv in an AppleScript administrator prompt.
func (Launchd) Escalate(argv []string) (string, []string) {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = ShellQuote(arg)
	}
	script := fmt.Sprintf("do shell script %s with administrator privileges",
		appleScriptString(strings.Join(quoted, " ")))
	return "osascript", []string{"-e", script}
}

// ShellQuote quotes s for a POSIX shell.
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./=:@", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// appleScriptString returns s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
