// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// sysstats-helper is the privileged half of sysstats. It runs as a
// system service (a systemd unit on Linux, a launch daemon on macOS)
// because the temperature sensors it reads are root-only, and serves
// readings to the unprivileged sysstats process over a unix socket.
//
// The same binary installs and removes itself: sysstats runs it with
// --install under privilege escalation, and it copies itself into the
// install directory, writes the service definition, and activates it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sysstats/sysstats/lib/config"
	"github.com/sysstats/sysstats/lib/helper"
	"github.com/sysstats/sysstats/lib/install"
	"github.com/sysstats/sysstats/lib/process"
	"github.com/sysstats/sysstats/lib/service"
	"github.com/sysstats/sysstats/lib/smc"
	"github.com/sysstats/sysstats/lib/thermal"
	"github.com/sysstats/sysstats/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		socketPath  string
		installDir  string
		serviceName string
		logLevel    string
		doInstall   bool
		doUninstall bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("sysstats-helper", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", helper.DefaultSocketPath, "unix socket to listen on")
	flagSet.StringVar(&installDir, "install-dir", install.DefaultInstallDir, "directory the helper binary is installed into")
	flagSet.StringVar(&serviceName, "service-name", helper.ServiceName, "systemd unit or launchd job name")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&doInstall, "install", false, "install this binary as the system helper service and exit")
	flagSet.BoolVar(&doUninstall, "uninstall", false, "remove the system helper service and exit")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if showVersion {
		fmt.Printf("%s (protocol %s)\n", version.Line("sysstats-helper"), helper.Version)
		return nil
	}
	if doInstall && doUninstall {
		return errors.New("--install and --uninstall are mutually exclusive")
	}

	level, err := config.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := process.NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout := install.Layout{
		ServiceName: serviceName,
		InstallDir:  installDir,
		SocketPath:  socketPath,
	}
	switch {
	case doInstall:
		executable, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating helper executable: %w", err)
		}
		return install.Apply(ctx, layout, install.DefaultPlatform(), install.ExecRunner{}, executable, logger)
	case doUninstall:
		return install.Remove(ctx, layout, install.DefaultPlatform(), install.ExecRunner{}, logger)
	}

	return serve(ctx, socketPath, logger)
}

// sensorBackend answers helper requests from the platform's
// temperature chain.
type sensorBackend struct {
	reader   *thermal.Reader
	platform string
}

func (b sensorBackend) Temperature(ctx context.Context) float64 { return b.reader.Temperature(ctx) }
func (b sensorBackend) Platform() string                        { return b.platform }

func serve(ctx context.Context, socketPath string, logger *slog.Logger) error {
	reader := thermal.NewPlatformReader(logger)
	defer reader.Close()

	backend := sensorBackend{reader: reader, platform: smc.DetectFamily().String()}

	server := service.NewSocketServer(socketPath, logger)
	// The unprivileged main process connects as another user.
	server.SetSocketMode(0666)
	helper.RegisterHandlers(server, backend)

	logger.Info("helper listening",
		"socket", socketPath,
		"platform", backend.platform,
		"protocol_version", helper.Version,
		"version", version.Info(),
	)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("serving %s: %w", socketPath, err)
	}
	logger.Info("helper stopped")
	return nil
}
