// Copyright 2026 The SysStats Authors
// SPDX-License-Identifier: Apache-2.0

// sysstats samples CPU, GPU, memory, and temperature on an interval
// and logs each sample. Temperature comes from sysstats-helper, a
// privileged service the user installs once with --install-helper;
// without it every other metric still works.
//
// Modes:
//
//	sysstats                   sample until interrupted
//	sysstats --once            print one JSON sample and exit
//	sysstats --status          report helper installation and connection
//	sysstats --install-helper  install the helper (prompts for credentials)
//
// SIGHUP reloads the config file and applies a changed interval.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/sysstats/sysstats/lib/clock"
	"github.com/sysstats/sysstats/lib/config"
	"github.com/sysstats/sysstats/lib/hwinfo"
	"github.com/sysstats/sysstats/lib/install"
	"github.com/sysstats/sysstats/lib/process"
	"github.com/sysstats/sysstats/lib/sampler"
	"github.com/sysstats/sysstats/lib/supervisor"
	"github.com/sysstats/sysstats/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	configPath    string
	interval      time.Duration
	once          bool
	installHelper bool
	status        bool
	showVersion   bool
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("sysstats", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "config file (default: $"+config.EnvVar+", else built-in defaults)")
	flagSet.DurationVar(&opts.interval, "interval", 0, "sampling interval: 1s, 2s or 5s (overrides the config file)")
	flagSet.BoolVar(&opts.once, "once", false, "print one sample as JSON and exit")
	flagSet.BoolVar(&opts.installHelper, "install-helper", false, "install the privileged temperature helper and exit")
	flagSet.BoolVar(&opts.status, "status", false, "print helper status and exit")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if opts.showVersion {
		fmt.Println(version.Full("sysstats"))
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := process.NewLogger(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.supervisor.Close()

	switch {
	case opts.installHelper:
		return app.install(ctx)
	case opts.status:
		return app.printStatus(ctx)
	case opts.once:
		return app.printOnce(ctx)
	}
	return app.runLoop(ctx, opts)
}

// loadConfig loads and validates the config, applying the --interval
// override.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.interval != 0 {
		cfg.Interval = opts.interval
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type app struct {
	config     *config.Config
	installer  *install.Installer
	supervisor *supervisor.Supervisor
	sampler    *sampler.Sampler
	logger     *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	bundled := cfg.Helper.BundledBinary
	if bundled == "" {
		executable, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating executable: %w", err)
		}
		bundled = filepath.Join(filepath.Dir(executable), install.HelperBinaryName)
	}

	layout := install.Layout{
		ServiceName: cfg.Helper.ServiceName,
		InstallDir:  cfg.Helper.InstallDir,
		SocketPath:  cfg.Helper.SocketPath,
	}
	installer := install.NewInstaller(layout, install.DefaultPlatform(), install.ExecRunner{}, bundled, logger)

	helperSupervisor := supervisor.New(supervisor.Config{
		Dialer:          supervisor.HelperDialer(cfg.Helper.SocketPath),
		Installer:       installer,
		ExpectedVersion: cfg.Helper.ExpectedVersion,
		CallTimeout:     cfg.Helper.CallTimeout,
		Logger:          logger,
	})

	counters := hwinfo.NewCounterReader(logger)
	gpu := hwinfo.NewGPUProbe(hwinfo.NewRegistry(logger), hwinfo.GPUClasses(), logger)
	metrics := sampler.New(sampler.Config{
		CPU:         sampler.NewCPUSource(counters),
		GPU:         gpu,
		RAM:         sampler.NewMemorySource(counters),
		Temperature: sampler.NewTemperatureSource(helperSupervisor.GetTemperature, sampler.DefaultTemperatureTimeout, logger),
		Clock:       clock.Real(),
		Logger:      logger,
	})

	return &app{
		config:     cfg,
		installer:  installer,
		supervisor: helperSupervisor,
		sampler:    metrics,
		logger:     logger,
	}, nil
}

func (a *app) install(ctx context.Context) error {
	if err := a.supervisor.Install(ctx); err != nil {
		return fmt.Errorf("installing helper: %w", err)
	}
	if a.supervisor.NeedsInstallation() {
		fmt.Printf("helper installed, but it did not answer with protocol version %s yet (state %s)\n",
			a.config.Helper.ExpectedVersion, a.supervisor.State())
		return nil
	}
	fmt.Println("helper installed and connected")
	return nil
}

func (a *app) printStatus(ctx context.Context) error {
	installed, err := a.installer.Status(ctx)
	if err != nil {
		return err
	}
	a.supervisor.Start(ctx)
	fmt.Printf("helper:             %s\n", installed)
	fmt.Printf("connection:         %s\n", a.supervisor.State())
	fmt.Printf("needs installation: %t\n", a.supervisor.NeedsInstallation())
	fmt.Printf("socket:             %s\n", a.config.Helper.SocketPath)
	fmt.Printf("binary:             %s\n", a.installer.Layout().BinaryPath())
	if digest, err := a.installer.InstalledDigest(); err == nil {
		fmt.Printf("digest:             %s\n", digest)
	}
	return nil
}

// printOnce samples until a reading with a CPU baseline exists and
// prints it. The first cycle only establishes the baseline and starts
// the first temperature fetch, so the second sample is the one shown.
func (a *app) printOnce(ctx context.Context) error {
	a.supervisor.Start(ctx)

	samples := make(chan sampler.Sample, 2)
	cancel := a.sampler.Subscribe(func(sample sampler.Sample) {
		select {
		case samples <- sample:
		default:
		}
	})
	defer cancel()

	a.sampler.Start(ctx, time.Second)
	defer a.sampler.Stop()

	var sample sampler.Sample
	for range 2 {
		select {
		case sample = <-samples:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sample)
}

func (a *app) runLoop(ctx context.Context, opts options) error {
	a.supervisor.Start(ctx)
	if a.supervisor.NeedsInstallation() {
		a.logger.Warn("temperature helper not available; run sysstats --install-helper to enable temperature readings",
			"state", a.supervisor.State().String())
	}

	cancel := a.sampler.Subscribe(func(sample sampler.Sample) {
		a.logger.Info("sample", sample.LogAttrs()...)
	})
	defer cancel()

	a.sampler.Start(ctx, a.config.Interval)
	defer a.sampler.Stop()
	a.logger.Info("sampling started", "interval", a.config.Interval, "version", version.Info())

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("shutting down")
			return nil
		case <-hangup:
			cfg, err := loadConfig(opts)
			if err != nil {
				a.logger.Error("config reload failed, keeping current settings", "error", err)
				continue
			}
			a.config.Interval = cfg.Interval
			a.sampler.SetInterval(cfg.Interval)
			a.logger.Info("config reloaded", "interval", cfg.Interval)
		}
	}
}
