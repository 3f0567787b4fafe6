// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package app is the composition root: it wires config, logging,
// privilege handling, device discovery, the aggregator, the keypress
// engine, the Wayland surface, and the scheduler into one runnable
// process, in the Initialize/Run/Shutdown shape this lineage's
// internal/app package uses for its own daemon lifecycle.
package app

import (
	"fmt"

	"github.com/kvoverlay/keyviz/config"
	"github.com/kvoverlay/keyviz/internal/aggregator"
	"github.com/kvoverlay/keyviz/internal/device"
	"github.com/kvoverlay/keyviz/internal/errs"
	"github.com/kvoverlay/keyviz/internal/keyboard"
	"github.com/kvoverlay/keyviz/internal/keymap"
	"github.com/kvoverlay/keyviz/internal/logger"
	"github.com/kvoverlay/keyviz/internal/platform"
	"github.com/kvoverlay/keyviz/internal/render"
	"github.com/kvoverlay/keyviz/internal/scheduler"
	"github.com/kvoverlay/keyviz/internal/wayland"
)

// App holds every long-lived component once Initialize has run, ready
// for Run to hand them to the scheduler.
type App struct {
	cfg *config.Config
	log logger.Logger

	agg     *aggregator.Aggregator
	engine  *keyboard.Engine
	client  *wayland.Client
	surface *wayland.Surface
	sched   *scheduler.Scheduler
}

// Initialize validates configuration, opens a logger, discovers and
// opens keyboard devices, drops privileges, connects to the
// compositor, and builds every component the scheduler will drive.
// Any failure here is fatal — nothing has started running yet.
func Initialize(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.Configure(logger.Config{Level: logLevel(cfg.Debug), File: cfg.LogFile})
	if err != nil {
		return nil, errs.Wrap(errs.Config, "configure logger", err)
	}

	if env := platform.DetectEnvironment(); env != platform.EnvironmentWayland {
		log.Warning("no Wayland display detected (environment=%s, desktop=%s); layer-shell surfaces require a Wayland compositor", env, platform.DetectDesktopEnvironment())
	} else if platform.IsGNOMEWithWayland() {
		log.Warning("GNOME Shell does not implement zwlr_layer_shell_v1; the overlay will fail to configure on stock GNOME")
	}

	candidates, err := device.Discover(cfg.DevicePath)
	if err != nil {
		return nil, errs.Wrap(errs.Permission, fmt.Sprintf("discover input devices under %s", cfg.DevicePath), err)
	}
	if len(candidates) == 0 {
		log.Warning("no keyboard-class input devices found under %s", cfg.DevicePath)
	}

	agg := aggregator.New(aggregator.MinCapacity, log)
	agg.Spawn(candidates)

	if err := platform.DropPrivileges(); err != nil {
		log.Error("%s", platform.RemediationText())
		return nil, errs.Wrap(errs.Permission, "drop privileges after opening devices", err)
	}

	table, err := keymap.NewTable()
	if err != nil {
		return nil, errs.Wrap(errs.Keymap, "build keymap table", err)
	}
	engine := keyboard.New(table, cfg.CaseSensitive, cfg.LengthLimit, cfg.Timeout, log)

	client, err := wayland.Connect(log)
	if err != nil {
		return nil, err
	}

	shaper := render.NewBasicFontShaper()
	surface, err := wayland.NewSurface(client, shaper, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}

	sched := scheduler.New(agg, engine, surface, client, agg, log)

	return &App{
		cfg:     cfg,
		log:     log,
		agg:     agg,
		engine:  engine,
		client:  client,
		surface: surface,
		sched:   sched,
	}, nil
}

// Run hands control to the scheduler until shutdown, returning the
// exit code main should use.
func (a *App) Run() int {
	if err := a.sched.Run(); err != nil {
		a.log.Error("fatal: %v", err)
		return errs.CodeFor(err)
	}
	return 0
}

func logLevel(debug bool) logger.LogLevel {
	if debug {
		return logger.DebugLevel
	}
	return logger.InfoLevel
}
