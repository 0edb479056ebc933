// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/samber/lo"

	"go.jetify.com/crashgate/internal/backend"
	"go.jetify.com/crashgate/internal/build"
	"go.jetify.com/crashgate/internal/conf"
	"go.jetify.com/crashgate/internal/crashreport"
	"go.jetify.com/crashgate/internal/debug"
	"go.jetify.com/crashgate/internal/envir"
	"go.jetify.com/crashgate/internal/eventbus"
	"go.jetify.com/crashgate/internal/featureflag"
	"go.jetify.com/crashgate/internal/gatecli/midcobra"
	"go.jetify.com/crashgate/internal/gatecli/usererr"
	"go.jetify.com/crashgate/internal/plugin"
	"go.jetify.com/crashgate/internal/telemetry"
	"go.jetify.com/crashgate/internal/xdg"
)

const appName = "crashgate"

type rootCmdFlags struct {
	quiet           bool
	configPath      string
	flagsFile       string
	pluginDir       string
	recheckInterval time.Duration
}

// app wires the crash reporting collaborators for one CLI invocation.
type app struct {
	flags rootCmdFlags

	bus       *eventbus.Bus
	plugins   *plugin.Registry
	client    telemetry.Client
	scheduler crashreport.Scheduler

	once     sync.Once
	openErr  error
	settings *conf.File
	segment  *backend.Segment
	reporter *crashreport.Reporter
}

var _ midcobra.Session = (*app)(nil)

func newApp() *app {
	return &app{
		bus:       eventbus.New(),
		plugins:   plugin.NewRegistry(),
		client:    telemetry.NewSentry(nil),
		scheduler: crashreport.TickerScheduler{},
	}
}

// open loads flags, settings and plugins and builds the reporter. It only
// does the work once; later calls return the first result.
func (a *app) open() error {
	a.once.Do(func() { a.openErr = a.doOpen() })
	return a.openErr
}

func (a *app) doOpen() error {
	flagsFile := lo.Ternary(a.flags.flagsFile != "", a.flags.flagsFile, os.Getenv(envir.CrashgateFlagsFile))
	if flagsFile != "" {
		if err := featureflag.LoadFile(flagsFile); err != nil {
			return usererr.WithUserMessage(err, "Could not load flags from %s", flagsFile)
		}
	}

	settingsPath := lo.Ternary(a.flags.configPath != "", a.flags.configPath, xdg.SettingsPath())
	settings, err := conf.OpenFile(settingsPath)
	if err != nil {
		return usererr.WithUserMessage(err, "Unsupported settings file %s", settingsPath)
	}
	a.settings = settings

	pluginDir := lo.Ternary(a.flags.pluginDir != "", a.flags.pluginDir, os.Getenv(envir.CrashgatePluginDir))
	if pluginDir != "" {
		n, err := a.plugins.LoadDir(pluginDir)
		if err != nil {
			return usererr.WithUserMessage(err, "Could not read plugins in %s", pluginDir)
		}
		debug.Log("loaded %d plugins from %s", n, pluginDir)
	}

	a.segment, err = backend.NewSegment(build.TelemetryKey, backend.SegmentOpts{
		AppName:    appName,
		AppVersion: build.Metadata.Version(),
	})
	if err != nil {
		return err
	}

	a.reporter = crashreport.New(crashreport.Deps{
		Flags:           featureflag.Global,
		Metadata:        build.Metadata,
		Settings:        a.settings,
		Bus:             a.bus,
		Backend:         a.segment,
		Plugins:         a.plugins,
		Client:          a.client,
		Scheduler:       a.scheduler,
		RecheckInterval: a.flags.recheckInterval,
		DefaultDSN:      build.SentryDSN,
	})
	return nil
}

func (a *app) Mount(ctx context.Context) {
	if a.reporter != nil {
		a.reporter.Mount(ctx)
	}
}

func (a *app) Unmount() {
	if a.reporter != nil {
		a.reporter.Unmount()
	}
	if a.segment != nil {
		if err := a.segment.Close(); err != nil {
			debug.Log("closing segment client: %v", err)
		}
	}
}
