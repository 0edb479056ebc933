// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go.jetify.com/crashgate/internal/crashreport"
	"go.jetify.com/crashgate/internal/debug"
	"go.jetify.com/crashgate/internal/envir"
	"go.jetify.com/crashgate/internal/gatecli/midcobra"
	"go.jetify.com/crashgate/internal/xdg"
)

var debugMiddleware = &midcobra.DebugMiddleware{}

func RootCmd(a *app) *cobra.Command {
	command := &cobra.Command{
		Use:   appName,
		Short: "Privacy-gated crash reporting",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.flags.quiet {
				cmd.SetErr(io.Discard)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.AddCommand(statusCmd(a))
	command.AddCommand(enableCmd(a))
	command.AddCommand(disableCmd(a))
	command.AddCommand(runCmd(a))
	command.AddCommand(reportCmd(a))
	command.AddCommand(flagsCmd(a))
	command.AddCommand(versionCmd())

	command.PersistentFlags().BoolVarP(
		&a.flags.quiet, "quiet", "q", false, "suppresses logs")
	command.PersistentFlags().StringVarP(
		&a.flags.configPath, "config", "c", "", "path to the settings file (.json, .toml or .yaml)")
	command.PersistentFlags().StringVar(
		&a.flags.flagsFile, "flags-file", "", "dotenv file with flag overrides")
	command.PersistentFlags().StringVar(
		&a.flags.pluginDir, "plugin-dir", "", "directory searched for plugin manifests")
	command.PersistentFlags().DurationVar(
		&a.flags.recheckInterval, "recheck-interval", crashreport.DefaultRecheckInterval,
		"how often the crash reporting preference is re-read")
	debugMiddleware.AttachToFlag(command.PersistentFlags(), "debug")

	return command
}

func Execute(ctx context.Context, args []string) int {
	defer debug.Recover()
	a := newApp()
	return newExecutable(a, RootCmd(a)).Execute(ctx, args)
}

func newExecutable(a *app, cmd *cobra.Command) midcobra.Executable {
	exe := midcobra.New(cmd)
	exe.AddMiddleware(debugMiddleware)
	exe.AddMiddleware(midcobra.Reporting(&midcobra.ReportingOpts{
		Open: func() (midcobra.Session, error) {
			if err := a.open(); err != nil {
				return nil, err
			}
			return a, nil
		},
		Bus: a.bus,
	}))
	return exe
}

func Main() {
	// CRASHGATE_DEBUG_LOG=1 logs to the default state file; any other value
	// is taken as the log file path.
	var logFile io.Closer
	if path := os.Getenv(envir.CrashgateDebugLog); path != "" {
		if on, err := strconv.ParseBool(path); err == nil {
			path = lo.Ternary(on, xdg.StateSubpath("debug.log"), "")
		}
		if path != "" {
			logFile = debug.LogToFile(path)
			debug.Enable()
		}
	}

	code := Execute(context.Background(), os.Args[1:])
	if logFile != nil {
		_ = logFile.Close()
	}
	os.Exit(code)
}
