// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.jetify.com/crashgate/internal/debug"
	"go.jetify.com/crashgate/internal/envir"
	"go.jetify.com/crashgate/internal/ux"
)

func runCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep crash reporting in sync with the settings file until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runUntilDone(ctx, cmd, a)
		},
	}
}

func runUntilDone(ctx context.Context, cmd *cobra.Command, a *app) error {
	a.Mount(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.settings.Watch(ctx, func() {
			before := a.reporter.Active()
			a.reporter.Recheck(ctx)
			if after := a.reporter.Active(); after != before {
				debug.Log("crash reporting session active: %t", after)
				ux.Finfo(cmd.ErrOrStderr(), "Crash reporting %s\n", ux.OnOff(after))
			}
		})
	})
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if showWatchHint(cmd.OutOrStdout()) {
		ux.Finfo(cmd.OutOrStdout(), "Watching %s. Press Ctrl-C to stop.\n", a.settings.Path())
	}
	return g.Wait()
}

// showWatchHint reports whether w is an interactive terminal worth hinting on.
func showWatchHint(w io.Writer) bool {
	if envir.IsCI() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
