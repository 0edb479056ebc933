// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"github.com/spf13/cobra"

	"go.jetify.com/crashgate/internal/conf"
	"go.jetify.com/crashgate/internal/featureflag"
	"go.jetify.com/crashgate/internal/gatecli/usererr"
	"go.jetify.com/crashgate/internal/ux"
)

func enableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Opt in to sending crash reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPreference(cmd, a, true)
		},
	}
}

func disableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Opt out of sending crash reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPreference(cmd, a, false)
		},
	}
}

func setPreference(cmd *cobra.Command, a *app, enabled bool) error {
	if err := a.open(); err != nil {
		return err
	}
	if err := a.settings.Set(conf.CrashReportsEnabled, enabled); err != nil {
		return usererr.WithUserMessage(err, "Could not update %s", a.settings.Path())
	}
	// Apply the change to this process so the backend hears about it.
	a.reporter.Recheck(cmd.Context())

	w := cmd.ErrOrStderr()
	if enabled {
		ux.Fsuccess(w, "Crash reports enabled in %s\n", a.settings.Path())
		if featureflag.DisableRemoteInteraction.Enabled() {
			ux.Fwarning(w, "Remote interaction is disabled, so no reports will be sent.\n")
		}
		return nil
	}
	ux.Fsuccess(w, "Crash reports disabled in %s\n", a.settings.Path())
	return nil
}
