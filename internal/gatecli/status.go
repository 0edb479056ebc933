// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"go.jetify.com/crashgate/internal/build"
	"go.jetify.com/crashgate/internal/conf"
	"go.jetify.com/crashgate/internal/featureflag"
	"go.jetify.com/crashgate/internal/plugin"
	"go.jetify.com/crashgate/internal/ux"
)

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether crash reports would be sent, and why",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx := cmd.Context()
			killed := featureflag.DisableRemoteInteraction.Enabled()
			dsn := featureflag.SentryDSN.Value()
			if dsn == "" {
				dsn = build.SentryDSN
			}
			optedIn := conf.Bool(ctx, a.settings, conf.CrashReportsEnabled)
			editorID := conf.String(ctx, a.settings, conf.EditorID)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Setting", "Value")
			_ = table.Append([]string{"Settings file", a.settings.Path()})
			_ = table.Append([]string{"Remote interaction", ux.OnOff(!killed)})
			_ = table.Append([]string{"Endpoint configured", ux.OnOff(dsn != "")})
			_ = table.Append([]string{"Crash reports (user)", ux.OnOff(optedIn)})
			_ = table.Append([]string{"Editor ID", editorID})
			_ = table.Append([]string{"Plugins", strings.Join(plugin.Names(a.plugins.AppPlugins()), ",")})
			_ = table.Append([]string{"Release", build.Metadata.Version()})
			_ = table.Append([]string{"Session active", ux.OnOff(a.reporter.Active())})
			if err := table.Render(); err != nil {
				return err
			}

			if !killed && dsn != "" && optedIn {
				fmt.Fprintln(cmd.OutOrStdout(), "Crash reports are sent.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Crash reports are not sent.")
			}
			return nil
		},
	}
}
