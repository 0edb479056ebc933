// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go.jetify.com/crashgate/internal/featureflag"
)

func flagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:    "flags",
		Short:  "List runtime flags and their values",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			all := featureflag.All()
			names := lo.Keys(all)
			slices.Sort(names)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Flag", "Value")
			for _, name := range names {
				_ = table.Append([]string{name, all[name]})
			}
			return table.Render()
		},
	}
}
