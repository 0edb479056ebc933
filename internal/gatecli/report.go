// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package gatecli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.jetify.com/crashgate/internal/eventbus"
	"go.jetify.com/crashgate/internal/ux"
)

func reportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:    "report [message]",
		Short:  "Publish a test error to check that crash reports get through",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			msg := strings.Join(args, " ")
			if msg == "" {
				msg = "crashgate test error"
			}
			a.bus.Publish(eventbus.ErrorHandled, errors.New(msg))

			if a.reporter.Active() {
				ux.Fsuccess(cmd.ErrOrStderr(), "Test error sent.\n")
			} else {
				ux.Finfo(cmd.ErrOrStderr(), "Crash reporting is off; nothing was sent. See `crashgate status`.\n")
			}
			return nil
		},
	}
}
