// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package midcobra

import (
	"context"

	"github.com/spf13/cobra"

	"go.jetify.com/crashgate/internal/debug"
	"go.jetify.com/crashgate/internal/eventbus"
	"go.jetify.com/crashgate/internal/gatecli/usererr"
)

// Session is crash reporting for the lifetime of one command.
type Session interface {
	Mount(ctx context.Context)
	Unmount()
}

type Publisher interface {
	Publish(name string, payload any)
}

type ReportingOpts struct {
	// Open prepares the session. It runs after flags are parsed.
	Open func() (Session, error)
	Bus  Publisher
}

// Reporting mounts crash reporting before the command runs. A command error
// that is not a user error is published as eventbus.ErrorHandled, which
// the session sends as a crash report if the user opted in.
func Reporting(opts *ReportingOpts) Middleware {
	return &reportingMiddleware{opts: *opts}
}

type reportingMiddleware struct {
	opts    ReportingOpts
	session Session
}

var _ Middleware = (*reportingMiddleware)(nil)

func (m *reportingMiddleware) preRun(cmd *cobra.Command, args []string) {
	session, err := m.opts.Open()
	if err != nil {
		// The command itself will surface the error.
		debug.Log("crash reporting unavailable: %v", err)
		return
	}
	m.session = session
	m.session.Mount(cmd.Context())
}

func (m *reportingMiddleware) postRun(cmd *cobra.Command, args []string, runErr error) {
	if m.session == nil {
		return
	}
	if usererr.ShouldReport(runErr) && m.opts.Bus != nil {
		m.opts.Bus.Publish(eventbus.ErrorHandled, runErr)
	}
	m.session.Unmount()
}
