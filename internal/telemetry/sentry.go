// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package telemetry

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

const flushTimeout = 2 * time.Second

// TagExecutionID is the scope tag that groups the events of one process.
const TagExecutionID = "execution_id"

// Options configure a crash reporting session.
type Options struct {
	DSN         string
	Release     string
	Environment string
}

// Scope is the part of a reporting scope that callers may annotate.
type Scope interface {
	SetTag(key, value string)
}

// Client is a crash reporting client. A session lasts from Init to Close;
// CaptureException outside a session is a no-op.
type Client interface {
	Init(opts Options) error
	ConfigureScope(fn func(Scope))
	CaptureException(err error) string
	Close()
}

// Sentry is a Client backed by a Sentry hub.
type Sentry struct {
	mu  sync.Mutex
	hub *sentry.Hub

	// onEvent, when set, receives events instead of the transport.
	onEvent func(*sentry.Event)
}

var _ Client = (*Sentry)(nil)

// NewSentry returns a client bound to hub, or to the current hub if hub is
// nil. Binding to the current hub lets debug.Recover report panics.
func NewSentry(hub *sentry.Hub) *Sentry {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &Sentry{hub: hub}
}

func (s *Sentry) Init(opts Options) error {
	if opts.DSN == "" {
		return errors.New("sentry: empty DSN")
	}

	transport := sentry.NewHTTPSyncTransport()
	transport.Timeout = flushTimeout

	client, err := sentry.NewClient(sentry.ClientOptions{
		AttachStacktrace: true,
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		Transport:        transport,
		BeforeSend:       s.beforeSend,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub.BindClient(client)
	s.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: DeviceID()})
		scope.SetTag(TagExecutionID, ExecutionID)
		scope.SetContext("os", map[string]interface{}{
			"name": OS(),
		})
	})
	return nil
}

func (s *Sentry) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	for i := range event.Exception {
		// edit in place and remove error message from tracking
		event.Exception[i].Value = ""
	}
	if s.onEvent != nil {
		s.onEvent(event)
		return nil
	}
	return event
}

func (s *Sentry) ConfigureScope(fn func(Scope)) {
	s.hub.ConfigureScope(func(scope *sentry.Scope) {
		fn(scope)
	})
}

// CaptureException sends err and returns the event id, or "" if nothing was
// sent.
func (s *Sentry) CaptureException(err error) string {
	if err == nil || s.hub.Client() == nil {
		return ""
	}
	defer s.hub.Flush(flushTimeout)

	eventIDPointer := s.hub.CaptureException(err)
	if eventIDPointer == nil {
		return ""
	}
	return string(*eventIDPointer)
}

// Close flushes pending events and ends the session.
func (s *Sentry) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hub.Client() == nil {
		return
	}
	s.hub.Flush(flushTimeout)
	s.hub.BindClient(nil)
	s.hub.Scope().Clear()
}
