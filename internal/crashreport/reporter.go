// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package crashreport turns crash reporting on and off according to the
// user's privacy preference.
//
// Reporting starts only when remote interaction is allowed, a reporting
// endpoint (DSN) is configured, and the user has opted in. While a session is
// active, errors published on the application's event bus as
// [eventbus.ErrorHandled] are sent to the crash reporter.
package crashreport

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"go.jetify.com/crashgate/internal/backend"
	"go.jetify.com/crashgate/internal/conf"
	"go.jetify.com/crashgate/internal/debug"
	"go.jetify.com/crashgate/internal/eventbus"
	"go.jetify.com/crashgate/internal/featureflag"
	"go.jetify.com/crashgate/internal/plugin"
	"go.jetify.com/crashgate/internal/telemetry"
)

const DefaultRecheckInterval = 30 * time.Second

// Scope tag keys.
const (
	TagEditorID = "editor-id"
	TagPlugins  = "plugins"
)

type FlagStore interface {
	Get(name string) string
}

type Metadata interface {
	Version() string
}

type Bus interface {
	Subscribe(name string, h eventbus.Handler) (unsubscribe func())
}

type PluginLister interface {
	AppPlugins() []plugin.Plugin
}

// Deps are the collaborators a Reporter is wired to. Backend, Plugins and
// Scheduler may be nil.
type Deps struct {
	Flags     FlagStore
	Metadata  Metadata
	Settings  conf.Store
	Bus       Bus
	Backend   backend.Sender
	Plugins   PluginLister
	Client    telemetry.Client
	Scheduler Scheduler

	// RecheckInterval defaults to DefaultRecheckInterval.
	RecheckInterval time.Duration
	// DefaultDSN is used when the SENTRY_DSN flag is unset.
	DefaultDSN string
}

type sessionState int

const (
	inactive sessionState = iota
	active
)

// Reporter owns at most one crash reporting session.
type Reporter struct {
	deps Deps

	mu          sync.Mutex
	mounted     bool
	killed      bool
	dsn         string
	enabled     bool // last observed preference
	state       sessionState
	unsubscribe func()
	stopRecheck func()

	// capturing mirrors state == active for forward, which runs on the
	// publisher's goroutine without r.mu.
	capturing atomic.Bool
}

func New(deps Deps) *Reporter {
	if deps.RecheckInterval <= 0 {
		deps.RecheckInterval = DefaultRecheckInterval
	}
	return &Reporter{deps: deps}
}

// Mount reads the flags and the preference, starts a session if everything
// allows it, and schedules periodic re-checks of the preference. When remote
// interaction is disabled nothing happens, not even the re-check schedule.
// Mount never fails; unmet preconditions leave reporting off.
func (r *Reporter) Mount(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted {
		return
	}
	r.mounted = true

	r.killed = r.flagEnabled(featureflag.DisableRemoteInteraction.Name())
	if r.killed {
		debug.Log("crashreport: remote interaction disabled, not reporting")
		return
	}

	r.dsn = r.flag(featureflag.SentryDSN.Name())
	if r.dsn == "" {
		r.dsn = r.deps.DefaultDSN
	}
	r.enabled = conf.Bool(ctx, r.deps.Settings, conf.CrashReportsEnabled)
	if r.dsn != "" && r.enabled {
		r.start(ctx)
	} else {
		debug.Log("crashreport: not starting (dsn set: %t, opted in: %t)", r.dsn != "", r.enabled)
	}

	if r.deps.Scheduler != nil {
		r.stopRecheck = r.deps.Scheduler.Every(ctx, r.deps.RecheckInterval, r.Recheck)
	}
}

// Recheck reads the preference again and acts on a change: turning it on
// starts a session and sends backend.CrashReportsTurnedOn, turning it off
// closes the session and sends backend.CrashReportsTurnedOff. An unchanged
// preference does nothing, and so does a re-check whose ctx is already done.
func (r *Reporter) Recheck(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted || r.killed {
		return
	}
	if ctx.Err() != nil {
		debug.Log("crashreport: skipping re-check: %v", ctx.Err())
		return
	}

	enabled := conf.Bool(ctx, r.deps.Settings, conf.CrashReportsEnabled)
	if enabled == r.enabled {
		return
	}
	r.enabled = enabled

	if enabled {
		if r.state == inactive && r.dsn != "" {
			r.start(ctx)
		}
		r.signal(backend.CrashReportsTurnedOn)
		return
	}
	if r.state == active {
		r.stop()
	}
	r.signal(backend.CrashReportsTurnedOff)
}

// Unmount cancels the re-check schedule and closes any active session.
func (r *Reporter) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopRecheck != nil {
		r.stopRecheck()
		r.stopRecheck = nil
	}
	if r.state == active {
		r.stop()
	}
	r.mounted = false
}

// Active reports whether a session is running.
func (r *Reporter) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == active
}

func (r *Reporter) start(ctx context.Context) {
	opts := telemetry.Options{
		DSN:     r.dsn,
		Release: r.deps.Metadata.Version(),
	}
	if env, ok := r.deps.Metadata.(interface{ Environment() string }); ok {
		opts.Environment = env.Environment()
	}
	if err := r.deps.Client.Init(opts); err != nil {
		debug.Log("crashreport: init failed: %v", err)
		return
	}

	tags := r.scopeTags(ctx)
	r.deps.Client.ConfigureScope(func(scope telemetry.Scope) {
		for pair := tags.Oldest(); pair != nil; pair = pair.Next() {
			scope.SetTag(pair.Key, pair.Value)
		}
	})

	r.capturing.Store(true)
	r.unsubscribe = r.deps.Bus.Subscribe(eventbus.ErrorHandled, r.forward)
	r.state = active
	debug.Log("crashreport: session started (release %s)", opts.Release)
}

func (r *Reporter) stop() {
	r.capturing.Store(false)
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.deps.Client.Close()
	r.state = inactive
	debug.Log("crashreport: session closed")
}

func (r *Reporter) forward(evt eventbus.Event) {
	if !r.capturing.Load() {
		// Delivered after the session closed.
		return
	}
	err, ok := evt.Payload.(error)
	if !ok || err == nil {
		debug.Log("crashreport: ignoring %s event with %T payload", evt.Name, evt.Payload)
		return
	}
	r.deps.Client.CaptureException(err)
}

func (r *Reporter) scopeTags(ctx context.Context) *orderedmap.OrderedMap[string, string] {
	tags := orderedmap.New[string, string]()
	tags.Set(TagEditorID, conf.String(ctx, r.deps.Settings, conf.EditorID))

	var plugins []plugin.Plugin
	if r.deps.Plugins != nil {
		plugins = r.deps.Plugins.AppPlugins()
	}
	tags.Set(TagPlugins, strings.Join(plugin.Names(plugins), ","))
	return tags
}

func (r *Reporter) signal(name string) {
	if r.deps.Backend == nil {
		return
	}
	if err := r.deps.Backend.Send(name); err != nil {
		debug.Log("crashreport: sending %s: %v", name, err)
	}
}

func (r *Reporter) flag(name string) string {
	if r.deps.Flags == nil {
		return ""
	}
	return r.deps.Flags.Get(name)
}

func (r *Reporter) flagEnabled(name string) bool {
	on, _ := strconv.ParseBool(r.flag(name))
	return on
}
