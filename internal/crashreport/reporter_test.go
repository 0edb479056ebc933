// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package crashreport

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jetify.com/crashgate/internal/backend"
	"go.jetify.com/crashgate/internal/conf"
	"go.jetify.com/crashgate/internal/eventbus"
	"go.jetify.com/crashgate/internal/featureflag"
	"go.jetify.com/crashgate/internal/plugin"
	"go.jetify.com/crashgate/internal/telemetry"
)

var (
	killFlag = featureflag.DisableRemoteInteraction.Name()
	dsnFlag  = featureflag.SentryDSN.Name()
)

type harness struct {
	flags     mapFlags
	settings  *conf.Map
	client    *fakeClient
	bus       *fakeBus
	backend   *fakeBackend
	scheduler *fakeScheduler
	reporter  *Reporter
}

func newHarness(flags mapFlags, settings map[string]any) *harness {
	h := &harness{
		flags:     flags,
		settings:  conf.NewMap(settings),
		client:    &fakeClient{},
		bus:       &fakeBus{},
		backend:   &fakeBackend{},
		scheduler: &fakeScheduler{},
	}
	h.reporter = New(Deps{
		Flags:     h.flags,
		Metadata:  fakeMetadata{version: testVersion},
		Settings:  h.settings,
		Bus:       h.bus,
		Backend:   h.backend,
		Plugins:   plugin.NewRegistry(plugin.Plugin{Name: "lint"}, plugin.Plugin{Name: "git"}),
		Client:    h.client,
		Scheduler: h.scheduler,
	})
	return h
}

func TestMountDoesNotInit(t *testing.T) {
	tests := []struct {
		name     string
		flags    mapFlags
		settings map[string]any
	}{
		{
			name:     "no dsn",
			flags:    mapFlags{},
			settings: map[string]any{conf.CrashReportsEnabled: true},
		},
		{
			name:     "preference absent",
			flags:    mapFlags{dsnFlag: "TEST_DSN"},
			settings: nil,
		},
		{
			name:     "preference false",
			flags:    mapFlags{dsnFlag: "TEST_DSN"},
			settings: map[string]any{conf.CrashReportsEnabled: false},
		},
		{
			name:     "preference null",
			flags:    mapFlags{dsnFlag: "TEST_DSN"},
			settings: map[string]any{conf.CrashReportsEnabled: nil},
		},
		{
			name:     "kill flag",
			flags:    mapFlags{dsnFlag: "TEST_DSN", killFlag: "true"},
			settings: map[string]any{conf.CrashReportsEnabled: true},
		},
		{
			name:     "kill flag without dsn",
			flags:    mapFlags{killFlag: "1"},
			settings: map[string]any{conf.CrashReportsEnabled: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.flags, tt.settings)
			h.reporter.Mount(context.Background())

			assert.Empty(t, h.client.inits)
			assert.Empty(t, h.bus.subs)
			assert.False(t, h.reporter.Active())
		})
	}
}

func TestMountRejectedLookupDoesNotInit(t *testing.T) {
	client := &fakeClient{}
	r := New(Deps{
		Flags:    mapFlags{dsnFlag: "TEST_DSN"},
		Metadata: fakeMetadata{version: testVersion},
		Settings: rejectingStore{},
		Bus:      &fakeBus{},
		Client:   client,
	})
	r.Mount(context.Background())
	assert.Empty(t, client.inits)
}

func TestMountInitializes(t *testing.T) {
	h := newHarness(
		mapFlags{dsnFlag: "TEST_DSN"},
		map[string]any{conf.CrashReportsEnabled: true, conf.EditorID: "editor-42"},
	)
	h.reporter.Mount(context.Background())

	want := []telemetry.Options{{DSN: "TEST_DSN", Release: testVersion}}
	if diff := cmp.Diff(want, h.client.inits); diff != "" {
		t.Errorf("init calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []tag{
		{Key: TagEditorID, Value: "editor-42"},
		{Key: TagPlugins, Value: "git,lint"},
	}, h.client.tags)
	assert.True(t, h.reporter.Active())
	assert.Empty(t, h.backend.signals)
}

func TestMountSubscribesOnceAndForwards(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	h.reporter.Mount(context.Background())
	h.reporter.Mount(context.Background())

	require.Len(t, h.bus.subs, 1)
	sub := h.bus.subs[0]
	assert.Equal(t, eventbus.ErrorHandled, sub.name)

	errBoom := errors.New("boom")
	sub.handler(eventbus.Event{Name: eventbus.ErrorHandled, Payload: errBoom})
	sub.handler(eventbus.Event{Name: eventbus.ErrorHandled, Payload: "not an error"})

	require.Len(t, h.client.captured, 1)
	assert.Same(t, errBoom, h.client.captured[0])
}

func TestMountInitFailureLeavesInactive(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	h.client.initErr = errors.New("bad dsn")
	h.reporter.Mount(context.Background())

	assert.Len(t, h.client.inits, 1)
	assert.Empty(t, h.client.tags)
	assert.Empty(t, h.bus.subs)
	assert.False(t, h.reporter.Active())
}

func TestDefaultDSN(t *testing.T) {
	client := &fakeClient{}
	r := New(Deps{
		Metadata:   fakeMetadata{version: testVersion},
		Settings:   conf.NewMap(map[string]any{conf.CrashReportsEnabled: true}),
		Bus:        &fakeBus{},
		Client:     client,
		DefaultDSN: "BUILD_DSN",
	})
	r.Mount(context.Background())
	require.Len(t, client.inits, 1)
	assert.Equal(t, "BUILD_DSN", client.inits[0].DSN)

	client = &fakeClient{}
	r = New(Deps{
		Flags:      mapFlags{dsnFlag: "FLAG_DSN"},
		Metadata:   fakeMetadata{version: testVersion},
		Settings:   conf.NewMap(map[string]any{conf.CrashReportsEnabled: true}),
		Bus:        &fakeBus{},
		Client:     client,
		DefaultDSN: "BUILD_DSN",
	})
	r.Mount(context.Background())
	require.Len(t, client.inits, 1)
	assert.Equal(t, "FLAG_DSN", client.inits[0].DSN)
}

func TestMountSchedulesRecheck(t *testing.T) {
	h := newHarness(mapFlags{}, nil)
	h.reporter.Mount(context.Background())

	assert.Equal(t, 1, h.scheduler.calls)
	assert.Equal(t, DefaultRecheckInterval, h.scheduler.interval)
	require.NotNil(t, h.scheduler.fn)
}

func TestKillFlagNeverSchedulesRecheck(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN", killFlag: "true"}, nil)
	h.reporter.Mount(context.Background())
	assert.Equal(t, 0, h.scheduler.calls)

	h.settings.Set(conf.CrashReportsEnabled, true)
	h.reporter.Recheck(context.Background())
	assert.Empty(t, h.client.inits)
	assert.Empty(t, h.backend.signals)
}

func TestRecheckTurnsOn(t *testing.T) {
	h := newHarness(
		mapFlags{dsnFlag: "TEST_DSN"},
		map[string]any{conf.CrashReportsEnabled: false, conf.EditorID: "ed"},
	)
	ctx := context.Background()
	h.reporter.Mount(ctx)
	assert.Empty(t, h.client.inits)

	h.settings.Set(conf.CrashReportsEnabled, true)
	h.scheduler.fn(ctx)
	h.scheduler.fn(ctx)

	assert.Equal(t, []telemetry.Options{{DSN: "TEST_DSN", Release: testVersion}}, h.client.inits)
	assert.Equal(t, []string{backend.CrashReportsTurnedOn}, h.backend.signals)
	assert.Len(t, h.bus.subs, 1)
	assert.True(t, h.reporter.Active())
	assert.Equal(t, 0, h.client.closes)
}

func TestRecheckTurnsOff(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	ctx := context.Background()
	h.reporter.Mount(ctx)
	require.True(t, h.reporter.Active())

	h.settings.Set(conf.CrashReportsEnabled, false)
	h.reporter.Recheck(ctx)
	h.reporter.Recheck(ctx)

	assert.Equal(t, 1, h.client.closes)
	assert.Equal(t, []string{backend.CrashReportsTurnedOff}, h.backend.signals)
	assert.False(t, h.reporter.Active())
	require.Len(t, h.bus.subs, 1)
	assert.True(t, h.bus.subs[0].removed)
}

func TestRecheckUnchanged(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: enabled})
		ctx := context.Background()
		h.reporter.Mount(ctx)
		inits := len(h.client.inits)

		h.reporter.Recheck(ctx)

		assert.Len(t, h.client.inits, inits)
		assert.Equal(t, 0, h.client.closes)
		assert.Empty(t, h.backend.signals)
	}
}

func TestRecheckAbsentToTrue(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, nil)
	ctx := context.Background()
	h.reporter.Mount(ctx)

	h.settings.Set(conf.CrashReportsEnabled, true)
	h.reporter.Recheck(ctx)

	assert.Len(t, h.client.inits, 1)
	assert.Equal(t, []string{backend.CrashReportsTurnedOn}, h.backend.signals)
}

func TestRecheckToggleCycle(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	ctx := context.Background()
	h.reporter.Mount(ctx)

	h.settings.Set(conf.CrashReportsEnabled, false)
	h.reporter.Recheck(ctx)
	h.settings.Set(conf.CrashReportsEnabled, true)
	h.reporter.Recheck(ctx)

	assert.Len(t, h.client.inits, 2)
	assert.Equal(t, 1, h.client.closes)
	assert.Equal(t, []string{backend.CrashReportsTurnedOff, backend.CrashReportsTurnedOn}, h.backend.signals)
	assert.Len(t, h.bus.subs, 2)
	assert.True(t, h.reporter.Active())
}

func TestRecheckWithoutDSNSignalsOnly(t *testing.T) {
	h := newHarness(mapFlags{}, nil)
	ctx := context.Background()
	h.reporter.Mount(ctx)

	h.settings.Set(conf.CrashReportsEnabled, true)
	h.reporter.Recheck(ctx)

	assert.Empty(t, h.client.inits)
	assert.Equal(t, []string{backend.CrashReportsTurnedOn}, h.backend.signals)
}

func TestRecheckBeforeMount(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	h.reporter.Recheck(context.Background())
	assert.Empty(t, h.client.inits)
	assert.Empty(t, h.backend.signals)
}

func TestBackendErrorIsIgnored(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, nil)
	h.backend.err = errors.New("offline")
	ctx := context.Background()
	h.reporter.Mount(ctx)

	h.settings.Set(conf.CrashReportsEnabled, true)
	assert.NotPanics(t, func() { h.reporter.Recheck(ctx) })
	assert.True(t, h.reporter.Active())
}

func TestUnmount(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	ctx := context.Background()
	h.reporter.Mount(ctx)
	h.reporter.Unmount()

	assert.True(t, h.scheduler.stopped)
	assert.Equal(t, 1, h.client.closes)
	assert.True(t, h.bus.subs[0].removed)
	assert.False(t, h.reporter.Active())

	// A re-check that was already in flight must not restart reporting.
	h.reporter.Recheck(ctx)
	assert.Len(t, h.client.inits, 1)
}

func TestRecheckCanceledContext(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	h.reporter.Mount(context.Background())
	require.True(t, h.reporter.Active())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.reporter.Recheck(ctx)

	assert.True(t, h.reporter.Active())
	assert.Equal(t, 0, h.client.closes)
	assert.Empty(t, h.backend.signals)

	// The preference is still read normally afterwards.
	h.settings.Set(conf.CrashReportsEnabled, false)
	h.reporter.Recheck(context.Background())
	assert.Equal(t, []string{backend.CrashReportsTurnedOff}, h.backend.signals)
}

func TestForwardAfterUnmountIsIgnored(t *testing.T) {
	h := newHarness(mapFlags{dsnFlag: "TEST_DSN"}, map[string]any{conf.CrashReportsEnabled: true})
	h.reporter.Mount(context.Background())
	require.Len(t, h.bus.subs, 1)
	handler := h.bus.subs[0].handler

	h.reporter.Unmount()
	handler(eventbus.Event{Name: eventbus.ErrorHandled, Payload: errors.New("late")})

	assert.Empty(t, h.client.captured)
}

func TestWithEventBus(t *testing.T) {
	bus := eventbus.New()
	client := &fakeClient{}
	settings := conf.NewMap(map[string]any{conf.CrashReportsEnabled: true})
	r := New(Deps{
		Flags:    mapFlags{dsnFlag: "TEST_DSN"},
		Metadata: fakeMetadata{version: testVersion},
		Settings: settings,
		Bus:      bus,
		Client:   client,
	})
	ctx := context.Background()
	r.Mount(ctx)

	errHandled := errors.New("handled")
	bus.Publish(eventbus.ErrorHandled, errHandled)
	assert.Equal(t, []error{errHandled}, client.captured)

	settings.Set(conf.CrashReportsEnabled, false)
	r.Recheck(ctx)
	bus.Publish(eventbus.ErrorHandled, errors.New("after close"))
	assert.Equal(t, []error{errHandled}, client.captured)
	assert.Equal(t, 0, bus.SubscriberCount(eventbus.ErrorHandled))
}

func TestWithGlobalFlagStore(t *testing.T) {
	featureflag.InitForTest(t, map[string]string{
		dsnFlag:  "TEST_DSN",
		killFlag: "false",
	})
	client := &fakeClient{}
	r := New(Deps{
		Flags:    featureflag.Global,
		Metadata: fakeMetadata{version: testVersion},
		Settings: conf.NewMap(map[string]any{conf.CrashReportsEnabled: true}),
		Bus:      eventbus.New(),
		Client:   client,
	})
	r.Mount(context.Background())
	assert.Equal(t, []telemetry.Options{{DSN: "TEST_DSN", Release: testVersion}}, client.inits)
}

func TestTickerScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan struct{}, 4)
	stop := TickerScheduler{}.Every(ctx, time.Millisecond, func(context.Context) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer stop()

	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler never ran")
	}
}

func TestTickerSchedulerStops(t *testing.T) {
	var runs atomic.Int32
	started := make(chan struct{})
	stop := TickerScheduler{}.Every(context.Background(), time.Millisecond, func(context.Context) {
		if runs.Add(1) == 1 {
			close(started)
		}
	})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler never ran")
	}
	stop()

	time.Sleep(20 * time.Millisecond)
	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}
