package crashreport

import (
	"context"
	"errors"
	"time"

	"go.jetify.com/crashgate/internal/eventbus"
	"go.jetify.com/crashgate/internal/telemetry"
)

const testVersion = "9.8.7"

type fakeMetadata struct{ version string }

func (m fakeMetadata) Version() string { return m.version }

type mapFlags map[string]string

func (f mapFlags) Get(name string) string { return f[name] }

type tag struct {
	Key   string
	Value string
}

type fakeScope struct{ tags *[]tag }

func (s fakeScope) SetTag(key, value string) {
	*s.tags = append(*s.tags, tag{Key: key, Value: value})
}

type fakeClient struct {
	initErr  error
	inits    []telemetry.Options
	tags     []tag
	captured []error
	closes   int
}

func (c *fakeClient) Init(opts telemetry.Options) error {
	c.inits = append(c.inits, opts)
	return c.initErr
}

func (c *fakeClient) ConfigureScope(fn func(telemetry.Scope)) {
	fn(fakeScope{tags: &c.tags})
}

func (c *fakeClient) CaptureException(err error) string {
	c.captured = append(c.captured, err)
	return ""
}

func (c *fakeClient) Close() { c.closes++ }

type subscription struct {
	name    string
	handler eventbus.Handler
	removed bool
}

type fakeBus struct {
	subs []*subscription
}

func (b *fakeBus) Subscribe(name string, h eventbus.Handler) func() {
	s := &subscription{name: name, handler: h}
	b.subs = append(b.subs, s)
	return func() { s.removed = true }
}

type fakeBackend struct {
	signals []string
	err     error
}

func (b *fakeBackend) Send(signal string) error {
	b.signals = append(b.signals, signal)
	return b.err
}

type fakeScheduler struct {
	calls    int
	interval time.Duration
	fn       func(context.Context)
	stopped  bool
}

func (s *fakeScheduler) Every(_ context.Context, interval time.Duration, fn func(context.Context)) func() {
	s.calls++
	s.interval = interval
	s.fn = fn
	return func() { s.stopped = true }
}

type rejectingStore struct{}

func (rejectingStore) Get(context.Context, string) (any, error) {
	return nil, errors.New("lookup rejected")
}
