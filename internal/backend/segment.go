// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package backend

import (
	"io"
	"log"

	"github.com/pkg/errors"
	segment "github.com/segmentio/analytics-go"

	"go.jetify.com/crashgate/internal/telemetry"
)

type SegmentOpts struct {
	AppName    string
	AppVersion string
	// Endpoint overrides the Segment API host.
	Endpoint string
}

// Segment sends signals as Segment track events. A Segment with an empty write
// key drops every signal.
type Segment struct {
	client segment.Client
	opts   SegmentOpts
}

var _ Sender = (*Segment)(nil)

// NewSegment returns a Sender for the given write key. Callers are
// responsible for calling Close.
func NewSegment(writeKey string, opts SegmentOpts) (*Segment, error) {
	s := &Segment{opts: opts}
	if writeKey == "" {
		return s, nil
	}
	client, err := segment.NewWithConfig(writeKey, segment.Config{
		BatchSize: 1, /* no batching */
		Endpoint:  opts.Endpoint,
		// Discard logs:
		Logger:  segment.StdLogger(log.New(io.Discard, "" /* prefix */, 0)),
		Verbose: false,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.client = client
	return s, nil
}

func (s *Segment) Send(signal string) error {
	if s.client == nil {
		return nil
	}
	deviceID := telemetry.DeviceID()
	err := s.client.Enqueue(segment.Track{
		AnonymousId: deviceID,
		Event:       signal,
		Context: &segment.Context{
			Device: segment.DeviceInfo{
				Id: deviceID,
			},
			App: segment.AppInfo{
				Name:    s.opts.AppName,
				Version: s.opts.AppVersion,
			},
			OS: segment.OSInfo{
				Name: telemetry.OS(),
			},
		},
		Properties: segment.NewProperties().
			Set("execution_id", telemetry.ExecutionID),
	})
	return errors.WithStack(err)
}

// Close flushes queued signals.
func (s *Segment) Close() error {
	if s.client == nil {
		return nil
	}
	return errors.WithStack(s.client.Close())
}
