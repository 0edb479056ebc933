// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package crashreport

import (
	"context"
	"time"
)

// Scheduler runs fn periodically until the returned stop function is called
// or ctx is done.
type Scheduler interface {
	Every(ctx context.Context, interval time.Duration, fn func(context.Context)) (stop func())
}

// TickerScheduler runs fn on a time.Ticker. Runs never overlap: a tick that
// arrives while fn is running is dropped.
type TickerScheduler struct{}

func (TickerScheduler) Every(ctx context.Context, interval time.Duration, fn func(context.Context)) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Both cases may be ready at once; never run after cancel.
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return cancel
}
