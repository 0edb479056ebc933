// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package featureflag

import (
	"strconv"

	"go.jetify.com/crashgate/internal/envir"
)

// DisableRemoteInteraction is the kill switch for anything that talks to a
// remote service. When it is on, crash reporting never starts and the
// preference is never re-checked. It defaults to on when DO_NOT_TRACK is set.
var DisableRemoteInteraction = defineFunc("DISABLE_REMOTE_INTERACTION", func() string {
	return strconv.FormatBool(envir.DoNotTrack())
})

// SentryDSN overrides the crash reporting endpoint.
var SentryDSN = define("SENTRY_DSN", "")
