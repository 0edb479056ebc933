// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package envir

import (
	"os"
	"strconv"
)

func DoNotTrack() bool {
	// https://consoledonottrack.com/
	doNotTrack, _ := strconv.ParseBool(os.Getenv(DoNotTrackVar))
	return doNotTrack
}

func IsDebugEnabled() bool {
	enabled, _ := strconv.ParseBool(os.Getenv(CrashgateDebug))
	return enabled
}

func IsCI() bool {
	ci, err := strconv.ParseBool(os.Getenv(CI))
	return ci && err == nil
}
