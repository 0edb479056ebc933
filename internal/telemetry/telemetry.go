// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package telemetry

import (
	"os"
	"runtime"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// ExecutionID identifies this process in crash reports and backend events.
// It is formatted as a Sentry event id (32 hex characters).
var ExecutionID = strings.ReplaceAll(uuid.NewString(), "-", "")

func DeviceID() string {
	salt := "3f1c7b52-8e0a-4d36-9b7e-5a2d61c4e0f9"
	hashedID, _ := machineid.ProtectedID(salt) // Ensure machine id is hashed and non-identifiable
	return hashedID
}

func OS() string {
	os := runtime.GOOS
	// Special case for WSL, which is reported as 'linux' otherwise.
	if exists("/proc/sys/fs/binfmt_misc/WSLInterop") || exists("/run/WSL") {
		os = "wsl"
	}
	return os
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
