// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package build

import (
	"os"
	"strconv"
	"sync"
)

const devVersion = "0.0.0-dev"

var forceProd, _ = strconv.ParseBool(os.Getenv("CRASHGATE_PROD"))

// Variables in this file are set via ldflags.
var (
	Version    = devVersion
	Commit     = "none"
	CommitDate = "unknown"

	// SentryDSN is the default crash reporting endpoint. It is empty unless
	// injected at build time, in which case a flag override still wins.
	SentryDSN = ""
	// TelemetryKey is the Segment Write Key used for backend signals.
	// It is disabled by default.
	TelemetryKey = ""
)

// Keys accepted by Init.
const (
	KeyVersion    = "version"
	KeyCommit     = "commit"
	KeyCommitDate = "commitDate"
)

var mu sync.RWMutex

// Init overrides build metadata. Hosts embedding crashgate use it to report
// their own release instead of crashgate's; tests use it to pin a version.
// Unknown keys are ignored.
func Init(meta map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	for k, v := range meta {
		switch k {
		case KeyVersion:
			Version = v
		case KeyCommit:
			Commit = v
		case KeyCommitDate:
			CommitDate = v
		}
	}
}

func IsDev() bool {
	mu.RLock()
	defer mu.RUnlock()
	return Version == devVersion && !forceProd
}

// Metadata is the process-wide metadata provider.
var Metadata metadata

type metadata struct{}

func (metadata) Version() string {
	mu.RLock()
	defer mu.RUnlock()
	return Version
}

func (metadata) Environment() string {
	if IsDev() {
		return "development"
	}
	return "production"
}
