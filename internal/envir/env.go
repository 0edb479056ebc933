// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package envir

const (
	CrashgateConfig     = "CRASHGATE_CONFIG"
	CrashgateDebug      = "CRASHGATE_DEBUG"
	CrashgateDebugLog   = "CRASHGATE_DEBUG_LOG"
	CrashgateFlagPrefix = "CRASHGATE_FLAG_"
	CrashgateFlagsFile  = "CRASHGATE_FLAGS_FILE"
	// CrashgatePluginDir is searched for plugin manifests (plugin.json).
	CrashgatePluginDir = "CRASHGATE_PLUGIN_DIR"

	DoNotTrackVar = "DO_NOT_TRACK"

	XDGConfigHome = "XDG_CONFIG_HOME"
	XDGStateHome  = "XDG_STATE_HOME"
)

// system
const (
	Home = "HOME"
	CI   = "CI"
)
