// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package xdg

import (
	"os"
	"path/filepath"

	"go.jetify.com/crashgate/internal/envir"
)

const appDir = "crashgate"

func ConfigSubpath(subpath string) string {
	return filepath.Join(configDir(), appDir, subpath)
}

func StateSubpath(subpath string) string {
	return filepath.Join(stateDir(), appDir, subpath)
}

// SettingsPath is the user settings file, unless CRASHGATE_CONFIG names
// another one.
func SettingsPath() string {
	if p := os.Getenv(envir.CrashgateConfig); p != "" {
		return p
	}
	return ConfigSubpath("settings.json")
}

func configDir() string { return resolveDir(envir.XDGConfigHome, ".config") }
func stateDir() string  { return resolveDir(envir.XDGStateHome, ".local/state") }

func resolveDir(envvar, defaultPath string) string {
	dir := os.Getenv(envvar)
	if dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}

	return filepath.Join(home, defaultPath)
}
