// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package conf is the settings store that crash reporting reads the user's
// privacy preference and editor identity from.
package conf

import (
	"context"
	"strconv"

	"go.jetify.com/crashgate/internal/debug"
)

// Setting keys.
const (
	CrashReportsEnabled = "privacy.crashReports"
	EditorID            = "editor.id"
)

// Store looks up settings. An absent key is reported as a nil value and a nil
// error.
type Store interface {
	Get(ctx context.Context, key string) (any, error)
}

// Bool looks up a boolean setting. Lookup errors, absent keys and values that
// are not booleans all read as false.
func Bool(ctx context.Context, s Store, key string) bool {
	if s == nil {
		return false
	}
	v, err := s.Get(ctx, key)
	if err != nil {
		debug.Log("conf: lookup of %q failed: %v", key, err)
		return false
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// String looks up a string setting, returning "" when it is absent, not a
// string, or the lookup fails.
func String(ctx context.Context, s Store, key string) string {
	if s == nil {
		return ""
	}
	v, err := s.Get(ctx, key)
	if err != nil {
		debug.Log("conf: lookup of %q failed: %v", key, err)
		return ""
	}
	str, _ := v.(string)
	return str
}
