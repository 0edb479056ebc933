// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package featureflag is the process-wide flag store. Flag values resolve in
// this order: values set with Init (or loaded with LoadFile), then the
// CRASHGATE_FLAG_<NAME> environment variable, then the flag's default.
package featureflag

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"go.jetify.com/crashgate/internal/debug"
	"go.jetify.com/crashgate/internal/envir"
)

type Flag struct {
	name string
	def  func() string
}

var (
	mu        sync.RWMutex
	flags     = map[string]*Flag{}
	overrides = map[string]string{}
	logMap    = map[string]bool{}
)

func define(name, def string) *Flag {
	return defineFunc(name, func() string { return def })
}

// defineFunc declares a flag whose default is computed on every lookup.
func defineFunc(name string, def func() string) *Flag {
	mu.Lock()
	defer mu.Unlock()
	if flags[name] == nil {
		flags[name] = &Flag{name: name}
	}
	flags[name].def = def
	return flags[name]
}

func (f *Flag) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

// Value returns the resolved value of the flag, or "" if it is unset.
func (f *Flag) Value() string {
	if f == nil {
		return ""
	}
	return Get(f.name)
}

// Enabled reports whether the flag is set to a true boolean value.
func (f *Flag) Enabled() bool {
	if f == nil {
		return false
	}
	return Bool(f.name)
}

func (f *Flag) SetForTest(t *testing.T, value string) {
	t.Setenv(envir.CrashgateFlagPrefix+f.name, value)
}

// Get returns the value of the named flag. Unknown flags may still be set
// through Init or the environment.
func Get(name string) string {
	mu.RLock()
	v, ok := overrides[name]
	f := flags[name]
	mu.RUnlock()
	if ok {
		return v
	}

	if v, ok := os.LookupEnv(envir.CrashgateFlagPrefix + name); ok {
		mu.Lock()
		if !logMap[name] {
			debug.Log("Flag %q set to %q via environment variable.", name, v)
			logMap[name] = true
		}
		mu.Unlock()
		return v
	}
	if f != nil && f.def != nil {
		return f.def()
	}
	return ""
}

func Bool(name string) bool {
	on, _ := strconv.ParseBool(Get(name))
	return on
}

// Init sets flag values, replacing earlier values for the same names.
func Init(values map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	for k, v := range values {
		overrides[k] = v
	}
}

// Reset drops every value set with Init or LoadFile.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	overrides = map[string]string{}
	logMap = map[string]bool{}
}

// InitForTest is Init followed by a Reset when the test ends.
func InitForTest(t *testing.T, values map[string]string) {
	t.Helper()
	Reset()
	Init(values)
	t.Cleanup(Reset)
}

// LoadFile reads flags from a dotenv file. Keys may be given with or without
// the CRASHGATE_FLAG_ prefix.
func LoadFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return errors.WithStack(err)
	}
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		normalized[strings.TrimPrefix(k, envir.CrashgateFlagPrefix)] = v
	}
	Init(normalized)
	debug.Log("Loaded %d flags from %s", len(normalized), path)
	return nil
}

// Global exposes the package-level store to code that takes a flag store as
// a dependency.
var Global global

type global struct{}

func (global) Get(name string) string { return Get(name) }

// All returns the resolved value of every known flag.
func All() map[string]string {
	mu.RLock()
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	mu.RUnlock()

	m := make(map[string]string, len(names))
	for _, name := range names {
		m[name] = Get(name)
	}
	return m
}
