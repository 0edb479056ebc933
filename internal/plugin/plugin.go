// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package plugin

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Plugin is an application plugin as seen by crash reporting.
type Plugin struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	// Path is the manifest file the plugin was loaded from, if any.
	Path string `json:"-"`
}

// Registry holds the plugins active in the application.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{plugins: map[string]Plugin{}}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a plugin. Plugins without a name are ignored.
func (r *Registry) Register(p Plugin) {
	if p.Name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name] = p
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plugins, name)
}

// AppPlugins returns the registered plugins sorted by name.
func (r *Registry) AppPlugins() []Plugin {
	r.mu.RLock()
	plugins := lo.Values(r.plugins)
	r.mu.RUnlock()
	slices.SortFunc(plugins, func(a, b Plugin) int {
		return strings.Compare(a.Name, b.Name)
	})
	return plugins
}

// Names returns the sorted plugin names.
func Names(plugins []Plugin) []string {
	names := lo.Map(plugins, func(p Plugin, _ int) string { return p.Name })
	slices.Sort(names)
	return names
}
