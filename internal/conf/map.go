// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package conf

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Map is an in-memory Store that notifies subscribers when a key changes.
type Map struct {
	mu     sync.RWMutex
	values map[string]any
	subs   map[int]func(key string)
	nextID int
}

var _ Store = (*Map)(nil)

func NewMap(values map[string]any) *Map {
	m := &Map{
		values: make(map[string]any, len(values)),
		subs:   map[int]func(string){},
	}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Map) Get(ctx context.Context, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Map) Set(key string, value any) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	m.notify(key)
}

func (m *Map) Delete(key string) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	m.notify(key)
}

// OnChange registers fn to run after every Set or Delete. The returned
// function removes the subscription.
func (m *Map) OnChange(fn func(key string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Map) notify(key string) {
	m.mu.RLock()
	subs := make([]func(string), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(key)
	}
}
