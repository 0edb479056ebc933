// Copyright 2026 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package eventbus is a small in-process publish/subscribe bus. Handlers run
// synchronously on the publishing goroutine, in subscription order.
package eventbus

import (
	"sync"

	"go.jetify.com/crashgate/internal/debug"
)

// Event names published by the host application.
const (
	// ErrorHandled carries an error that the application caught and
	// recovered from. The payload is the error.
	ErrorHandled = "error.handled"

	// Wildcard subscribers receive every event.
	Wildcard = "*"
)

type Event struct {
	Name    string
	Payload any
}

type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID int
}

func New() *Bus {
	return &Bus{subs: map[string][]subscription{}}
}

// Subscribe registers h for events named name, or for every event if name is
// Wildcard. The returned function removes the subscription and is safe to
// call more than once.
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[name]) == 0 {
		delete(b.subs, name)
	}
}

// Publish delivers the event to its subscribers. A panicking handler is
// logged and does not stop delivery to the others.
func (b *Bus) Publish(name string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[name])+len(b.subs[Wildcard]))
	for _, s := range b.subs[name] {
		handlers = append(handlers, s.handler)
	}
	if name != Wildcard {
		for _, s := range b.subs[Wildcard] {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	evt := Event{Name: name, Payload: payload}
	for _, h := range handlers {
		b.dispatch(h, evt)
	}
}

func (b *Bus) dispatch(h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			debug.Log("eventbus: handler for %q panicked: %v", evt.Name, r)
		}
	}()
	h(evt)
}

// SubscriberCount returns how many handlers are registered for name, not
// counting wildcard handlers.
func (b *Bus) SubscriberCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
