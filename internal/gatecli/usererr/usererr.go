// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package usererr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type level int

const (
	levelError level = iota
	levelWarning
)

type combined struct {
	source      error
	userMessage string
	level       level
}

// New creates a user error with the given message. User errors describe a
// mistake the user can fix, so they are never sent as crash reports.
func New(msg string, args ...any) error {
	return errors.WithStack(&combined{
		userMessage: fmt.Sprintf(msg, args...),
	})
}

func NewWarning(msg string, args ...any) error {
	return errors.WithStack(&combined{
		userMessage: fmt.Sprintf(msg, args...),
		level:       levelWarning,
	})
}

func WithUserMessage(source error, msg string, args ...any) error {
	// Keep the innermost user message; it is the most specific.
	if source == nil || hasUserMessage(source) {
		return source
	}
	return &combined{
		source:      source,
		userMessage: fmt.Sprintf(msg, args...),
	}
}

// Extract unwraps and returns the user error if it exists.
func Extract(err error) (error, bool) { // nolint: revive
	c := &combined{}
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// ShouldReport is true for errors that are not user errors.
func ShouldReport(err error) bool {
	return err != nil && !hasUserMessage(err)
}

func IsWarning(err error) bool {
	c := &combined{}
	if errors.As(err, &c) {
		return c.level == levelWarning
	}
	return false
}

func (c *combined) Error() string {
	if c.source == nil {
		return c.userMessage
	}
	return c.userMessage + "\nsource: " + c.source.Error()
}

func (c *combined) Is(target error) bool {
	return errors.Is(c.source, target)
}

func (c *combined) Unwrap() error { return c.source }

// Format allows us to use %+v as implemented by github.com/pkg/errors.
func (c *combined) Format(s fmt.State, verb rune) {
	if c.source == nil {
		_, _ = io.WriteString(s, c.userMessage)
		return
	}
	errors.Wrap(c.source, c.userMessage).(interface { //nolint:errorlint
		Format(s fmt.State, verb rune)
	}).Format(s, verb)
}

func hasUserMessage(err error) bool {
	_, hasUserMessage := Extract(err)
	return hasUserMessage
}
