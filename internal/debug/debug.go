// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package debug

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.jetify.com/crashgate/internal/envir"
)

var enabled atomic.Bool

func init() {
	enabled.Store(envir.IsDebugEnabled())
}

func IsEnabled() bool { return enabled.Load() }

func Enable() {
	enabled.Store(true)
	log.SetPrefix("[DEBUG] ")
	log.SetFlags(log.Llongfile | log.Ldate | log.Ltime)
	_ = log.Output(2, "Debug mode enabled.")
}

func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// LogToFile sends debug output to a size-rotated file instead of stderr.
// The returned closer releases the file.
func LogToFile(path string) io.Closer {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    2, // megabytes
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
	SetOutput(w)
	return w
}

func Log(format string, v ...any) {
	if !enabled.Load() {
		return
	}
	_ = log.Output(2, fmt.Sprintf(format, v...))
}

// Recover reports a panic to the current Sentry hub. If the crash reporter
// was never initialized the hub has no client and nothing is sent.
func Recover() {
	r := recover()
	if r == nil {
		return
	}

	sentry.CurrentHub().Recover(r)
	if enabled.Load() {
		log.Println("Allowing panic because debug mode is enabled.")
		panic(r)
	}
	fmt.Println("Error:", r)
}

func EarliestStackTrace(err error) error {
	type pkgErrorsStackTracer interface{ StackTrace() errors.StackTrace }
	type runtimeStackTracer interface{ StackTrace() []runtime.Frame }

	var stErr error
	for err != nil {
		//nolint:errorlint
		switch err.(type) {
		case runtimeStackTracer, pkgErrorsStackTracer:
			stErr = err
		}
		err = errors.Unwrap(err)
	}
	return stErr
}
