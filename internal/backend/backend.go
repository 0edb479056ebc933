// Copyright 2026 Jetify Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package backend tells the product backend about changes to the user's crash
// reporting choice.
package backend

// Signals sent when the user changes the crash reporting preference.
const (
	CrashReportsTurnedOn  = "crash_reports_turned_on"
	CrashReportsTurnedOff = "crash_reports_turned_off"
)

// Sender delivers a named signal to the backend. Delivery is best effort.
type Sender interface {
	Send(signal string) error
}
