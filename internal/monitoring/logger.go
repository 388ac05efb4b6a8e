// SPDX-License-Identifier: MIT

// Package monitoring provides the package-level diagnostic logger used by the
// solver engine and the backends. It defaults to slog.Default() but may be
// replaced by SetLogger; tests or embedding applications can redirect or mute it.
package monitoring

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// Logger returns the active logger.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	current.Store(l)
}
