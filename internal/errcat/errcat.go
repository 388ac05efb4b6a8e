// SPDX-License-Identifier: MIT

// Package errcat holds the error categories shared by every sonora package.
// Package-level sentinels wrap one of these so callers can branch on the
// category with errors.Is without knowing the concrete sentinel.
package errcat

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid caller input: empty geometry, empty focus
	// set, singular distances, bad parameters. Never retried internally.
	ErrConfiguration = errors.New("configuration error")

	// ErrBackend marks a numeric failure inside a backend primitive.
	ErrBackend = errors.New("backend error")
)

// Configuration returns a sentinel with message msg that matches ErrConfiguration.
func Configuration(msg string) error {
	return &categorized{msg: msg, cat: ErrConfiguration}
}

// Backend returns a sentinel with message msg that matches ErrBackend.
func Backend(msg string) error {
	return &categorized{msg: msg, cat: ErrBackend}
}

type categorized struct {
	msg string
	cat error
}

func (e *categorized) Error() string { return e.msg }

// Is reports whether target is the category of e.
func (e *categorized) Is(target error) bool { return target == e.cat }

// Wrapf formats a message and wraps err, keeping both err and its category
// reachable through errors.Is.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
