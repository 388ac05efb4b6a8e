// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"

	"github.com/katalvlaran/sonora/internal/errcat"
)

// ErrBackend is the category every numeric failure of this package matches.
var ErrBackend = errcat.ErrBackend

// Numeric sentinels (category ErrBackend).
var (
	// ErrDimensionMismatch signals incompatible operand shapes.
	ErrDimensionMismatch = errcat.Backend("backend: dimension mismatch")

	// ErrSingular signals a singular or numerically singular system.
	ErrSingular = errcat.Backend("backend: singular matrix")

	// ErrEigenFailed signals a failed eigendecomposition.
	ErrEigenFailed = errcat.Backend("backend: eigen decomposition failed")

	// ErrUnavailable is returned when a backend or driver cannot run on this
	// system (no device, driver missing, build tag not set).
	ErrUnavailable = errcat.Backend("backend: unavailable")

	// ErrClosed is returned by a Context used after Close.
	ErrClosed = errcat.Backend("backend: context closed")

	// ErrOutOfMemory is returned when a device allocation fails.
	ErrOutOfMemory = errcat.Backend("backend: device allocation failed")
)

// ErrUnknownBackend is returned by Open for an unregistered name. It is a
// configuration error, not a numeric one.
var ErrUnknownBackend = errcat.Configuration("backend: unknown backend")

// Error records the primitive that failed.
type Error struct {
	// Backend is the backend name ("cpu", "mock", "opencl").
	Backend string
	// Op is the primitive ("gemv", "gemm", "eigen", "solve", ...).
	Op string
	// Err is the underlying sentinel or driver error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrBackend even when Err comes from a driver.
func (e *Error) Is(target error) bool { return target == ErrBackend }

func opError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Err: err}
}
