// SPDX-License-Identifier: MIT

//go:build !opencl

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/sonora/backend"
)

func TestOpenCL_Disabled(t *testing.T) {
	_, err := backend.NewOpenCLDriver()
	assert.ErrorIs(t, err, backend.ErrUnavailable)

	_, err = backend.Open(backend.OpenCLName)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}
