// SPDX-License-Identifier: MIT

//go:build !opencl

package backend

import "fmt"

// OpenCLName is the registry name of the device backend over OpenCL.
const OpenCLName = "opencl"

// NewOpenCLDriver reports that OpenCL support was not compiled in.
func NewOpenCLDriver() (Driver, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", ErrUnavailable)
}

func openOpenCL() (Backend, error) {
	_, err := NewOpenCLDriver()
	return nil, err
}
