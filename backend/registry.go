// SPDX-License-Identifier: MIT
// registry.go - name → Backend factories.
//
// Notes:
//   - Built-ins: cpu, mock, opencl. The opencl factory fails with
//     ErrUnavailable unless built with -tags opencl.
//   - Safe for concurrent use.

package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a backend on demand.
type Factory func() (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		CPUName:    func() (Backend, error) { return NewCPU(), nil },
		MockName:   func() (Backend, error) { return NewDevice(NewMockDriver()), nil },
		OpenCLName: openOpenCL,
	}
)

// Register installs f under name, replacing any previous factory.
// Panics on an empty name or nil factory.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		panic("backend: Register(empty name or nil factory)")
	}
	registryMu.Lock()
	registry[name] = f
	registryMu.Unlock()
}

// Open constructs the backend registered under name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	b, err := f()
	if err != nil {
		return nil, fmt.Errorf("backend: open %q: %w", name, err)
	}
	return b, nil
}

// Names lists the registered backends in lexical order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
