// SPDX-License-Identifier: MIT

//go:build opencl

package backend

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
	"gonum.org/v1/gonum/blas"
)

// OpenCLName is the registry name of the device backend over OpenCL.
const OpenCLName = "opencl"

const zgemmSource = `
#pragma OPENCL EXTENSION cl_khr_fp64 : enable

inline double2 cmul(double2 a, double2 b) {
	return (double2)(a.x * b.x - a.y * b.y, a.x * b.y + a.y * b.x);
}

inline double2 op_at(__global const double2* x, int t, int ld, int i, int j) {
	if (t == 0) {
		return x[i * ld + j];
	}
	double2 v = x[j * ld + i];
	if (t == 2) {
		v.y = -v.y;
	}
	return v;
}

__kernel void zgemm(
	int ta, int tb, int m, int n, int k, int lda, int ldb, int ldc,
	__global const double2* a,
	__global const double2* b,
	__global double2* c,
	__global const double2* scal)
{
	int i = get_global_id(0);
	int j = get_global_id(1);
	if (i >= m || j >= n) {
		return;
	}
	double2 sum = (double2)(0.0, 0.0);
	for (int l = 0; l < k; ++l) {
		sum += cmul(op_at(a, ta, lda, i, l), op_at(b, tb, ldb, l, j));
	}
	double2 beta = scal[1];
	double2 r = cmul(scal[0], sum);
	if (beta.x != 0.0 || beta.y != 0.0) {
		r += cmul(beta, c[i * ldc + j]);
	}
	c[i * ldc + j] = r;
}
`

// OpenCLDriver runs zgemm on the first double-precision GPU (or CPU device
// when no GPU is present).
type OpenCLDriver struct {
	mu      sync.Mutex
	device  *cl.Device
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel
}

// NewOpenCLDriver selects a device and builds the kernel.
func NewOpenCLDriver() (*OpenCLDriver, error) {
	device, err := pickDevice()
	if err != nil {
		return nil, err
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("opencl: create context: %w", err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("opencl: create queue: %w", err)
	}
	program, err := context.CreateProgramWithSource([]string{zgemmSource})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("opencl: create program: %w", err)
	}
	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("opencl: build program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("opencl: build program: %w", err)
	}
	kernel, err := program.CreateKernel("zgemm")
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("opencl: create kernel: %w", err)
	}

	return &OpenCLDriver{
		device:  device,
		context: context,
		queue:   queue,
		program: program,
		kernel:  kernel,
	}, nil
}

// pickDevice returns the first GPU with cl_khr_fp64, then the first such CPU.
func pickDevice() (*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil || len(platforms) == 0 {
		return nil, ErrUnavailable
	}
	for _, typ := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(typ)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			for _, d := range devices {
				if strings.Contains(d.Extensions(), "cl_khr_fp64") {
					return d, nil
				}
			}
		}
	}
	return nil, ErrUnavailable
}

// Info names the selected device.
func (d *OpenCLDriver) Info() Info {
	return Info{Name: OpenCLName, Device: d.device.Name(), Description: "OpenCL zgemm (fp64)"}
}

// Alloc creates a read-write device buffer.
func (d *OpenCLDriver) Alloc(n int) (Buffer, error) {
	if n <= 0 {
		return nil, ErrDimensionMismatch
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.context == nil {
		return nil, ErrClosed
	}
	mem, err := d.context.CreateEmptyBuffer(cl.MemReadWrite, n*bytesPerElement)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	return &clBuffer{drv: d, mem: mem, n: n}, nil
}

// Zgemm enqueues the kernel over an m×n grid and waits for it.
func (d *OpenCLDriver) Zgemm(tA, tB blas.Transpose, m, n, k int,
	alpha complex128, a Buffer, lda int, b Buffer, ldb int,
	beta complex128, c Buffer, ldc int) error {
	ab, ok1 := a.(*clBuffer)
	bb, ok2 := b.(*clBuffer)
	cb, ok3 := c.(*clBuffer)
	if !ok1 || !ok2 || !ok3 {
		return errForeignBuffer
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	scal := []complex128{alpha, beta}
	sb, err := d.context.CreateEmptyBuffer(cl.MemReadOnly, len(scal)*bytesPerElement)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	defer sb.Release()
	if _, err := d.queue.EnqueueWriteBuffer(sb, true, 0, len(scal)*bytesPerElement, unsafe.Pointer(&scal[0]), nil); err != nil {
		return fmt.Errorf("opencl: write scalars: %w", err)
	}

	if err := d.kernel.SetArgs(
		transCode(tA), transCode(tB),
		int32(m), int32(n), int32(k),
		int32(lda), int32(ldb), int32(ldc),
		ab.mem, bb.mem, cb.mem, sb,
	); err != nil {
		return fmt.Errorf("opencl: set args: %w", err)
	}
	if _, err := d.queue.EnqueueNDRangeKernel(d.kernel, nil, []int{m, n}, nil, nil); err != nil {
		return fmt.Errorf("opencl: enqueue zgemm: %w", err)
	}
	if err := d.queue.Finish(); err != nil {
		return fmt.Errorf("opencl: finish: %w", err)
	}
	return nil
}

// Close releases the kernel, program, queue and context in that order.
func (d *OpenCLDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.context == nil {
		return nil
	}
	d.kernel.Release()
	d.program.Release()
	d.queue.Release()
	d.context.Release()
	d.context = nil
	return nil
}

func transCode(t blas.Transpose) int32 {
	switch t {
	case blas.Trans:
		return 1
	case blas.ConjTrans:
		return 2
	default:
		return 0
	}
}

func openOpenCL() (Backend, error) {
	drv, err := NewOpenCLDriver()
	if err != nil {
		return nil, err
	}
	return NewDevice(drv), nil
}

type clBuffer struct {
	drv *OpenCLDriver
	mem *cl.MemObject
	n   int
}

func (b *clBuffer) Len() int { return b.n }

func (b *clBuffer) Upload(src []complex128) error {
	if b.mem == nil {
		return ErrClosed
	}
	if len(src) > b.n {
		return ErrDimensionMismatch
	}
	if len(src) == 0 {
		return nil
	}
	b.drv.mu.Lock()
	defer b.drv.mu.Unlock()
	_, err := b.drv.queue.EnqueueWriteBuffer(b.mem, true, 0, len(src)*bytesPerElement, unsafe.Pointer(&src[0]), nil)
	return err
}

func (b *clBuffer) Download(dst []complex128) error {
	if b.mem == nil {
		return ErrClosed
	}
	if len(dst) > b.n {
		return ErrDimensionMismatch
	}
	if len(dst) == 0 {
		return nil
	}
	b.drv.mu.Lock()
	defer b.drv.mu.Unlock()
	_, err := b.drv.queue.EnqueueReadBuffer(b.mem, true, 0, len(dst)*bytesPerElement, unsafe.Pointer(&dst[0]), nil)
	return err
}

func (b *clBuffer) Release() error {
	if b.mem == nil {
		return nil
	}
	b.mem.Release()
	b.mem = nil
	return nil
}
