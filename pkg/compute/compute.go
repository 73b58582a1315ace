// Package compute abstracts accelerator execution behind a small capability
// surface: discover devices, compile a program, create buffers, dispatch a
// kernel, wait for completion, and read results back.
//
// The same runner logic works against any backend implementing Device.
// OpenCL and CUDA back onto vendor runtimes (behind build tags); the cpu
// backend is a pure-Go simulated device that is always available, so the
// full dispatch protocol can run and be tested on any machine.
//
// Usage:
//
//	eng, err := compute.NewEngine(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Release()
//
//	dev := eng.Device()
//	prog, err := dev.Compile(kernels.ElementwiseMultiply())
//	...
package compute

import (
	"errors"
	"fmt"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// Errors
var (
	ErrNotAvailable    = errors.New("compute: no accelerator backend available")
	ErrUnknownBackend  = errors.New("compute: unknown backend")
	ErrInvalidGrid     = errors.New("compute: invalid launch grid")
	ErrBufferReleased  = errors.New("compute: buffer already released")
	ErrSizeMismatch    = errors.New("compute: host and device sizes differ")
	ErrDeviceReleased  = errors.New("compute: device already released")
	ErrInvalidArgument = errors.New("compute: invalid kernel argument")
)

// Backend identifies an accelerator runtime.
type Backend string

const (
	// BackendAuto lets the engine pick the best available backend.
	BackendAuto Backend = ""

	// BackendOpenCL targets OpenCL devices (AMD, Intel, NVIDIA).
	BackendOpenCL Backend = "opencl"

	// BackendCUDA targets NVIDIA devices through CUDA.
	BackendCUDA Backend = "cuda"

	// BackendCPU is the simulated in-process device.
	BackendCPU Backend = "cpu"
)

// ParseBackend converts a user-supplied name into a Backend.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendAuto, BackendOpenCL, BackendCUDA, BackendCPU:
		return Backend(name), nil
	default:
		return BackendAuto, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// DeviceInfo describes a discovered compute device.
type DeviceInfo struct {
	ID          int
	Name        string
	Vendor      string
	MemoryBytes uint64
	Backend     Backend
}

// MemoryMB returns the device memory in megabytes.
func (d DeviceInfo) MemoryMB() int {
	return int(d.MemoryBytes / (1024 * 1024))
}

// Grid is the launch geometry for a dispatch: GlobalSize logical workers
// partitioned into groups of LocalSize. Kernels use grid-stride loops, so
// correctness never depends on GlobalSize relative to the problem size.
type Grid struct {
	GlobalSize int
	LocalSize  int
}

// DefaultGrid matches the historical launch shape: 128x128 logical workers
// in groups of 128.
func DefaultGrid() Grid {
	return Grid{GlobalSize: 128 * 128, LocalSize: 128}
}

// Validate rejects geometries the runtimes cannot launch.
func (g Grid) Validate() error {
	if g.GlobalSize <= 0 || g.LocalSize <= 0 {
		return fmt.Errorf("%w: global=%d local=%d", ErrInvalidGrid, g.GlobalSize, g.LocalSize)
	}
	if g.GlobalSize%g.LocalSize != 0 {
		return fmt.Errorf("%w: global size %d not a multiple of local size %d",
			ErrInvalidGrid, g.GlobalSize, g.LocalSize)
	}
	return nil
}

// Groups returns the number of work groups in the grid.
func (g Grid) Groups() int {
	return g.GlobalSize / g.LocalSize
}

// Buffer is a device-resident mirror of host data. Contents persist across
// dispatches until overwritten by a kernel; they are only observable on the
// host through Device.ReadBack.
type Buffer interface {
	// Len returns the element count.
	Len() int

	// Size returns the buffer size in bytes.
	Size() uint64

	// Release frees the device allocation. Safe to call more than once.
	Release()
}

// Program is a compiled kernel program.
type Program interface {
	// Kernel extracts a kernel from the program by name.
	Kernel(name string) (Kernel, error)

	// Release frees the program object.
	Release()
}

// Kernel is a single data-parallel entry point of a compiled program.
type Kernel interface {
	// Name returns the kernel function name.
	Name() string

	// Release frees the kernel object.
	Release()
}

// Device is the capability surface every backend provides. One device owns
// one in-order command queue: Dispatch is asynchronous at submission, Wait
// blocks until everything submitted so far has completed.
type Device interface {
	// Info describes the device.
	Info() DeviceInfo

	// Compile builds the program source on this device. On build failure
	// the returned error unwraps to *kernels.BuildError carrying the full
	// build log and source text.
	Compile(src kernels.Source) (Program, error)

	// NewBuffer allocates a device buffer initialized from host data.
	NewBuffer(data []float64) (Buffer, error)

	// Dispatch submits one kernel execution over the grid. Arguments are
	// bound in order; buffers must come from this device, scalars must be
	// uint32.
	Dispatch(k Kernel, grid Grid, args ...any) error

	// Wait blocks until all submitted work has completed and returns the
	// first execution error, if any.
	Wait() error

	// ReadBack copies buffer contents into dst, blocking until the copy
	// completes. len(dst) must equal the buffer element count.
	ReadBack(b Buffer, dst []float64) error

	// Release frees the device, its queue, and every live resource
	// created from it.
	Release()
}
