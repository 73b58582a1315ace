package cpu

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// Errors
var (
	ErrDeviceReleased  = errors.New("cpu: device already released")
	ErrBufferReleased  = errors.New("cpu: buffer already released")
	ErrUnknownKernel   = errors.New("cpu: no built-in implementation for kernel")
	ErrUndefinedKernel = errors.New("cpu: kernel not declared in program source")
	ErrInvalidGrid     = errors.New("cpu: invalid launch grid")
	ErrSizeMismatch    = errors.New("cpu: host and device sizes differ")
	ErrBadArguments    = errors.New("cpu: kernel arguments do not match signature")
)

// IsAvailable reports whether the simulated device can be used. Always true.
func IsAvailable() bool {
	return true
}

// DeviceCount returns the number of simulated devices. Always 1.
func DeviceCount() int {
	return 1
}

// Device is a simulated compute device backed by a goroutine worker pool
// draining a single in-order job queue.
type Device struct {
	workers int

	jobs    chan job
	pending sync.WaitGroup

	// lifecycle
	mu       sync.Mutex
	released bool

	// first execution error since the last Wait
	errMu   sync.Mutex
	execErr error
}

type job struct {
	kernel     *Kernel
	globalSize int
	args       []any
}

// NewDevice creates a simulated device. workers fixes the goroutine count
// for kernel execution; 0 means GOMAXPROCS.
func NewDevice(workers int) (*Device, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d := &Device{
		workers: workers,
		jobs:    make(chan job, 16),
	}
	go d.drain()
	return d, nil
}

// drain executes queued jobs one at a time, preserving submission order.
func (d *Device) drain() {
	for j := range d.jobs {
		if err := d.execute(j.kernel, j.globalSize, j.args); err != nil {
			d.errMu.Lock()
			if d.execErr == nil {
				d.execErr = err
			}
			d.errMu.Unlock()
		}
		d.pending.Done()
	}
}

// Name returns the device name.
func (d *Device) Name() string {
	return fmt.Sprintf("Simulated CPU (%d workers)", d.workers)
}

// Vendor returns the device vendor string.
func (d *Device) Vendor() string {
	return "go " + runtime.GOOS + "/" + runtime.GOARCH
}

// MemoryBytes returns 0: the simulated device shares host memory.
func (d *Device) MemoryBytes() uint64 {
	return 0
}

// Workers returns the execution goroutine count.
func (d *Device) Workers() int {
	return d.workers
}

// Release stops the queue goroutine. Safe to call more than once; any
// dispatch after Release fails with ErrDeviceReleased.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.released {
		d.released = true
		close(d.jobs)
	}
}

// Compile checks the program the way a runtime compiler would and returns a
// Program on success. On failure the error unwraps to *kernels.BuildError
// with the full build log and source text.
func (d *Device) Compile(src kernels.Source) (*Program, error) {
	if log, ok := buildCheck(src); !ok {
		return nil, &kernels.BuildError{Device: d.Name(), Log: log, Source: src.Text}
	}
	return &Program{dev: d, src: src}, nil
}

// buildCheck collects compiler-style diagnostics. ok is false if any
// diagnostic is an error.
func buildCheck(src kernels.Source) (log string, ok bool) {
	var diags []string

	if err := src.Validate(); err != nil {
		diags = append(diags, "error: "+err.Error())
	}
	if nOpen, nClose := strings.Count(src.Text, "{"), strings.Count(src.Text, "}"); nOpen != nClose {
		diags = append(diags, fmt.Sprintf("error: unbalanced braces: %d '{' vs %d '}'", nOpen, nClose))
	}
	if nOpen, nClose := strings.Count(src.Text, "("), strings.Count(src.Text, ")"); nOpen != nClose {
		diags = append(diags, fmt.Sprintf("error: unbalanced parentheses: %d '(' vs %d ')'", nOpen, nClose))
	}

	if len(diags) > 0 {
		return strings.Join(diags, "\n"), false
	}
	return "", true
}

// NewBuffer allocates a device buffer initialized from host data. The
// buffer is a mirror: later host writes to data are not visible to kernels.
func (d *Device) NewBuffer(data []float64) (*Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, ErrDeviceReleased
	}
	mirror := make([]float64, len(data))
	copy(mirror, data)
	return &Buffer{data: mirror}, nil
}

// Dispatch submits one kernel execution over the launch grid. Submission is
// asynchronous; execution errors surface at the next Wait.
func (d *Device) Dispatch(k *Kernel, globalSize, localSize int, args ...any) error {
	if globalSize <= 0 || localSize <= 0 || globalSize%localSize != 0 {
		return fmt.Errorf("%w: global=%d local=%d", ErrInvalidGrid, globalSize, localSize)
	}
	if err := k.impl.check(args); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return ErrDeviceReleased
	}
	d.pending.Add(1)
	d.jobs <- job{kernel: k, globalSize: globalSize, args: args}
	return nil
}

// Wait blocks until all submitted work has completed and returns the first
// execution error since the previous Wait.
func (d *Device) Wait() error {
	d.pending.Wait()
	d.errMu.Lock()
	defer d.errMu.Unlock()
	err := d.execErr
	d.execErr = nil
	return err
}

// ReadBack copies buffer contents into dst, blocking until all submitted
// work has completed first.
func (d *Device) ReadBack(b *Buffer, dst []float64) error {
	if err := d.Wait(); err != nil {
		return err
	}
	if b.data == nil {
		return ErrBufferReleased
	}
	if len(dst) != len(b.data) {
		return fmt.Errorf("%w: buffer has %d elements, dst has %d", ErrSizeMismatch, len(b.data), len(dst))
	}
	copy(dst, b.data)
	return nil
}

// execute runs one dispatch, striping the global worker range across the
// device's goroutine pool. Each worker w covers indices w, w+globalSize,
// w+2*globalSize, ... (grid-stride).
func (d *Device) execute(k *Kernel, globalSize int, args []any) error {
	workers := d.workers
	if workers > globalSize {
		workers = globalSize
	}
	chunk := (globalSize + workers - 1) / workers

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		first := w * chunk
		last := first + chunk
		if last > globalSize {
			last = globalSize
		}
		if first >= last {
			break
		}
		wg.Add(1)
		go func(slot, first, last int) {
			defer wg.Done()
			errs[slot] = k.impl.run(first, last, globalSize, args)
		}(w, first, last)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Buffer is a simulated device allocation.
type Buffer struct {
	data []float64
}

// Len returns the element count.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 {
	return uint64(len(b.data)) * 8
}

// Release frees the allocation. Safe to call more than once.
func (b *Buffer) Release() {
	b.data = nil
}

// Program is a checked program with resolvable kernels.
type Program struct {
	dev *Device
	src kernels.Source
}

// Kernel extracts a kernel by name. The name must be declared in the
// program source and have a built-in implementation.
func (p *Program) Kernel(name string) (*Kernel, error) {
	declared := false
	for _, n := range p.src.KernelNames() {
		if n == name {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedKernel, name)
	}
	impl, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}
	return &Kernel{name: name, impl: impl}, nil
}

// Release frees the program object. No-op for the simulated device.
func (p *Program) Release() {}

// Kernel is a resolved kernel ready for dispatch.
type Kernel struct {
	name string
	impl kernelImpl
}

// Name returns the kernel function name.
func (k *Kernel) Name() string {
	return k.name
}

// Release frees the kernel object. No-op for the simulated device.
func (k *Kernel) Release() {}
