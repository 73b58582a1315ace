package compute

// Backend adapters. Each backend package is self-contained with its own
// concrete Device/Program/Kernel/Buffer types; the thin wrappers here bind
// them to the capability interface and feed the engine's usage counters.

import (
	"fmt"

	"github.com/ViktorB9898/vecrun/pkg/compute/cpu"
	"github.com/ViktorB9898/vecrun/pkg/compute/cuda"
	"github.com/ViktorB9898/vecrun/pkg/compute/opencl"
	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

var (
	_ Device = (*cpuDevice)(nil)
	_ Device = (*openclDevice)(nil)
	_ Device = (*cudaDevice)(nil)
)

// ---- cpu ----

type cpuDevice struct {
	eng *Engine
	dev *cpu.Device
}

type cpuBuffer struct {
	buf *cpu.Buffer
}

type cpuProgram struct {
	prog *cpu.Program
}

type cpuKernel struct {
	kern *cpu.Kernel
}

func (d *cpuDevice) Info() DeviceInfo {
	return DeviceInfo{
		ID:          0,
		Name:        d.dev.Name(),
		Vendor:      d.dev.Vendor(),
		MemoryBytes: d.dev.MemoryBytes(),
		Backend:     BackendCPU,
	}
}

func (d *cpuDevice) Compile(src kernels.Source) (Program, error) {
	prog, err := d.dev.Compile(src)
	if err != nil {
		return nil, err
	}
	return &cpuProgram{prog: prog}, nil
}

func (d *cpuDevice) NewBuffer(data []float64) (Buffer, error) {
	buf, err := d.dev.NewBuffer(data)
	if err != nil {
		return nil, err
	}
	d.eng.recordUpload(int64(len(data)) * 8)
	return &cpuBuffer{buf: buf}, nil
}

func (d *cpuDevice) Dispatch(k Kernel, grid Grid, args ...any) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	kern, ok := k.(*cpuKernel)
	if !ok {
		return fmt.Errorf("%w: kernel not from this device", ErrInvalidArgument)
	}
	raw, err := unwrapArgs(args, func(b Buffer) (any, bool) {
		cb, ok := b.(*cpuBuffer)
		if !ok {
			return nil, false
		}
		return cb.buf, true
	})
	if err != nil {
		return err
	}
	if err := d.dev.Dispatch(kern.kern, grid.GlobalSize, grid.LocalSize, raw...); err != nil {
		return err
	}
	d.eng.recordExecution()
	return nil
}

func (d *cpuDevice) Wait() error {
	return d.dev.Wait()
}

func (d *cpuDevice) ReadBack(b Buffer, dst []float64) error {
	cb, ok := b.(*cpuBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer not from this device", ErrInvalidArgument)
	}
	if err := d.dev.ReadBack(cb.buf, dst); err != nil {
		return err
	}
	d.eng.recordDownload(int64(len(dst)) * 8)
	return nil
}

func (d *cpuDevice) Release() {
	d.dev.Release()
}

func (b *cpuBuffer) Len() int     { return b.buf.Len() }
func (b *cpuBuffer) Size() uint64 { return b.buf.Size() }
func (b *cpuBuffer) Release()     { b.buf.Release() }

func (p *cpuProgram) Kernel(name string) (Kernel, error) {
	kern, err := p.prog.Kernel(name)
	if err != nil {
		return nil, err
	}
	return &cpuKernel{kern: kern}, nil
}

func (p *cpuProgram) Release() { p.prog.Release() }

func (k *cpuKernel) Name() string { return k.kern.Name() }
func (k *cpuKernel) Release()     { k.kern.Release() }

// ---- opencl ----

type openclDevice struct {
	eng *Engine
	dev *opencl.Device
}

type openclBuffer struct {
	buf *opencl.Buffer
}

type openclProgram struct {
	prog *opencl.Program
}

type openclKernel struct {
	kern *opencl.Kernel
}

func (d *openclDevice) Info() DeviceInfo {
	return DeviceInfo{
		ID:          d.dev.ID(),
		Name:        d.dev.Name(),
		Vendor:      d.dev.Vendor(),
		MemoryBytes: d.dev.MemoryBytes(),
		Backend:     BackendOpenCL,
	}
}

func (d *openclDevice) Compile(src kernels.Source) (Program, error) {
	prog, err := d.dev.Compile(src)
	if err != nil {
		return nil, err
	}
	return &openclProgram{prog: prog}, nil
}

func (d *openclDevice) NewBuffer(data []float64) (Buffer, error) {
	buf, err := d.dev.NewBuffer(data)
	if err != nil {
		return nil, err
	}
	d.eng.recordUpload(int64(len(data)) * 8)
	return &openclBuffer{buf: buf}, nil
}

func (d *openclDevice) Dispatch(k Kernel, grid Grid, args ...any) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	kern, ok := k.(*openclKernel)
	if !ok {
		return fmt.Errorf("%w: kernel not from this device", ErrInvalidArgument)
	}
	raw, err := unwrapArgs(args, func(b Buffer) (any, bool) {
		ob, ok := b.(*openclBuffer)
		if !ok {
			return nil, false
		}
		return ob.buf, true
	})
	if err != nil {
		return err
	}
	if err := d.dev.Dispatch(kern.kern, grid.GlobalSize, grid.LocalSize, raw...); err != nil {
		return err
	}
	d.eng.recordExecution()
	return nil
}

func (d *openclDevice) Wait() error {
	return d.dev.Wait()
}

func (d *openclDevice) ReadBack(b Buffer, dst []float64) error {
	ob, ok := b.(*openclBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer not from this device", ErrInvalidArgument)
	}
	if err := d.dev.ReadBack(ob.buf, dst); err != nil {
		return err
	}
	d.eng.recordDownload(int64(len(dst)) * 8)
	return nil
}

func (d *openclDevice) Release() {
	d.dev.Release()
}

func (b *openclBuffer) Len() int     { return b.buf.Len() }
func (b *openclBuffer) Size() uint64 { return b.buf.Size() }
func (b *openclBuffer) Release()     { b.buf.Release() }

func (p *openclProgram) Kernel(name string) (Kernel, error) {
	kern, err := p.prog.Kernel(name)
	if err != nil {
		return nil, err
	}
	return &openclKernel{kern: kern}, nil
}

func (p *openclProgram) Release() { p.prog.Release() }

func (k *openclKernel) Name() string { return k.kern.Name() }
func (k *openclKernel) Release()     { k.kern.Release() }

// ---- cuda ----

type cudaDevice struct {
	eng *Engine
	dev *cuda.Device
}

type cudaBuffer struct {
	buf *cuda.Buffer
}

type cudaProgram struct {
	prog *cuda.Program
}

type cudaKernel struct {
	kern *cuda.Kernel
}

func (d *cudaDevice) Info() DeviceInfo {
	return DeviceInfo{
		ID:          d.dev.ID(),
		Name:        d.dev.Name(),
		Vendor:      d.dev.Vendor(),
		MemoryBytes: d.dev.MemoryBytes(),
		Backend:     BackendCUDA,
	}
}

func (d *cudaDevice) Compile(src kernels.Source) (Program, error) {
	prog, err := d.dev.Compile(src)
	if err != nil {
		return nil, err
	}
	return &cudaProgram{prog: prog}, nil
}

func (d *cudaDevice) NewBuffer(data []float64) (Buffer, error) {
	buf, err := d.dev.NewBuffer(data)
	if err != nil {
		return nil, err
	}
	d.eng.recordUpload(int64(len(data)) * 8)
	return &cudaBuffer{buf: buf}, nil
}

func (d *cudaDevice) Dispatch(k Kernel, grid Grid, args ...any) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	kern, ok := k.(*cudaKernel)
	if !ok {
		return fmt.Errorf("%w: kernel not from this device", ErrInvalidArgument)
	}
	raw, err := unwrapArgs(args, func(b Buffer) (any, bool) {
		cb, ok := b.(*cudaBuffer)
		if !ok {
			return nil, false
		}
		return cb.buf, true
	})
	if err != nil {
		return err
	}
	if err := d.dev.Dispatch(kern.kern, grid.GlobalSize, grid.LocalSize, raw...); err != nil {
		return err
	}
	d.eng.recordExecution()
	return nil
}

func (d *cudaDevice) Wait() error {
	return d.dev.Wait()
}

func (d *cudaDevice) ReadBack(b Buffer, dst []float64) error {
	cb, ok := b.(*cudaBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer not from this device", ErrInvalidArgument)
	}
	if err := d.dev.ReadBack(cb.buf, dst); err != nil {
		return err
	}
	d.eng.recordDownload(int64(len(dst)) * 8)
	return nil
}

func (d *cudaDevice) Release() {
	d.dev.Release()
}

func (b *cudaBuffer) Len() int     { return b.buf.Len() }
func (b *cudaBuffer) Size() uint64 { return b.buf.Size() }
func (b *cudaBuffer) Release()     { b.buf.Release() }

func (p *cudaProgram) Kernel(name string) (Kernel, error) {
	kern, err := p.prog.Kernel(name)
	if err != nil {
		return nil, err
	}
	return &cudaKernel{kern: kern}, nil
}

func (p *cudaProgram) Release() { p.prog.Release() }

func (k *cudaKernel) Name() string { return k.kern.Name() }
func (k *cudaKernel) Release()     { k.kern.Release() }

// unwrapArgs converts interface-level dispatch arguments into the backend's
// concrete types. Buffers go through unwrap; uint32 scalars pass through.
func unwrapArgs(args []any, unwrap func(Buffer) (any, bool)) ([]any, error) {
	raw := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case Buffer:
			u, ok := unwrap(v)
			if !ok {
				return nil, fmt.Errorf("%w: buffer argument %d is from another backend", ErrInvalidArgument, i)
			}
			raw[i] = u
		case uint32:
			raw[i] = v
		default:
			return nil, fmt.Errorf("%w: argument %d has unsupported type %T", ErrInvalidArgument, i, arg)
		}
	}
	return raw, nil
}
