//go:build !opencl
// +build !opencl

// Package opencl provides cross-platform accelerator execution using OpenCL.
// This is a stub implementation for builds without the opencl tag.
package opencl

import (
	"errors"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// Errors
var (
	ErrOpenCLNotAvailable = errors.New("opencl: OpenCL is not available (build without opencl tag)")
	ErrDeviceCreation     = errors.New("opencl: failed to create OpenCL device")
	ErrBufferCreation     = errors.New("opencl: failed to create buffer")
	ErrKernelExecution    = errors.New("opencl: kernel execution failed")
	ErrReadBack           = errors.New("opencl: buffer readback failed")
)

// Device represents an OpenCL device (stub).
type Device struct{}

// Buffer represents an OpenCL memory buffer (stub).
type Buffer struct{}

// Program represents a compiled OpenCL program (stub).
type Program struct{}

// Kernel represents an OpenCL kernel object (stub).
type Kernel struct{}

// IsAvailable returns false on builds without OpenCL.
func IsAvailable() bool {
	return false
}

// PlatformCount returns 0 on builds without OpenCL.
func PlatformCount() int {
	return 0
}

// DeviceCount returns 0 on builds without OpenCL.
func DeviceCount() int {
	return 0
}

// NewDevice returns an error on builds without OpenCL.
func NewDevice(deviceID int) (*Device, error) {
	return nil, ErrOpenCLNotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// ID returns 0.
func (d *Device) ID() int { return 0 }

// Name returns empty string.
func (d *Device) Name() string { return "" }

// Vendor returns empty string.
func (d *Device) Vendor() string { return "" }

// MemoryBytes returns 0.
func (d *Device) MemoryBytes() uint64 { return 0 }

// Compile returns an error.
func (d *Device) Compile(src kernels.Source) (*Program, error) {
	return nil, ErrOpenCLNotAvailable
}

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []float64) (*Buffer, error) {
	return nil, ErrOpenCLNotAvailable
}

// Dispatch returns an error.
func (d *Device) Dispatch(k *Kernel, globalSize, localSize int, args ...any) error {
	return ErrOpenCLNotAvailable
}

// Wait returns an error.
func (d *Device) Wait() error {
	return ErrOpenCLNotAvailable
}

// ReadBack returns an error.
func (d *Device) ReadBack(b *Buffer, dst []float64) error {
	return ErrOpenCLNotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Len returns 0.
func (b *Buffer) Len() int { return 0 }

// Size returns 0.
func (b *Buffer) Size() uint64 { return 0 }

// Kernel returns an error.
func (p *Program) Kernel(name string) (*Kernel, error) {
	return nil, ErrOpenCLNotAvailable
}

// Release is a no-op stub.
func (p *Program) Release() {}

// Name returns empty string.
func (k *Kernel) Name() string { return "" }

// Release is a no-op stub.
func (k *Kernel) Release() {}
