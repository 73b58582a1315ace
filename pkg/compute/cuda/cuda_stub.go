//go:build !cuda || !(linux || windows)
// +build !cuda !linux,!windows

// Package cuda provides NVIDIA accelerator execution using CUDA.
// This is a stub implementation for builds without CUDA support.
package cuda

import (
	"errors"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// Errors
var (
	ErrCUDANotAvailable = errors.New("cuda: CUDA is not available (build without cuda tag or unsupported platform)")
	ErrDeviceCreation   = errors.New("cuda: failed to create CUDA device")
	ErrBufferCreation   = errors.New("cuda: failed to create buffer")
	ErrKernelExecution  = errors.New("cuda: kernel execution failed")
	ErrReadBack         = errors.New("cuda: buffer readback failed")
)

// Device represents a CUDA device (stub).
type Device struct{}

// Buffer represents a CUDA memory buffer (stub).
type Buffer struct{}

// Program represents a compiled CUDA module (stub).
type Program struct{}

// Kernel represents a CUDA kernel function (stub).
type Kernel struct{}

// IsAvailable returns false on builds without CUDA.
func IsAvailable() bool {
	return false
}

// DeviceCount returns 0 on builds without CUDA.
func DeviceCount() int {
	return 0
}

// NewDevice returns an error on builds without CUDA.
func NewDevice(deviceID int) (*Device, error) {
	return nil, ErrCUDANotAvailable
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

// ComputeCapability returns 0, 0.
func (d *Device) ComputeCapability() (int, int) { return 0, 0 }

// Compile returns an error.
func (d *Device) Compile(src kernels.Source) (*Program, error) {
	return nil, ErrCUDANotAvailable
}

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []float64) (*Buffer, error) {
	return nil, ErrCUDANotAvailable
}

// Dispatch returns an error.
func (d *Device) Dispatch(k *Kernel, globalSize, localSize int, args ...any) error {
	return ErrCUDANotAvailable
}

// Wait returns an error.
func (d *Device) Wait() error {
	return ErrCUDANotAvailable
}

// ReadBack returns an error.
func (d *Device) ReadBack(b *Buffer, dst []float64) error {
	return ErrCUDANotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Len returns 0.
func (b *Buffer) Len() int { return 0 }

// Size returns 0.
func (b *Buffer) Size() uint64 { return 0 }

// Kernel returns an error.
func (p *Program) Kernel(name string) (*Kernel, error) {
	return nil, ErrCUDANotAvailable
}

// Release is a no-op stub.
func (p *Program) Release() {}

// Name returns empty string.
func (k *Kernel) Name() string { return "" }

// Release is a no-op stub.
func (k *Kernel) Release() {}
