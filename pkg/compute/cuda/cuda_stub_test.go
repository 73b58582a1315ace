//go:build !cuda || !(linux || windows)
// +build !cuda !linux,!windows

package cuda

import (
	"testing"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

func TestIsAvailableStub(t *testing.T) {
	if IsAvailable() {
		t.Error("IsAvailable() should return false on stub")
	}
}

func TestDeviceCountStub(t *testing.T) {
	if DeviceCount() != 0 {
		t.Error("DeviceCount() should return 0 on stub")
	}
}

func TestNewDeviceStub(t *testing.T) {
	device, err := NewDevice(0)
	if err != ErrCUDANotAvailable {
		t.Errorf("NewDevice() error = %v, want ErrCUDANotAvailable", err)
	}
	if device != nil {
		t.Error("NewDevice() should return nil device on stub")
	}
}

func TestDeviceMethodsStub(t *testing.T) {
	var device Device

	device.Release()

	if device.ID() != 0 {
		t.Error("ID() should return 0")
	}
	if device.Name() != "" {
		t.Error("Name() should return empty string")
	}
	if device.Vendor() != "" {
		t.Error("Vendor() should return empty string")
	}
	if device.MemoryBytes() != 0 {
		t.Error("MemoryBytes() should return 0")
	}
	if major, minor := device.ComputeCapability(); major != 0 || minor != 0 {
		t.Error("ComputeCapability() should return 0, 0")
	}

	if _, err := device.Compile(kernels.ElementwiseMultiply()); err != ErrCUDANotAvailable {
		t.Errorf("Compile() error = %v, want ErrCUDANotAvailable", err)
	}
	if _, err := device.NewBuffer([]float64{1.0}); err != ErrCUDANotAvailable {
		t.Errorf("NewBuffer() error = %v, want ErrCUDANotAvailable", err)
	}
	if err := device.Dispatch(nil, 128, 128); err != ErrCUDANotAvailable {
		t.Errorf("Dispatch() error = %v, want ErrCUDANotAvailable", err)
	}
	if err := device.Wait(); err != ErrCUDANotAvailable {
		t.Errorf("Wait() error = %v, want ErrCUDANotAvailable", err)
	}
	if err := device.ReadBack(nil, nil); err != ErrCUDANotAvailable {
		t.Errorf("ReadBack() error = %v, want ErrCUDANotAvailable", err)
	}
}

func TestBufferMethodsStub(t *testing.T) {
	var buffer Buffer

	buffer.Release()

	if buffer.Len() != 0 {
		t.Error("Len() should return 0")
	}
	if buffer.Size() != 0 {
		t.Error("Size() should return 0")
	}
}

func TestProgramMethodsStub(t *testing.T) {
	var program Program

	program.Release()

	if _, err := program.Kernel("dot_product"); err != ErrCUDANotAvailable {
		t.Errorf("Kernel() error = %v, want ErrCUDANotAvailable", err)
	}
}
