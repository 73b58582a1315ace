//go:build !opencl
// +build !opencl

package opencl

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
	if PlatformCount() != 0 {
		t.Error("PlatformCount() should return 0 on stub")
	}
	if DeviceCount() != 0 {
		t.Error("DeviceCount() should return 0 on stub")
	}
}

func TestNewDeviceStub(t *testing.T) {
	device, err := NewDevice(0)
	if err != ErrOpenCLNotAvailable {
		t.Errorf("NewDevice() error = %v, want ErrOpenCLNotAvailable", err)
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

	if _, err := device.Compile(kernels.ElementwiseMultiply()); err != ErrOpenCLNotAvailable {
		t.Errorf("Compile() error = %v, want ErrOpenCLNotAvailable", err)
	}
	if _, err := device.NewBuffer([]float64{1.0}); err != ErrOpenCLNotAvailable {
		t.Errorf("NewBuffer() error = %v, want ErrOpenCLNotAvailable", err)
	}
	if err := device.Dispatch(nil, 128, 128); err != ErrOpenCLNotAvailable {
		t.Errorf("Dispatch() error = %v, want ErrOpenCLNotAvailable", err)
	}
	if err := device.Wait(); err != ErrOpenCLNotAvailable {
		t.Errorf("Wait() error = %v, want ErrOpenCLNotAvailable", err)
	}
	if err := device.ReadBack(nil, nil); err != ErrOpenCLNotAvailable {
		t.Errorf("ReadBack() error = %v, want ErrOpenCLNotAvailable", err)
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

	if _, err := program.Kernel("dot_product"); err != ErrOpenCLNotAvailable {
		t.Errorf("Kernel() error = %v, want ErrOpenCLNotAvailable", err)
	}
}

func TestKernelMethodsStub(t *testing.T) {
	var kernel Kernel

	kernel.Release()

	if kernel.Name() != "" {
		t.Error("Name() should return empty string")
	}
}
