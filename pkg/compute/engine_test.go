package compute

import (
	"errors"
	"testing"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

func newCPUEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(&Config{PreferredBackend: BackendCPU, Workers: 2})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(eng.Release)
	return eng
}

func TestNewEngine(t *testing.T) {
	t.Run("explicit cpu backend", func(t *testing.T) {
		eng := newCPUEngine(t)
		if eng.Backend() != BackendCPU {
			t.Errorf("Backend() = %q, want %q", eng.Backend(), BackendCPU)
		}
		if eng.Device() == nil {
			t.Fatal("expected a device")
		}
		if eng.DeviceName() == "" {
			t.Error("expected a device name")
		}
	})

	t.Run("auto detection with fallback", func(t *testing.T) {
		// With cpu fallback enabled auto-detection can never fail:
		// the simulated device is always available.
		eng, err := NewEngine(nil)
		if err != nil {
			t.Fatalf("NewEngine(nil) error = %v", err)
		}
		defer eng.Release()
		if eng.Backend() == BackendNone {
			t.Error("expected an active backend")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewEngine(&Config{PreferredBackend: Backend("fpga")})
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("expected ErrUnknownBackend, got %v", err)
		}
	})
}

func TestEngineDeviceProtocol(t *testing.T) {
	// The full dispatch protocol through the backend-neutral Device
	// interface.
	eng := newCPUEngine(t)
	dev := eng.Device()

	info := dev.Info()
	if info.Backend != BackendCPU {
		t.Errorf("Info().Backend = %q, want %q", info.Backend, BackendCPU)
	}
	if info.Name == "" {
		t.Error("expected device name in Info()")
	}

	prog, err := dev.Compile(kernels.ElementwiseMultiply())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	defer prog.Release()

	kern, err := prog.Kernel(kernels.DefaultEntryPoint)
	if err != nil {
		t.Fatalf("Kernel() error = %v", err)
	}

	x := []float64{1, 2, 3, 4}
	y := []float64{2, 2, 2, 2}

	bx, err := dev.NewBuffer(x)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	defer bx.Release()
	by, err := dev.NewBuffer(y)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	defer by.Release()

	if bx.Len() != 4 || bx.Size() != 32 {
		t.Errorf("buffer Len/Size = %d/%d, want 4/32", bx.Len(), bx.Size())
	}

	grid := Grid{GlobalSize: 4, LocalSize: 2}
	if err := dev.Dispatch(kern, grid, bx, by, uint32(len(x))); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if err := dev.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	out := make([]float64, len(x))
	if err := dev.ReadBack(bx, out); err != nil {
		t.Fatalf("ReadBack() error = %v", err)
	}

	want := []float64{2, 4, 6, 8}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %g, want %g", i, out[i], want[i])
		}
	}
}

func TestEngineStats(t *testing.T) {
	eng := newCPUEngine(t)
	dev := eng.Device()

	prog, err := dev.Compile(kernels.ElementwiseMultiply())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	defer prog.Release()
	kern, err := prog.Kernel(kernels.DefaultEntryPoint)
	if err != nil {
		t.Fatalf("Kernel() error = %v", err)
	}

	x := make([]float64, 64)
	bx, _ := dev.NewBuffer(x)
	defer bx.Release()
	by, _ := dev.NewBuffer(x)
	defer by.Release()

	if err := dev.Dispatch(kern, Grid{GlobalSize: 8, LocalSize: 4}, bx, by, uint32(64)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if err := dev.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if err := dev.ReadBack(bx, x); err != nil {
		t.Fatalf("ReadBack() error = %v", err)
	}

	stats := eng.Stats()
	if stats.KernelExecutions != 1 {
		t.Errorf("KernelExecutions = %d, want 1", stats.KernelExecutions)
	}
	if stats.BytesUploaded != 2*64*8 {
		t.Errorf("BytesUploaded = %d, want %d", stats.BytesUploaded, 2*64*8)
	}
	if stats.BytesDownloaded != 64*8 {
		t.Errorf("BytesDownloaded = %d, want %d", stats.BytesDownloaded, 64*8)
	}
}

func TestEngineRelease(t *testing.T) {
	eng, err := NewEngine(&Config{PreferredBackend: BackendCPU})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	eng.Release()
	eng.Release() // idempotent

	if eng.Backend() != BackendNone {
		t.Errorf("Backend() after Release = %q, want %q", eng.Backend(), BackendNone)
	}
	if eng.Device() != nil {
		t.Error("Device() after Release should be nil")
	}
}

func TestDiscover(t *testing.T) {
	statuses := Discover()
	if len(statuses) != 3 {
		t.Fatalf("Discover() returned %d backends, want 3", len(statuses))
	}

	byBackend := make(map[Backend]BackendStatus, len(statuses))
	for _, s := range statuses {
		byBackend[s.Backend] = s
	}

	cpuStatus, ok := byBackend[BackendCPU]
	if !ok {
		t.Fatal("Discover() missing cpu backend")
	}
	if !cpuStatus.Available || cpuStatus.Devices != 1 {
		t.Errorf("cpu status = %+v, want available with 1 device", cpuStatus)
	}
}

func TestParseBackend(t *testing.T) {
	cases := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendAuto, false},
		{"opencl", BackendOpenCL, false},
		{"cuda", BackendCUDA, false},
		{"cpu", BackendCPU, false},
		{"fpga", BackendAuto, true},
	}
	for _, c := range cases {
		got, err := ParseBackend(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrUnknownBackend) {
				t.Errorf("ParseBackend(%q) error = %v, want ErrUnknownBackend", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBackend(%q) error = %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseBackend(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGrid(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		g := DefaultGrid()
		if g.GlobalSize != 128*128 || g.LocalSize != 128 {
			t.Errorf("DefaultGrid() = %+v", g)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("DefaultGrid().Validate() error = %v", err)
		}
		if g.Groups() != 128 {
			t.Errorf("Groups() = %d, want 128", g.Groups())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		bad := []Grid{
			{GlobalSize: 0, LocalSize: 1},
			{GlobalSize: 8, LocalSize: 0},
			{GlobalSize: -4, LocalSize: 2},
			{GlobalSize: 10, LocalSize: 3},
		}
		for _, g := range bad {
			if err := g.Validate(); !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("Grid %+v: expected ErrInvalidGrid, got %v", g, err)
			}
		}
	})
}
