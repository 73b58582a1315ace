package compute

import (
	"fmt"
	"sync"

	"github.com/ViktorB9898/vecrun/pkg/compute/cpu"
	"github.com/ViktorB9898/vecrun/pkg/compute/cuda"
	"github.com/ViktorB9898/vecrun/pkg/compute/opencl"
)

// BackendNone marks an engine with no active device (released or never
// initialized).
const BackendNone Backend = "none"

// Config controls backend selection.
type Config struct {
	// PreferredBackend is tried first; BackendAuto probes OpenCL, then
	// CUDA, then the simulated cpu device.
	PreferredBackend Backend

	// DeviceID selects which device of the chosen backend to open.
	DeviceID int

	// Workers fixes the goroutine count of the simulated cpu device.
	// 0 means GOMAXPROCS.
	Workers int

	// FallbackToCPU uses the simulated device when no accelerator
	// runtime is available. With it disabled, NewEngine fails instead.
	FallbackToCPU bool
}

// DefaultConfig returns the default engine configuration: auto-detection
// with cpu fallback.
func DefaultConfig() *Config {
	return &Config{
		PreferredBackend: BackendAuto,
		FallbackToCPU:    true,
	}
}

// Stats tracks engine usage counters.
type Stats struct {
	KernelExecutions int64
	BytesUploaded    int64
	BytesDownloaded  int64
}

// Engine owns one active compute device selected from the available
// backends.
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
type Engine struct {
	backend Backend
	device  Device
	config  *Config

	mu    sync.RWMutex
	stats Stats
}

// NewEngine creates an engine and initializes the best available backend.
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Engine{
		config:  config,
		backend: BackendNone,
	}

	if err := e.initBackend(config.PreferredBackend); err != nil {
		return nil, err
	}
	return e, nil
}

// initBackend initializes the first backend that works, in preference
// order.
func (e *Engine) initBackend(preferred Backend) error {
	var backends []Backend

	if preferred != BackendAuto {
		backends = append(backends, preferred)
	} else {
		backends = append(backends, BackendOpenCL, BackendCUDA)
		if e.config.FallbackToCPU {
			backends = append(backends, BackendCPU)
		}
	}

	var firstErr error
	for _, backend := range backends {
		err := e.tryBackend(backend)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return fmt.Errorf("%w: %v", ErrNotAvailable, firstErr)
	}
	return ErrNotAvailable
}

// tryBackend attempts to initialize a specific backend.
func (e *Engine) tryBackend(backend Backend) error {
	switch backend {
	case BackendOpenCL:
		return e.initOpenCL()
	case BackendCUDA:
		return e.initCUDA()
	case BackendCPU:
		return e.initCPU()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func (e *Engine) initOpenCL() error {
	if !opencl.IsAvailable() {
		return fmt.Errorf("%w: opencl", ErrNotAvailable)
	}
	dev, err := opencl.NewDevice(e.config.DeviceID)
	if err != nil {
		return err
	}
	e.device = &openclDevice{eng: e, dev: dev}
	e.backend = BackendOpenCL
	return nil
}

func (e *Engine) initCUDA() error {
	if !cuda.IsAvailable() {
		return fmt.Errorf("%w: cuda", ErrNotAvailable)
	}
	dev, err := cuda.NewDevice(e.config.DeviceID)
	if err != nil {
		return err
	}
	e.device = &cudaDevice{eng: e, dev: dev}
	e.backend = BackendCUDA
	return nil
}

func (e *Engine) initCPU() error {
	dev, err := cpu.NewDevice(e.config.Workers)
	if err != nil {
		return err
	}
	e.device = &cpuDevice{eng: e, dev: dev}
	e.backend = BackendCPU
	return nil
}

// Backend returns the active backend.
func (e *Engine) Backend() Backend {
	return e.backend
}

// Device returns the active device.
func (e *Engine) Device() Device {
	return e.device
}

// DeviceName returns the active device name.
func (e *Engine) DeviceName() string {
	if e.device == nil {
		return ""
	}
	return e.device.Info().Name
}

// Stats returns engine usage counters.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Release frees the active device. Safe to call more than once.
func (e *Engine) Release() {
	if e.device != nil {
		e.device.Release()
		e.device = nil
	}
	e.backend = BackendNone
}

func (e *Engine) recordUpload(n int64) {
	e.mu.Lock()
	e.stats.BytesUploaded += n
	e.mu.Unlock()
}

func (e *Engine) recordDownload(n int64) {
	e.mu.Lock()
	e.stats.BytesDownloaded += n
	e.mu.Unlock()
}

func (e *Engine) recordExecution() {
	e.mu.Lock()
	e.stats.KernelExecutions++
	e.mu.Unlock()
}

// BackendStatus reports availability of one backend.
type BackendStatus struct {
	Backend   Backend
	Available bool
	Devices   int
}

// Discover reports availability and device counts for every backend
// without opening any device.
func Discover() []BackendStatus {
	return []BackendStatus{
		{Backend: BackendOpenCL, Available: opencl.IsAvailable(), Devices: opencl.DeviceCount()},
		{Backend: BackendCUDA, Available: cuda.IsAvailable(), Devices: cuda.DeviceCount()},
		{Backend: BackendCPU, Available: cpu.IsAvailable(), Devices: cpu.DeviceCount()},
	}
}
