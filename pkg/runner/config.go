package runner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ViktorB9898/vecrun/pkg/compute"
)

// Config holds the execution parameters of a run. Zero values fall back to
// the defaults, which match the historical tutorial constants.
type Config struct {
	// VectorSize is the element count N of both input vectors.
	VectorSize int `yaml:"vector_size"`

	// Repetitions is how many times the kernel is dispatched against the
	// same device buffers.
	Repetitions int `yaml:"repetitions"`

	// GlobalSize and LocalSize define the launch grid.
	GlobalSize int `yaml:"global_size"`
	LocalSize  int `yaml:"local_size"`

	// KernelFile optionally replaces the built-in program source.
	KernelFile string `yaml:"kernel_file"`

	// EntryPoint optionally overrides the kernel extracted after the
	// build.
	EntryPoint string `yaml:"entry_point"`
}

// DefaultConfig returns the historical execution parameters: 50M elements,
// 6 repetitions, 128x128 logical workers in groups of 128.
func DefaultConfig() *Config {
	return &Config{
		VectorSize:  50_000_000,
		Repetitions: 6,
		GlobalSize:  128 * 128,
		LocalSize:   128,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file only
// needs to name the parameters it changes.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runner: reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("runner: parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations a run cannot execute.
func (c *Config) Validate() error {
	if c.VectorSize <= 0 {
		return fmt.Errorf("runner: vector_size must be positive, got %d", c.VectorSize)
	}
	if c.Repetitions < 1 {
		return ErrNoRepetitions
	}
	return c.Grid().Validate()
}

// Grid returns the launch geometry.
func (c *Config) Grid() compute.Grid {
	return compute.Grid{GlobalSize: c.GlobalSize, LocalSize: c.LocalSize}
}
