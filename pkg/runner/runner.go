// Package runner drives the bulk vector operation workflow: transfer two
// host vectors to an accelerator once, dispatch an elementwise-multiply
// kernel a fixed number of times against the same device buffers, read the
// result back after every dispatch, and reduce it to a scalar sum on the
// host.
//
// The operation is cumulative by design: the input buffer is overwritten in
// place and never reset between repetitions, so after R repetitions every
// element holds x0[i] * y[i]^R and the reported sum reflects only the last
// repetition's state.
//
// Per-repetition wall-clock time covers dispatch, completion wait, and
// readback; the host reduction is excluded. The representative measurement
// is the repetition at index R/2, not a statistical median.
package runner

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/ViktorB9898/vecrun/pkg/compute"
	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// Errors
var (
	ErrLengthMismatch = errors.New("runner: input vectors differ in length")
	ErrEmptyInput     = errors.New("runner: input vectors are empty")
	ErrNoRepetitions  = errors.New("runner: repetition count must be at least 1")
)

// previewLen is how many leading elements reports keep for diagnostics.
const previewLen = 3

// Runner executes the transfer/dispatch/readback/reduce protocol against
// one compute device. The device is borrowed, not owned: callers release it
// themselves.
type Runner struct {
	dev compute.Device
	cfg *Config
	src kernels.Source
}

// New creates a runner for the device. A nil config means DefaultConfig.
// The kernel source comes from cfg.KernelFile when set, otherwise the
// built-in elementwise multiply.
func New(dev compute.Device, cfg *Config) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := kernels.ElementwiseMultiply()
	if cfg.KernelFile != "" {
		loaded, err := kernels.FromFile(cfg.KernelFile, cfg.EntryPoint)
		if err != nil {
			return nil, err
		}
		src = loaded
	} else if cfg.EntryPoint != "" {
		src.EntryPoint = cfg.EntryPoint
	}

	return &Runner{dev: dev, cfg: cfg, src: src}, nil
}

// SetSource replaces the program source compiled by the next Run.
func (r *Runner) SetSource(src kernels.Source) {
	r.src = src
}

// Config returns the runner's execution parameters.
func (r *Runner) Config() *Config {
	return r.cfg
}

// Report holds everything one run produced.
type Report struct {
	Device      compute.DeviceInfo
	Grid        compute.Grid
	VectorSize  int
	Repetitions int

	// CompileTime covers program build and kernel extraction.
	CompileTime time.Duration

	// Times has one entry per repetition: dispatch + completion wait +
	// readback, excluding the host reduction.
	Times []time.Duration

	// Sum is the host reduction of the last repetition's result.
	Sum float64

	// Digest is a BLAKE2b-256 checksum of the final result vector, so
	// recorded runs can be compared for bit-identical output.
	Digest string

	// Previews of the first elements before and after the run. YAfter
	// equals YBefore: y is read-only to the kernel.
	XBefore, YBefore []float64
	XAfter, YAfter   []float64
}

// Representative returns the timing entry at index R/2, the historical
// "middle repetition" measurement. The timings are deliberately not sorted.
func (rep *Report) Representative() time.Duration {
	return rep.Times[len(rep.Times)/2]
}

// Run executes the full protocol on vectors x and y. The two vectors must
// have equal length; that length wins over cfg.VectorSize, which only
// sizes vectors the caller allocates. x is overwritten with the final
// device result.
func (r *Runner) Run(x, y []float64) (*Report, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: len(x)=%d len(y)=%d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	n := len(x)

	rep := &Report{
		Device:      r.dev.Info(),
		Grid:        r.cfg.Grid(),
		VectorSize:  n,
		Repetitions: r.cfg.Repetitions,
		XBefore:     preview(x),
		YBefore:     preview(y),
	}

	compileStart := time.Now()
	prog, err := r.dev.Compile(r.src)
	if err != nil {
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	defer prog.Release()

	kern, err := prog.Kernel(r.src.EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("extracting kernel %q: %w", r.src.EntryPoint, err)
	}
	defer kern.Release()
	rep.CompileTime = time.Since(compileStart)

	// One transfer; the buffers live for the whole run and accumulate
	// results across repetitions.
	bx, err := r.dev.NewBuffer(x)
	if err != nil {
		return nil, fmt.Errorf("creating device buffer for x: %w", err)
	}
	defer bx.Release()

	by, err := r.dev.NewBuffer(y)
	if err != nil {
		return nil, fmt.Errorf("creating device buffer for y: %w", err)
	}
	defer by.Release()

	rep.Times = make([]time.Duration, 0, r.cfg.Repetitions)
	var sum float64
	for i := 0; i < r.cfg.Repetitions; i++ {
		start := time.Now()

		if err := r.dev.Dispatch(kern, rep.Grid, bx, by, uint32(n)); err != nil {
			return nil, fmt.Errorf("repetition %d: dispatch: %w", i, err)
		}
		if err := r.dev.Wait(); err != nil {
			return nil, fmt.Errorf("repetition %d: wait: %w", i, err)
		}
		if err := r.dev.ReadBack(bx, x); err != nil {
			return nil, fmt.Errorf("repetition %d: readback: %w", i, err)
		}

		// The reduction below is deliberately outside the measured
		// window.
		rep.Times = append(rep.Times, time.Since(start))
		sum = reduce(x)
	}
	rep.Sum = sum

	rep.XAfter = preview(x)
	rep.YAfter = preview(y)
	rep.Digest = digest(x)
	return rep, nil
}

// reduce sums the vector on the host.
func reduce(v []float64) float64 {
	var sum float64
	for _, e := range v {
		sum += e
	}
	return sum
}

// preview copies the first previewLen elements.
func preview(v []float64) []float64 {
	n := previewLen
	if n > len(v) {
		n = len(v)
	}
	out := make([]float64, n)
	copy(out, v[:n])
	return out
}

// digest hashes the vector's IEEE-754 bits with BLAKE2b-256, in chunks to
// avoid a full byte copy of a multi-hundred-megabyte vector.
func digest(v []float64) string {
	h, _ := blake2b.New256(nil)

	const chunk = 4096
	buf := make([]byte, chunk*8)
	for start := 0; start < len(v); start += chunk {
		end := start + chunk
		if end > len(v) {
			end = len(v)
		}
		b := buf[:(end-start)*8]
		for i := start; i < end; i++ {
			binary.LittleEndian.PutUint64(b[(i-start)*8:], math.Float64bits(v[i]))
		}
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))
}
