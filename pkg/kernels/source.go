// Package kernels holds accelerator kernel source text as explicit
// configuration values.
//
// Kernel source is deliberately not process-wide state: a Source is a value
// handed to a backend's Compile call, so callers can swap the default
// elementwise-multiply program for their own text (or a file on disk)
// without touching the compute layer.
package kernels

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Errors
var (
	ErrEmptySource = errors.New("kernels: kernel source is empty")
	ErrNoKernel    = errors.New("kernels: source defines no __kernel function")
)

// Source is a compilable program text plus the name of the entry kernel to
// extract after the build.
type Source struct {
	// EntryPoint is the kernel function to extract from the built program.
	EntryPoint string

	// Text is the full program source handed to the runtime compiler.
	Text string
}

// DefaultEntryPoint is the entry kernel of the default program.
//
// The kernel is historically named "dot_product" even though it performs
// only the elementwise-multiply stage; the reduction to a scalar happens on
// the host afterwards. The name is kept as-is so existing program text and
// recorded runs stay comparable.
const DefaultEntryPoint = "dot_product"

// ElementwiseMultiply returns the default program: a double-precision
// elementwise multiply with a grid-stride loop, so any global worker count
// covers all N indices exactly once per dispatch.
//
//	x[i] = x[i] * y[i]  for all i in [0, N)
func ElementwiseMultiply() Source {
	return Source{
		EntryPoint: DefaultEntryPoint,
		Text: "#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n" +
			"__kernel void dot_product(__global double *x,\n" +
			"                          __global double *y,\n" +
			"                          unsigned int N)\n" +
			"{\n" +
			"  for (unsigned int i  = get_global_id(0);\n" +
			"                    i  < N;\n" +
			"                    i += get_global_size(0))\n" +
			"    x[i] = x[i] * y[i];\n" +
			"}\n",
	}
}

// FromFile loads replacement program text from disk. The entry point is the
// first __kernel function found unless entryPoint overrides it.
func FromFile(path, entryPoint string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("kernels: reading %s: %w", path, err)
	}

	src := Source{EntryPoint: entryPoint, Text: string(data)}
	if src.EntryPoint == "" {
		names := src.KernelNames()
		if len(names) == 0 {
			return Source{}, fmt.Errorf("%w: %s", ErrNoKernel, path)
		}
		src.EntryPoint = names[0]
	}
	return src, nil
}

// kernelDeclRe matches "__kernel void <name>(" declarations.
var kernelDeclRe = regexp.MustCompile(`__kernel\s+void\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// KernelNames returns the kernel function names declared in the source, in
// order of appearance.
func (s Source) KernelNames() []string {
	matches := kernelDeclRe.FindAllStringSubmatch(s.Text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Validate performs the checks every backend needs before compiling:
// non-empty text, at least one kernel declaration, and a declared entry
// point that actually exists.
func (s Source) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptySource
	}
	names := s.KernelNames()
	if len(names) == 0 {
		return ErrNoKernel
	}
	if s.EntryPoint != "" {
		for _, n := range names {
			if n == s.EntryPoint {
				return nil
			}
		}
		return fmt.Errorf("kernels: entry point %q not declared in source", s.EntryPoint)
	}
	return nil
}
