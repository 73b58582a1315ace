// Package cuda provides NVIDIA accelerator execution using CUDA.
//
// This package requires:
//   - NVIDIA GPU with CUDA Compute Capability 3.5+
//   - CUDA Toolkit 11.0+ installed with NVRTC for runtime compilation
//
// Build tags:
//   - Build with: go build -tags cuda
//   - Without the tag every entry point returns ErrCUDANotAvailable and
//     IsAvailable reports false, so callers fall back to another backend.
//
// Only the stub is present in this repository; the driver bridge follows
// the same protocol as the opencl package (runtime compilation with build
// log capture, buffer upload, in-order stream dispatch, synchronize,
// blocking readback).
//
// Example usage:
//
//	if cuda.IsAvailable() {
//		device, err := cuda.NewDevice(0)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer device.Release()
//
//		prog, _ := device.Compile(kernels.ElementwiseMultiply())
//		kern, _ := prog.Kernel(kernels.DefaultEntryPoint)
//		...
//	}
package cuda
