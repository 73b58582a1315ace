// Package opencl provides cross-platform accelerator execution using OpenCL.
//
// This package implements the compute device protocol (runtime program
// compilation, buffer transfer, kernel dispatch through an in-order command
// queue, and blocking readback) on any OpenCL 1.2+ device.
//
// # Requirements
//
// For AMD GPUs on Linux:
//   - ROCm (Radeon Open Compute): https://rocm.docs.amd.com/
//   - Or AMD GPU drivers with OpenCL support
//
// For Intel GPUs:
//   - Intel oneAPI or Intel OpenCL runtime
//
// For NVIDIA GPUs:
//   - NVIDIA drivers with OpenCL support
//
// Double-precision kernels additionally require the cl_khr_fp64 device
// extension; the default elementwise-multiply program enables it with a
// pragma.
//
// # Build Tags
//
// This package is only compiled when the "opencl" build tag is present:
//
//	go build -tags opencl
//
// Without the tag, every entry point returns ErrOpenCLNotAvailable and
// IsAvailable reports false, so callers fall back to another backend.
//
// # Compilation and build logs
//
// Programs are compiled from source at device-creation time of the caller's
// choosing, not package init. On build failure the full compiler build log
// and the program text are returned in a *kernels.BuildError so they can be
// printed before aborting.
//
// # Example
//
//	device, err := opencl.NewDevice(0) // first GPU device
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer device.Release()
//
//	prog, err := device.Compile(kernels.ElementwiseMultiply())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer prog.Release()
//
//	kern, _ := prog.Kernel(kernels.DefaultEntryPoint)
//	x, _ := device.NewBuffer(hostX)
//	y, _ := device.NewBuffer(hostY)
//
//	device.Dispatch(kern, 128*128, 128, x, y, uint32(len(hostX)))
//	if err := device.Wait(); err != nil {
//		log.Fatal(err)
//	}
//	device.ReadBack(x, hostX)
package opencl
