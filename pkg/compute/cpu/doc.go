// Package cpu provides a simulated in-process compute device.
//
// The device implements the full accelerator protocol (compile, buffer
// upload, asynchronous dispatch through an in-order queue, wait, blocking
// readback) without any vendor runtime, so the protocol can run and be
// tested on any machine.
//
// # Compilation
//
// Compile performs the checks a runtime compiler would reject the program
// for (missing kernel declarations, unbalanced braces or parentheses) and
// produces a build log on failure, allowing build-failure paths to be
// exercised end to end. Kernel bodies are not interpreted: each kernel name
// maps to a built-in Go implementation with identical semantics, executed
// with grid-stride iteration so any global worker count covers the index
// range exactly once per dispatch.
//
// Built-in kernels:
//   - dot_product: elementwise multiply, x[i] = x[i] * y[i]
//
// # Execution model
//
// One goroutine drains an in-order job queue, matching a single in-order
// command queue: dispatch is asynchronous at submission, Wait blocks until
// everything submitted has completed. Inside one dispatch, the global worker
// range is striped across a fixed pool of goroutines.
//
// # Example
//
//	dev, _ := cpu.NewDevice(0) // 0 = GOMAXPROCS workers
//	defer dev.Release()
//
//	prog, err := dev.Compile(kernels.ElementwiseMultiply())
//	if err != nil {
//		var be *kernels.BuildError
//		if errors.As(err, &be) {
//			fmt.Println(be.Log)
//		}
//		return err
//	}
//	defer prog.Release()
package cpu
