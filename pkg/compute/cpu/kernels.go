package cpu

import (
	"fmt"

	"github.com/ViktorB9898/vecrun/pkg/kernels"
)

// kernelImpl is a built-in Go implementation of a kernel. check validates
// arguments at dispatch time; run executes workers [first, last) of a grid
// of globalSize workers, each iterating grid-stride over the index range.
type kernelImpl struct {
	check func(args []any) error
	run   func(first, last, globalSize int, args []any) error
}

// builtins maps kernel names to their implementations. The simulated device
// does not interpret kernel bodies; it requires the name to be both declared
// in the program source and present here.
var builtins = map[string]kernelImpl{
	kernels.DefaultEntryPoint: {
		check: checkMulArgs,
		run:   runMul,
	},
}

// checkMulArgs validates the (x *Buffer, y *Buffer, n uint32) signature.
func checkMulArgs(args []any) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: want 3 arguments, got %d", ErrBadArguments, len(args))
	}
	x, ok := args[0].(*Buffer)
	if !ok {
		return fmt.Errorf("%w: argument 0 must be *cpu.Buffer", ErrBadArguments)
	}
	y, ok := args[1].(*Buffer)
	if !ok {
		return fmt.Errorf("%w: argument 1 must be *cpu.Buffer", ErrBadArguments)
	}
	n, ok := args[2].(uint32)
	if !ok {
		return fmt.Errorf("%w: argument 2 must be uint32", ErrBadArguments)
	}
	if x.data == nil || y.data == nil {
		return ErrBufferReleased
	}
	if int(n) > len(x.data) || int(n) > len(y.data) {
		return fmt.Errorf("%w: n=%d exceeds buffer length", ErrSizeMismatch, n)
	}
	return nil
}

// runMul is the elementwise multiply: x[i] = x[i] * y[i] for every index a
// worker reaches by stepping globalSize. Each index is touched by exactly
// one worker, so strips never overlap.
func runMul(first, last, globalSize int, args []any) error {
	x := args[0].(*Buffer)
	y := args[1].(*Buffer)
	n := int(args[2].(uint32))

	if x.data == nil || y.data == nil {
		return ErrBufferReleased
	}
	for w := first; w < last; w++ {
		for i := w; i < n; i += globalSize {
			x.data[i] *= y.data[i]
		}
	}
	return nil
}
