// Command vecrun launches vector compute kernels on an accelerator and
// times repeated executions.
//
// The run command transfers two host vectors to the selected device once,
// dispatches an elementwise-multiply kernel a fixed number of times against
// the same buffers, reads the result back after every dispatch, reduces it
// to a scalar sum on the host, and reports the middle repetition's
// wall-clock time. Completed runs are persisted so timings can be compared
// over time.
//
// Usage:
//
//	# Run with the historical defaults (50M elements, 6 repetitions)
//	vecrun run
//
//	# Smaller run on the simulated cpu backend, no persistence
//	vecrun run --backend cpu --size 1000000 --reps 3 --no-save
//
//	# Enumerate backends and devices
//	vecrun devices
//
//	# Show persisted runs
//	vecrun history
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "vecrun",
	Short:         "Launch vector compute kernels on an accelerator and time them",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(runCmd, devicesCmd, historyCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
