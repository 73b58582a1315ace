package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ViktorB9898/vecrun/pkg/compute"
	"github.com/ViktorB9898/vecrun/pkg/kernels"
	"github.com/ViktorB9898/vecrun/pkg/pool"
	"github.com/ViktorB9898/vecrun/pkg/results"
	"github.com/ViktorB9898/vecrun/pkg/runner"
)

// Initial vector values. With y constant at 2.0 the result after R
// repetitions is 3.0 * 2.0^R per element, which makes the final sum easy
// to verify by eye.
const (
	xInit = 3.0
	yInit = 2.0
)

var runFlags struct {
	configFile string
	backend    string
	deviceID   int
	size       int
	reps       int
	globalSize int
	localSize  int
	kernelFile string
	dataDir    string
	noSave     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the vector multiply protocol and report timings",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.configFile, "config", "", "YAML config file")
	f.StringVar(&runFlags.backend, "backend", "", "backend to use (opencl, cuda, cpu); empty = auto")
	f.IntVar(&runFlags.deviceID, "device", 0, "device index within the backend")
	f.IntVar(&runFlags.size, "size", 0, "vector length N (default from config)")
	f.IntVar(&runFlags.reps, "reps", 0, "repetition count (default from config)")
	f.IntVar(&runFlags.globalSize, "global", 0, "launch grid global size (default from config)")
	f.IntVar(&runFlags.localSize, "local", 0, "launch grid local size (default from config)")
	f.StringVar(&runFlags.kernelFile, "kernel", "", "replacement kernel source file")
	f.StringVar(&runFlags.dataDir, "data", "./data", "directory for the run-record store")
	f.BoolVar(&runFlags.noSave, "no-save", false, "do not persist the run record")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	backend, err := compute.ParseBackend(runFlags.backend)
	if err != nil {
		return err
	}

	// Backend and device discovery.
	statuses := compute.Discover()
	fmt.Printf("# Backends probed: %d\n", len(statuses))
	for _, st := range statuses {
		fmt.Printf("#   %-7s available=%-5v devices=%d\n", st.Backend, st.Available, st.Devices)
	}

	eng, err := compute.NewEngine(&compute.Config{
		PreferredBackend: backend,
		DeviceID:         runFlags.deviceID,
		FallbackToCPU:    true,
	})
	if err != nil {
		return err
	}
	defer eng.Release()

	fmt.Printf("Using the following device: %s (%s)\n\n", eng.DeviceName(), eng.Backend())

	// Host vectors.
	x := pool.GetVector(cfg.VectorSize)
	defer pool.PutVector(x)
	y := pool.GetVector(cfg.VectorSize)
	defer pool.PutVector(y)
	fill(x, xInit)
	fill(y, yInit)

	r, err := runner.New(eng.Device(), cfg)
	if err != nil {
		return err
	}

	rep, err := r.Run(x, y)
	if err != nil {
		// Surface the full build log and program text before
		// aborting.
		var be *kernels.BuildError
		if errors.As(err, &be) {
			fmt.Printf("Build log:\n%s\n\n", be.Log)
			fmt.Printf("Program source:\n%s\n", be.Source)
		}
		return err
	}

	fmt.Printf("Time to compile and create kernel: %v\n\n", rep.CompileTime)

	fmt.Println("Vectors before kernel launch:")
	printPreview("x", rep.XBefore)
	printPreview("y", rep.YBefore)
	fmt.Println()

	fmt.Printf("Exec. time (repetition %d of %d):\n%v\n\n",
		len(rep.Times)/2, len(rep.Times), rep.Representative())

	fmt.Println("Vectors after kernel execution:")
	printPreview("x", rep.XAfter)
	printPreview("y", rep.YAfter)
	fmt.Println()

	fmt.Printf("Dot product of x and y = %g\n", rep.Sum)
	fmt.Printf("Result digest: %s\n", rep.Digest)

	stats := eng.Stats()
	fmt.Printf("Transferred: %d bytes up, %d bytes down, %d kernel executions\n",
		stats.BytesUploaded, stats.BytesDownloaded, stats.KernelExecutions)

	if !runFlags.noSave {
		if err := saveRecord(rep); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println("#")
	fmt.Println("# Run finished successfully!")
	fmt.Println("#")
	return nil
}

// loadRunConfig builds the effective config: file (or defaults), then flag
// overrides.
func loadRunConfig(cmd *cobra.Command) (*runner.Config, error) {
	cfg := runner.DefaultConfig()
	if runFlags.configFile != "" {
		loaded, err := runner.LoadConfig(runFlags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("size") {
		cfg.VectorSize = runFlags.size
	}
	if cmd.Flags().Changed("reps") {
		cfg.Repetitions = runFlags.reps
	}
	if cmd.Flags().Changed("global") {
		cfg.GlobalSize = runFlags.globalSize
	}
	if cmd.Flags().Changed("local") {
		cfg.LocalSize = runFlags.localSize
	}
	if cmd.Flags().Changed("kernel") {
		cfg.KernelFile = runFlags.kernelFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveRecord(rep *runner.Report) error {
	store, err := results.Open(runFlags.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := results.NewRecord(rep)
	if err := store.Save(rec); err != nil {
		return err
	}
	fmt.Printf("Saved run record %s\n", rec.ID)
	return nil
}

func fill(v []float64, value float64) {
	for i := range v {
		v[i] = value
	}
}

func printPreview(name string, v []float64) {
	fmt.Printf("%s:", name)
	for _, e := range v {
		fmt.Printf(" %g", e)
	}
	fmt.Println(" ...")
}
