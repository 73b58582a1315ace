package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ViktorB9898/vecrun/pkg/compute"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Enumerate compute backends and their devices",
	RunE:  runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	statuses := compute.Discover()
	fmt.Printf("%-8s %-10s %s\n", "BACKEND", "AVAILABLE", "DEVICES")
	for _, st := range statuses {
		fmt.Printf("%-8s %-10v %d\n", st.Backend, st.Available, st.Devices)
	}

	// Open the best device for the detail line.
	eng, err := compute.NewEngine(nil)
	if err != nil {
		return err
	}
	defer eng.Release()

	info := eng.Device().Info()
	fmt.Printf("\nSelected device: %s\n", info.Name)
	fmt.Printf("  Backend: %s\n", info.Backend)
	fmt.Printf("  Vendor:  %s\n", info.Vendor)
	if info.MemoryBytes > 0 {
		fmt.Printf("  Memory:  %d MB\n", info.MemoryMB())
	}
	return nil
}
