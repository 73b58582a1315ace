package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ViktorB9898/vecrun/pkg/results"
)

var historyFlags struct {
	dataDir string
	limit   int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted run records, newest first",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.dataDir, "data", "./data", "directory of the run-record store")
	f.IntVar(&historyFlags.limit, "limit", 20, "maximum records to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := results.Open(historyFlags.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(historyFlags.limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No run records.")
		return nil
	}

	fmt.Printf("%-36s %-20s %-10s %-12s %-6s %-14s %s\n",
		"ID", "CREATED", "BACKEND", "N", "REPS", "EXEC TIME", "SUM")
	for _, rec := range records {
		fmt.Printf("%-36s %-20s %-10s %-12d %-6d %-14v %g\n",
			rec.ID,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Backend,
			rec.VectorSize,
			rec.Repetitions,
			rec.Representative,
			rec.Sum)
	}
	return nil
}
