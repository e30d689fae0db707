package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/wifiboard/internal/survey"
	"github.com/spf13/cobra"
)

// exportCmd dumps the survey database as CSV.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export survey samples as CSV",
	Long: `Export every sample in the survey database as CSV.

The column layout matches what the analysis notebooks expect:
timestamp, location, network identity, signal readings, and scan pass.

With no --output the CSV goes to stdout, so it pipes cleanly:

  wifiboard export --db survey.db | head
  wifiboard export --db survey.db -o survey.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("db", "survey.db", "survey database path")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, _ := cmd.Flags().GetString("db")
	output, _ := cmd.Flags().GetString("output")

	logger := newLogger("")
	store, err := survey.Open(db, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := store.ExportCSV(ctx, out)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d samples to %s\n", n, output)
	} else {
		logger.Debug("export complete", "samples", n)
	}
	return nil
}
