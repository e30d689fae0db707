package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jpalmerr/wifiboard/config"
	"github.com/jpalmerr/wifiboard/internal/survey"
	"github.com/spf13/cobra"
)

// collectCmd gathers site-survey samples into a SQLite database.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect site-survey samples at floor-plan locations",
	Long: `Collect site-survey samples into a SQLite database.

Each location is scanned several times to smooth out jitter, and every
visible network in every pass is stored with the location it was seen
from. The resulting data set feeds "wifiboard train".

Two collection modes:
  - Single point: scan at the coordinates given by --x/--y.
  - Grid walk: --grid ROWSxCOLS visits every point of a grid, pausing
    at each one until you press Enter (use --no-prompt to skip the
    pauses, e.g. with the simulated scanner).

Example:
  wifiboard collect --db survey.db --x 2.5 --y 4 --name Kitchen
  wifiboard collect --db survey.db --grid 5x5 --spacing 1.5
  wifiboard collect --db survey.db --grid 3x3 --scanner simulated --no-prompt`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().String("db", "survey.db", "survey database path")
	collectCmd.Flags().String("scanner", config.ScannerAuto, "scan backend: auto, system, or simulated")
	collectCmd.Flags().Float64("x", 0, "X coordinate of the survey point (meters)")
	collectCmd.Flags().Float64("y", 0, "Y coordinate of the survey point (meters)")
	collectCmd.Flags().String("name", "", "survey point name, e.g. Kitchen")
	collectCmd.Flags().Int("scans", 3, "scan passes per location")
	collectCmd.Flags().Duration("delay", 2*time.Second, "pause between scan passes")
	collectCmd.Flags().Duration("timeout", 10*time.Second, "timeout per scan")
	collectCmd.Flags().String("grid", "", "survey a ROWSxCOLS grid instead of a single point")
	collectCmd.Flags().Float64("spacing", 1.0, "distance between grid points (meters)")
	collectCmd.Flags().Bool("no-prompt", false, "walk the grid without pausing between points")
}

func runCollect(cmd *cobra.Command, args []string) error {
	db, _ := cmd.Flags().GetString("db")
	kind, _ := cmd.Flags().GetString("scanner")
	x, _ := cmd.Flags().GetFloat64("x")
	y, _ := cmd.Flags().GetFloat64("y")
	name, _ := cmd.Flags().GetString("name")
	scans, _ := cmd.Flags().GetInt("scans")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	grid, _ := cmd.Flags().GetString("grid")
	spacing, _ := cmd.Flags().GetFloat64("spacing")
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")

	logger := newLogger("")
	scanner, err := newScanner(kind)
	if err != nil {
		return err
	}

	store, err := survey.Open(db, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	collector := survey.NewCollector(logger, scanner, store, survey.CollectorConfig{
		ScansPerPoint: scans,
		Delay:         delay,
		Timeout:       timeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stored int
	if grid != "" {
		rows, cols, err := parseGridSize(grid)
		if err != nil {
			return err
		}
		if noPrompt {
			stored, err = collector.CollectGrid(ctx, rows, cols, spacing)
		} else {
			stored, err = collectGridPrompted(ctx, collector, rows, cols, spacing)
		}
		if err != nil {
			return fmt.Errorf("grid survey failed after %d samples: %w", stored, err)
		}
	} else {
		stored, err = collector.CollectAt(ctx, survey.Location{X: x, Y: y, Name: name})
		if err != nil {
			return fmt.Errorf("survey failed after %d samples: %w", stored, err)
		}
	}

	fmt.Printf("Stored %d samples\n", stored)
	if sum, err := store.Summary(ctx); err == nil {
		fmt.Printf("  Database:  %s\n", db)
		fmt.Printf("  Samples:   %d\n", sum.Samples)
		fmt.Printf("  Networks:  %d\n", sum.Networks)
		fmt.Printf("  Locations: %d\n", sum.Locations)
	}

	return nil
}

// collectGridPrompted walks the grid point by point, waiting for Enter
// before each scan so the operator has time to physically move there.
func collectGridPrompted(ctx context.Context, c *survey.Collector, rows, cols int, spacing float64) (int, error) {
	points, err := survey.GridPoints(rows, cols, spacing)
	if err != nil {
		return 0, err
	}

	fmt.Printf("Grid survey: %d points (%dx%d, %.1fm spacing)\n", len(points), rows, cols, spacing)
	in := bufio.NewReader(os.Stdin)

	total := 0
	for i, loc := range points {
		fmt.Printf("[%d/%d] Move to %s, then press Enter to scan... ", i+1, len(points), loc)
		if _, err := in.ReadString('\n'); err != nil {
			return total, fmt.Errorf("read prompt: %w", err)
		}

		n, err := c.CollectAt(ctx, loc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func parseGridSize(s string) (rows, cols int, err error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("grid must look like ROWSxCOLS, e.g. 5x5, got %q", s)
	}
	rows, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("grid rows %q: %w", parts[0], err)
	}
	cols, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("grid columns %q: %w", parts[1], err)
	}
	return rows, cols, nil
}
