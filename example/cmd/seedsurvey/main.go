// Standalone survey seeder for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/seedsurvey
//
// Then from the same directory:
//
//	go run ./cmd/wifiboard serve -c example/config.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jpalmerr/wifiboard/internal/predict"
	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/jpalmerr/wifiboard/internal/survey"
)

const (
	dbPath    = "demo_survey.db"
	modelPath = "demo_model.json"
)

func main() {
	fmt.Println("Seeding demo survey data from the simulated scanner")
	fmt.Println("Walking a 5x5 grid, 2 scans per point...")
	fmt.Println()

	ctx := context.Background()

	store, err := survey.Open(dbPath, nil)
	if err != nil {
		slog.Error("failed to open survey db", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	collector := survey.NewCollector(nil, scan.NewSimulatedScanner(), store, survey.CollectorConfig{
		ScansPerPoint: 2,
		Delay:         50 * time.Millisecond,
		Timeout:       5 * time.Second,
	})
	stored, err := collector.CollectGrid(ctx, 5, 5, 2.0)
	if err != nil {
		slog.Error("grid survey failed", "error", err, "stored", stored)
		os.Exit(1)
	}

	rows, err := store.Samples(ctx, "")
	if err != nil {
		slog.Error("failed to read samples", "error", err)
		os.Exit(1)
	}
	samples := make([]predict.Sample, len(rows))
	for i, r := range rows {
		samples[i] = predict.Sample{X: r.Location.X, Y: r.Location.Y, RSSI: float64(r.SignalDBm)}
	}

	model, err := predict.Train(samples, predict.TrainOptions{Seed: 1})
	if err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
	if err := model.Save(modelPath); err != nil {
		slog.Error("failed to save model", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Stored %d samples in %s\n", stored, dbPath)
	fmt.Printf("Trained %s (MAE %.2f dBm), saved to %s\n", model.DisplayName(), model.Metrics.MAE, modelPath)
	fmt.Println()
	fmt.Println("Now run: go run ./cmd/wifiboard serve -c example/config.yaml")
}
