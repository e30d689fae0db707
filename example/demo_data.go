package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jpalmerr/wifiboard/internal/predict"
	"github.com/jpalmerr/wifiboard/internal/scan"
	"github.com/jpalmerr/wifiboard/internal/survey"
)

// seedDemoModel walks a simulated 3x3 survey grid, trains a signal model on
// the result, and saves it under a temp directory. The demo passes the
// returned path to WithModelFile so location prediction is live immediately.
func seedDemoModel(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "wifiboard-demo")
	if err != nil {
		return "", err
	}

	store, err := survey.Open(filepath.Join(dir, "survey.db"), nil)
	if err != nil {
		return "", err
	}
	defer store.Close()

	collector := survey.NewCollector(nil, scan.NewSimulatedScanner(), store, survey.CollectorConfig{
		ScansPerPoint: 2,
		Delay:         10 * time.Millisecond,
		Timeout:       5 * time.Second,
	})
	if _, err := collector.CollectGrid(ctx, 3, 3, 2.0); err != nil {
		return "", fmt.Errorf("demo survey: %w", err)
	}

	rows, err := store.Samples(ctx, "")
	if err != nil {
		return "", err
	}
	samples := make([]predict.Sample, len(rows))
	for i, r := range rows {
		samples[i] = predict.Sample{X: r.Location.X, Y: r.Location.Y, RSSI: float64(r.SignalDBm)}
	}

	model, err := predict.Train(samples, predict.TrainOptions{Seed: 1})
	if err != nil {
		return "", fmt.Errorf("demo training: %w", err)
	}

	path := filepath.Join(dir, "signal_model.json")
	if err := model.Save(path); err != nil {
		return "", err
	}
	return path, nil
}
