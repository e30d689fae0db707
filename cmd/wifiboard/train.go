package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/wifiboard/internal/predict"
	"github.com/jpalmerr/wifiboard/internal/survey"
	"github.com/spf13/cobra"
)

// trainCmd fits a prediction model from collected survey data.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a signal prediction model from survey data",
	Long: `Train a signal prediction model from collected survey data.

Training fits a linear and a k-nearest-neighbors regressor on the
surveyed (x, y) -> signal strength samples and keeps whichever scores
better on a holdout split. The model is written as a JSON file that
"wifiboard serve" loads via the model_file config field.

At least 10 samples are required; a few dozen locations with several
scan passes each gives far better results.

Example:
  wifiboard train --db survey.db -o signal_model.json
  wifiboard train --db survey.db --ssid HomeNet --neighbors 3`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("db", "survey.db", "survey database path")
	trainCmd.Flags().StringP("output", "o", "signal_model.json", "model output file")
	trainCmd.Flags().String("ssid", "", "train on one network only (default: all)")
	trainCmd.Flags().Int("neighbors", 0, "k for the nearest-neighbor candidate (default 5)")
	trainCmd.Flags().Float64("holdout", 0, "fraction of samples held out for scoring (default 0.2)")
	trainCmd.Flags().Uint64("seed", 0, "shuffle seed for a reproducible split (default: random)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	db, _ := cmd.Flags().GetString("db")
	output, _ := cmd.Flags().GetString("output")
	ssid, _ := cmd.Flags().GetString("ssid")
	neighbors, _ := cmd.Flags().GetInt("neighbors")
	holdout, _ := cmd.Flags().GetFloat64("holdout")
	seed, _ := cmd.Flags().GetUint64("seed")

	logger := newLogger("")
	store, err := survey.Open(db, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stored, err := store.Samples(ctx, ssid)
	if err != nil {
		return err
	}

	samples := make([]predict.Sample, len(stored))
	for i, smp := range stored {
		samples[i] = predict.Sample{
			X:    smp.Location.X,
			Y:    smp.Location.Y,
			RSSI: float64(smp.SignalDBm),
		}
	}

	model, err := predict.Train(samples, predict.TrainOptions{
		Neighbors: neighbors,
		Holdout:   holdout,
		Seed:      seed,
	})
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if err := model.Save(output); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	fmt.Printf("Model trained!\n")
	fmt.Printf("  Model:    %s\n", model.DisplayName())
	fmt.Printf("  Samples:  %d\n", model.Samples)
	fmt.Printf("  Holdout:  %d\n", model.Metrics.Holdout)
	fmt.Printf("  MAE:      %.2f dBm\n", model.Metrics.MAE)
	fmt.Printf("  RMSE:     %.2f dBm\n", model.Metrics.RMSE)
	fmt.Printf("  R2:       %.3f\n", model.Metrics.R2)
	fmt.Printf("  Saved to: %s\n", output)

	return nil
}
