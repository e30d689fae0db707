package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpalmerr/wifiboard/internal/predict"
)

func TestRunTrain(t *testing.T) {
	tmpDir := t.TempDir()
	db := filepath.Join(tmpDir, "survey.db")
	modelPath := filepath.Join(tmpDir, "model.json")

	// seed the database: 2x2 grid x 1 pass x 8 networks = 32 samples
	if _, err := executeCommand(t, "collect",
		"--db", db,
		"--scanner", "simulated",
		"--grid", "2x2",
		"--spacing", "1.0",
		"--scans", "1",
		"--no-prompt",
	); err != nil {
		t.Fatalf("collect command error = %v", err)
	}

	output, err := executeCommand(t, "train",
		"--db", db,
		"-o", modelPath,
		"--seed", "42",
	)
	if err != nil {
		t.Fatalf("train command error = %v", err)
	}

	expectedPhrases := []string{
		"Model trained!",
		"MAE:",
		"RMSE:",
		"Saved to: " + modelPath,
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}

	// the written model must load back
	model, err := predict.Load(modelPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if model.Name != predict.ModelLinear && model.Name != predict.ModelKNN {
		t.Errorf("model.Name = %q, want linear or knn", model.Name)
	}
	if model.Metrics.Holdout == 0 {
		t.Error("model.Metrics.Holdout = 0, want > 0")
	}
}

func TestRunTrain_NotEnoughSamples(t *testing.T) {
	tmpDir := t.TempDir()
	db := filepath.Join(tmpDir, "empty.db")

	_, err := executeCommand(t, "train",
		"--db", db,
		"-o", filepath.Join(tmpDir, "model.json"),
	)
	if err == nil {
		t.Fatal("train command expected error for empty survey, got nil")
	}

	if !strings.Contains(err.Error(), "need at least 10 samples") {
		t.Errorf("error should mention the sample minimum, got: %v", err)
	}
}
