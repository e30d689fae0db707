package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"
)

// Model kinds stored in the model file.
const (
	ModelLinear = "linear"
	ModelKNN    = "knn"
)

// Scaler standardizes location features to zero mean and unit variance,
// using the statistics of the training set.
type Scaler struct {
	MeanX float64 `json:"mean_x"`
	MeanY float64 `json:"mean_y"`
	StdX  float64 `json:"std_x"`
	StdY  float64 `json:"std_y"`
}

func (s Scaler) transform(x, y float64) (float64, float64) {
	return (x - s.MeanX) / s.StdX, (y - s.MeanY) / s.StdY
}

// Point is one scaled training sample retained for nearest-neighbor
// prediction.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	RSSI float64 `json:"rssi"`
}

// Metrics are regression scores computed on the holdout set during
// training.
type Metrics struct {
	MAE     float64 `json:"mae"`
	RMSE    float64 `json:"rmse"`
	R2      float64 `json:"r2"`
	Holdout int     `json:"holdout_samples"`
}

// Model predicts signal strength (RSSI in dBm) from floor-plan coordinates.
// It doubles as the JSON document stored in the model file.
type Model struct {
	Name      string    `json:"model_name"`
	TrainedAt time.Time `json:"trained_at"`
	Samples   int       `json:"training_samples"`
	Scaler    Scaler    `json:"scaler"`
	Metrics   Metrics   `json:"metrics"`

	// Linear parameters, used when Name is "linear". The coefficients
	// apply to scaled features.
	Intercept float64 `json:"intercept,omitempty"`
	CoefX     float64 `json:"coef_x,omitempty"`
	CoefY     float64 `json:"coef_y,omitempty"`

	// Retained training set, used when Name is "knn".
	Neighbors int     `json:"neighbors,omitempty"`
	Points    []Point `json:"points,omitempty"`
}

// DisplayName returns the human-readable model name used in API replies.
func (m *Model) DisplayName() string {
	switch m.Name {
	case ModelLinear:
		return "Linear Regression"
	case ModelKNN:
		return "k-Nearest Neighbors"
	default:
		return m.Name
	}
}

// Predict returns the estimated RSSI at (x, y).
func (m *Model) Predict(x, y float64) float64 {
	xs, ys := m.Scaler.transform(x, y)
	if m.Name == ModelKNN {
		return m.predictKNN(xs, ys)
	}
	return m.Intercept + m.CoefX*xs + m.CoefY*ys
}

// predictKNN averages the RSSI of the k nearest retained points, by
// Euclidean distance in scaled feature space.
func (m *Model) predictKNN(xs, ys float64) float64 {
	k := m.Neighbors
	if k <= 0 {
		k = defaultNeighbors
	}
	if k > len(m.Points) {
		k = len(m.Points)
	}

	type scored struct {
		dist float64
		rssi float64
	}
	neighbors := make([]scored, len(m.Points))
	for i, p := range m.Points {
		neighbors[i] = scored{dist: math.Hypot(p.X-xs, p.Y-ys), rssi: p.RSSI}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	var sum float64
	for _, n := range neighbors[:k] {
		sum += n.rssi
	}
	return sum / float64(k)
}

func (m *Model) validate() error {
	switch m.Name {
	case ModelLinear:
	case ModelKNN:
		if len(m.Points) == 0 {
			return errors.New("knn model has no training points")
		}
	default:
		return fmt.Errorf("unknown model %q", m.Name)
	}
	if m.Scaler.StdX == 0 || m.Scaler.StdY == 0 {
		return errors.New("scaler has zero variance")
	}
	return nil
}

// Load reads and validates a model file produced by Train.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("load model: parse %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &m, nil
}

// Save writes the model to path as indented JSON.
func (m *Model) Save(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}
