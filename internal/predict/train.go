package predict

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

const (
	defaultNeighbors = 5
	defaultHoldout   = 0.2
	minSamples       = 10
)

// Sample is one surveyed measurement: a floor-plan location and the signal
// strength observed there.
type Sample struct {
	X    float64
	Y    float64
	RSSI float64
}

// TrainOptions tune Train. Zero values fall back to 5 neighbors, a 20%
// holdout, and a clock-seeded shuffle.
type TrainOptions struct {
	// Neighbors is k for the nearest-neighbor candidate.
	Neighbors int

	// Holdout is the fraction of samples reserved for evaluation. Values
	// outside (0, 1) use the default.
	Holdout float64

	// Seed fixes the shuffle for reproducible splits.
	Seed uint64
}

// Train fits a linear and a nearest-neighbor regressor on the samples and
// returns whichever scores the better R2 on the holdout set. The linear
// candidate is dropped when the survey locations are collinear.
func Train(samples []Sample, opts TrainOptions) (*Model, error) {
	if len(samples) < minSamples {
		return nil, fmt.Errorf("predict: need at least %d samples, got %d", minSamples, len(samples))
	}
	if opts.Neighbors <= 0 {
		opts.Neighbors = defaultNeighbors
	}
	if opts.Holdout <= 0 || opts.Holdout >= 1 {
		opts.Holdout = defaultHoldout
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	shuffled := make([]Sample, len(samples))
	copy(shuffled, samples)
	rng := rand.New(rand.NewPCG(opts.Seed, 0))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTest := int(float64(len(shuffled)) * opts.Holdout)
	if nTest < 1 {
		nTest = 1
	}
	test, train := shuffled[:nTest], shuffled[nTest:]

	scaler := fitScaler(train)
	trainPts := scalePoints(scaler, train)

	candidates := make([]*Model, 0, 2)
	if lin, ok := fitLinear(trainPts); ok {
		lin.Scaler = scaler
		candidates = append(candidates, lin)
	}
	candidates = append(candidates, &Model{
		Name:      ModelKNN,
		Scaler:    scaler,
		Neighbors: opts.Neighbors,
		Points:    trainPts,
	})

	var best *Model
	for _, m := range candidates {
		m.TrainedAt = time.Now().UTC()
		m.Samples = len(train)
		m.Metrics = evaluate(m, test)
		if best == nil || m.Metrics.R2 > best.Metrics.R2 {
			best = m
		}
	}
	return best, nil
}

// KNN builds a nearest-neighbor model directly over samples, retaining
// every point. Unlike [Train] it holds nothing out and fits no competing
// candidate; it serves live prediction over a survey store, where the data
// set changes between runs and a model file would go stale.
func KNN(samples []Sample, k int) (*Model, error) {
	if len(samples) == 0 {
		return nil, errors.New("predict: no survey samples")
	}
	if k <= 0 {
		k = defaultNeighbors
	}
	scaler := fitScaler(samples)
	m := &Model{
		Name:      ModelKNN,
		TrainedAt: time.Now().UTC(),
		Samples:   len(samples),
		Scaler:    scaler,
		Neighbors: k,
		Points:    scalePoints(scaler, samples),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func fitScaler(samples []Sample) Scaler {
	var sumX, sumY float64
	for _, s := range samples {
		sumX += s.X
		sumY += s.Y
	}
	n := float64(len(samples))
	meanX, meanY := sumX/n, sumY/n

	var varX, varY float64
	for _, s := range samples {
		varX += (s.X - meanX) * (s.X - meanX)
		varY += (s.Y - meanY) * (s.Y - meanY)
	}
	stdX, stdY := math.Sqrt(varX/n), math.Sqrt(varY/n)
	// degenerate surveys (every point on one axis) still need a usable
	// scaler
	if stdX == 0 {
		stdX = 1
	}
	if stdY == 0 {
		stdY = 1
	}
	return Scaler{MeanX: meanX, MeanY: meanY, StdX: stdX, StdY: stdY}
}

func scalePoints(sc Scaler, samples []Sample) []Point {
	pts := make([]Point, len(samples))
	for i, s := range samples {
		x, y := sc.transform(s.X, s.Y)
		pts[i] = Point{X: x, Y: y, RSSI: s.RSSI}
	}
	return pts
}

// fitLinear solves ordinary least squares for rssi = a + b*x + c*y through
// the normal equations. ok is false when the design matrix is singular.
func fitLinear(pts []Point) (*Model, bool) {
	var sx, sy, sxx, syy, sxy, sr, sxr, syr float64
	n := float64(len(pts))
	for _, p := range pts {
		sx += p.X
		sy += p.Y
		sxx += p.X * p.X
		syy += p.Y * p.Y
		sxy += p.X * p.Y
		sr += p.RSSI
		sxr += p.X * p.RSSI
		syr += p.Y * p.RSSI
	}

	// 3x3 system solved by Cramer's rule:
	//   | n   sx  sy  | |a|   | sr  |
	//   | sx  sxx sxy | |b| = | sxr |
	//   | sy  sxy syy | |c|   | syr |
	det := n*(sxx*syy-sxy*sxy) - sx*(sx*syy-sxy*sy) + sy*(sx*sxy-sxx*sy)
	if math.Abs(det) < 1e-9 {
		return nil, false
	}
	a := (sr*(sxx*syy-sxy*sxy) - sx*(sxr*syy-sxy*syr) + sy*(sxr*sxy-sxx*syr)) / det
	b := (n*(sxr*syy-sxy*syr) - sr*(sx*syy-sxy*sy) + sy*(sx*syr-sxr*sy)) / det
	c := (n*(sxx*syr-sxr*sxy) - sx*(sx*syr-sxr*sy) + sr*(sx*sxy-sxx*sy)) / det

	return &Model{Name: ModelLinear, Intercept: a, CoefX: b, CoefY: c}, true
}

func evaluate(m *Model, test []Sample) Metrics {
	var absSum, sqSum, ySum float64
	for _, s := range test {
		diff := m.Predict(s.X, s.Y) - s.RSSI
		absSum += math.Abs(diff)
		sqSum += diff * diff
		ySum += s.RSSI
	}
	n := float64(len(test))
	mean := ySum / n

	var ssTot float64
	for _, s := range test {
		ssTot += (s.RSSI - mean) * (s.RSSI - mean)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - sqSum/ssTot
	}
	return Metrics{
		MAE:     absSum / n,
		RMSE:    math.Sqrt(sqSum / n),
		R2:      r2,
		Holdout: len(test),
	}
}
