package survey

import "testing"

func TestGridPoints(t *testing.T) {
	points, err := GridPoints(2, 3, 1.5)
	if err != nil {
		t.Fatalf("GridPoints() error = %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("GridPoints() returned %d points, want 6", len(points))
	}

	first := Location{X: 0, Y: 0, Name: "Grid_0_0"}
	if points[0] != first {
		t.Errorf("points[0] = %+v, want %+v", points[0], first)
	}
	last := Location{X: 3, Y: 1.5, Name: "Grid_1_2"}
	if points[5] != last {
		t.Errorf("points[5] = %+v, want %+v", points[5], last)
	}
}

func TestGridPoints_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		cols    int
		spacing float64
	}{
		{name: "zero rows", rows: 0, cols: 3, spacing: 1},
		{name: "zero cols", rows: 3, cols: 0, spacing: 1},
		{name: "negative rows", rows: -1, cols: 3, spacing: 1},
		{name: "zero spacing", rows: 2, cols: 2, spacing: 0},
		{name: "negative spacing", rows: 2, cols: 2, spacing: -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GridPoints(tt.rows, tt.cols, tt.spacing); err == nil {
				t.Error("GridPoints() error = nil, want error")
			}
		})
	}
}
