package survey

import (
	"errors"
	"fmt"
)

// GridPoints lays out a rows x cols survey grid with the given spacing.
// Columns advance along x and rows along y, and point names follow the
// Grid_row_col convention so grid surveys sort and group naturally.
func GridPoints(rows, cols int, spacing float64) ([]Location, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.New("grid dimensions must be positive")
	}
	if spacing <= 0 {
		return nil, errors.New("grid spacing must be positive")
	}

	points := make([]Location, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			points = append(points, Location{
				X:    float64(c) * spacing,
				Y:    float64(r) * spacing,
				Name: fmt.Sprintf("Grid_%d_%d", r, c),
			})
		}
	}
	return points, nil
}
