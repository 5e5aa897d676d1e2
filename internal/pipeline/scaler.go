package pipeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotFitted is returned when Transform is called before Fit. Using an
// unfitted scaler is a wiring bug, not a degraded state, so it fails fast
// instead of silently passing values through.
var ErrNotFitted = errors.New("scaler: transform called before fit")

// Scaler rescales each fused column to zero mean and unit variance using
// statistics learned at training time. Columns with zero variance divide by
// one so constant features pass through centered.
type Scaler struct {
	Mean   []float64
	Std    []float64
	Fitted bool
}

// NewScaler creates an unfitted scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Fit computes per-column mean and standard deviation over the matrix.
func (s *Scaler) Fit(matrix [][]float64) error {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return errors.New("scaler: empty training matrix")
	}

	cols := len(matrix[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for _, row := range matrix {
		if len(row) != cols {
			return fmt.Errorf("scaler: ragged matrix, row width %d != %d", len(row), cols)
		}
		for c, v := range row {
			s.Mean[c] += v
		}
	}
	n := float64(len(matrix))
	for c := range s.Mean {
		s.Mean[c] /= n
	}

	for _, row := range matrix {
		for c, v := range row {
			d := v - s.Mean[c]
			s.Std[c] += d * d
		}
	}
	for c := range s.Std {
		s.Std[c] = math.Sqrt(s.Std[c] / n)
		if s.Std[c] == 0 {
			s.Std[c] = 1
		}
	}

	s.Fitted = true
	return nil
}

// Transform applies (x - mean) / std column-wise.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: vector width %d does not match fitted width %d",
			len(row), len(s.Mean))
	}

	out := make([]float64, len(row))
	for c, v := range row {
		out[c] = (v - s.Mean[c]) / s.Std[c]
	}
	return out, nil
}

// FitTransform fits the scaler and transforms the training matrix in place
// order, returning the scaled copy.
func (s *Scaler) FitTransform(matrix [][]float64) ([][]float64, error) {
	if err := s.Fit(matrix); err != nil {
		return nil, err
	}
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// Fuse concatenates the text vector with the heuristic block in the fixed
// column order the model was trained with: text columns first, then the 16
// heuristic slots.
func Fuse(textVec, heuristics []float64) []float64 {
	fused := make([]float64, 0, len(textVec)+len(heuristics))
	fused = append(fused, textVec...)
	fused = append(fused, heuristics...)
	return fused
}
