package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaler_FitTransform(t *testing.T) {
	matrix := [][]float64{
		{1, 10},
		{3, 20},
	}

	s := NewScaler()
	scaled, err := s.FitTransform(matrix)
	require.NoError(t, err)

	// Columns come out centered at zero with unit variance.
	assert.InDelta(t, -1.0, scaled[0][0], 1e-9)
	assert.InDelta(t, 1.0, scaled[1][0], 1e-9)
	assert.InDelta(t, -1.0, scaled[0][1], 1e-9)
	assert.InDelta(t, 1.0, scaled[1][1], 1e-9)
}

func TestScaler_ZeroVarianceColumn(t *testing.T) {
	matrix := [][]float64{
		{5, 1},
		{5, 3},
	}

	s := NewScaler()
	scaled, err := s.FitTransform(matrix)
	require.NoError(t, err)

	// A constant column divides by one, passing through centered.
	assert.Equal(t, 0.0, scaled[0][0])
	assert.Equal(t, 0.0, scaled[1][0])
}

func TestScaler_TransformBeforeFit(t *testing.T) {
	s := NewScaler()
	_, err := s.Transform([]float64{1, 2})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestScaler_WidthMismatch(t *testing.T) {
	s := NewScaler()
	require.NoError(t, s.Fit([][]float64{{1, 2}, {3, 4}}))

	_, err := s.Transform([]float64{1})
	assert.Error(t, err)
}

func TestScaler_RaggedMatrix(t *testing.T) {
	s := NewScaler()
	err := s.Fit([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestFuse(t *testing.T) {
	fused := Fuse([]float64{0.1, 0.2}, []float64{1, 0, 1})
	assert.Equal(t, []float64{0.1, 0.2, 1, 0, 1}, fused)
}
