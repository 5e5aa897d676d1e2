package classifier

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// separableSet builds a two-feature training set where class 1 clusters
// around (1, 1) and class 0 around (-1, -1).
func separableSet(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	matrix := make([][]float64, 0, n)
	labels := make([]int, 0, n)
	for i := 0; i < n; i++ {
		label := i % 2
		center := -1.0
		if label == 1 {
			center = 1.0
		}
		matrix = append(matrix, []float64{
			center + rng.NormFloat64()*0.3,
			center + rng.NormFloat64()*0.3,
		})
		labels = append(labels, label)
	}
	return matrix, labels
}

func testParams() Params {
	p := DefaultParams()
	p.NumTrees = 20
	p.MaxDepth = 3
	return p
}

func TestEngines_LearnSeparableData(t *testing.T) {
	matrix, labels := separableSet(80, 7)

	engines := []Engine{
		NewHistEngine(testParams(), zap.NewNop()),
		NewExactEngine(testParams(), zap.NewNop()),
	}

	for _, engine := range engines {
		t.Run(engine.Name(), func(t *testing.T) {
			ens, err := engine.Fit(matrix, labels)
			require.NoError(t, err)
			assert.Equal(t, engine.Name(), ens.Engine)
			assert.Len(t, ens.Trees, 20)
			assert.Equal(t, 2, ens.Columns)

			correct := 0
			for i, row := range matrix {
				got, p, err := ens.Predict(row)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
				if got == (labels[i] == 1) {
					correct++
				}
			}
			assert.GreaterOrEqual(t, correct, 76, "training accuracy on separable data")

			// Far-out points score decisively.
			phish, p, err := ens.Predict([]float64{2, 2})
			require.NoError(t, err)
			assert.True(t, phish)
			assert.Greater(t, p, 0.8)

			legit, p, err := ens.Predict([]float64{-2, -2})
			require.NoError(t, err)
			assert.False(t, legit)
			assert.Less(t, p, 0.2)
		})
	}
}

func TestEngines_RejectDegenerateInput(t *testing.T) {
	engines := []Engine{
		NewHistEngine(testParams(), zap.NewNop()),
		NewExactEngine(testParams(), zap.NewNop()),
	}

	for _, engine := range engines {
		t.Run(engine.Name(), func(t *testing.T) {
			_, err := engine.Fit(nil, nil)
			assert.Error(t, err, "empty matrix")

			_, err = engine.Fit([][]float64{{1}, {2}}, []int{1})
			assert.Error(t, err, "row/label mismatch")

			_, err = engine.Fit([][]float64{{1}, {2}}, []int{1, 2})
			assert.Error(t, err, "non-binary label")

			_, err = engine.Fit([][]float64{{1}, {2}}, []int{1, 1})
			assert.Error(t, err, "single class")
		})
	}
}

func TestEnsemble_PredictDimensionMismatch(t *testing.T) {
	matrix, labels := separableSet(40, 3)
	ens, err := NewHistEngine(testParams(), zap.NewNop()).Fit(matrix, labels)
	require.NoError(t, err)

	_, err = ens.PredictProba([]float64{1})
	assert.ErrorIs(t, err, ErrDimension)

	got, p, err := ens.Predict([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimension)
	assert.False(t, got)
	assert.Equal(t, 0.5, p)
}

func TestEngines_DeterministicAcrossRuns(t *testing.T) {
	matrix, labels := separableSet(60, 11)

	engines := map[string]func() Engine{
		"hist":  func() Engine { return NewHistEngine(testParams(), zap.NewNop()) },
		"exact": func() Engine { return NewExactEngine(testParams(), zap.NewNop()) },
	}

	for name, build := range engines {
		t.Run(name, func(t *testing.T) {
			a, err := build().Fit(matrix, labels)
			require.NoError(t, err)
			b, err := build().Fit(matrix, labels)
			require.NoError(t, err)

			assert.Equal(t, a.Trees, b.Trees)
			assert.Equal(t, a.BaseLine, b.BaseLine)
		})
	}
}

func TestLogOdds_ClippedAtPoles(t *testing.T) {
	assert.False(t, anyNaN(logOdds(0)))
	assert.False(t, anyNaN(logOdds(1)))
	assert.Less(t, logOdds(0), 0.0)
	assert.Greater(t, logOdds(1), 0.0)
	assert.InDelta(t, 0.0, logOdds(0.5), 1e-12)
}

func anyNaN(v float64) bool {
	return v != v
}
