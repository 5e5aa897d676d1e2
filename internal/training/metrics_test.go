package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_KnownConfusionMatrix(t *testing.T) {
	labels := []int{1, 1, 1, 0, 0, 0}
	predicted := []int{1, 1, 0, 0, 0, 1}
	probs := []float64{0.9, 0.8, 0.3, 0.2, 0.1, 0.7}

	ev := evaluate(labels, predicted, probs)

	assert.Equal(t, 2, ev.TruePositives)
	assert.Equal(t, 1, ev.FalsePositives)
	assert.Equal(t, 2, ev.TrueNegatives)
	assert.Equal(t, 1, ev.FalseNegatives)
	assert.InDelta(t, 2.0/3.0, ev.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, ev.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, ev.F1, 1e-9)
	assert.Equal(t, 6, ev.TestSize)
}

func TestEvaluate_NoPositivePredictions(t *testing.T) {
	labels := []int{1, 0}
	predicted := []int{0, 0}
	probs := []float64{0.4, 0.3}

	ev := evaluate(labels, predicted, probs)

	assert.Equal(t, 0.0, ev.Precision)
	assert.Equal(t, 0.0, ev.Recall)
	assert.Equal(t, 0.0, ev.F1)
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		probs  []float64
		want   float64
	}{
		{
			name:   "Perfect ranking",
			labels: []int{0, 0, 1, 1},
			probs:  []float64{0.1, 0.2, 0.8, 0.9},
			want:   1.0,
		},
		{
			name:   "Inverted ranking",
			labels: []int{1, 1, 0, 0},
			probs:  []float64{0.1, 0.2, 0.8, 0.9},
			want:   0.0,
		},
		{
			name:   "All probabilities tied",
			labels: []int{0, 1, 0, 1},
			probs:  []float64{0.5, 0.5, 0.5, 0.5},
			want:   0.5,
		},
		{
			name:   "One positive ranked between negatives",
			labels: []int{0, 1, 0},
			probs:  []float64{0.1, 0.5, 0.9},
			want:   0.5,
		},
		{
			name:   "Single class present",
			labels: []int{1, 1},
			probs:  []float64{0.6, 0.7},
			want:   0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rocAUC(tt.labels, tt.probs), 1e-9)
		})
	}
}

func TestStratifiedSplit(t *testing.T) {
	labels := make([]int, 100)
	for i := 60; i < 100; i++ {
		labels[i] = 1
	}

	train, test, err := stratifiedSplit(labels, 0.2, 42)
	assert.NoError(t, err)
	assert.Len(t, train, 80)
	assert.Len(t, test, 20)

	countPos := func(idx []int) int {
		n := 0
		for _, i := range idx {
			n += labels[i]
		}
		return n
	}

	// 20% held out from each class: 12 of 60 negatives, 8 of 40 positives.
	assert.Equal(t, 8, countPos(test))
	assert.Equal(t, 32, countPos(train))

	// No index lands on both sides.
	seen := make(map[int]bool)
	for _, i := range train {
		seen[i] = true
	}
	for _, i := range test {
		assert.False(t, seen[i], "index %d in both splits", i)
	}
}

func TestStratifiedSplit_Deterministic(t *testing.T) {
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	train1, test1, err := stratifiedSplit(labels, 0.25, 42)
	assert.NoError(t, err)
	train2, test2, err := stratifiedSplit(labels, 0.25, 42)
	assert.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestStratifiedSplit_DegenerateLabels(t *testing.T) {
	_, _, err := stratifiedSplit([]int{1, 1, 1, 0}, 0.2, 42)
	assert.ErrorIs(t, err, ErrDegenerateLabels)

	_, _, err = stratifiedSplit([]int{1, 1, 1, 1}, 0.2, 42)
	assert.ErrorIs(t, err, ErrDegenerateLabels)
}

func TestStratifiedSplit_TinyClassesKeepBothSides(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	train, test, err := stratifiedSplit(labels, 0.2, 42)
	assert.NoError(t, err)

	// Even when the ratio rounds to zero, one sample per class is held out.
	assert.Len(t, test, 2)
	assert.Len(t, train, 2)
}
