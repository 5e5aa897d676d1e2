package training

import (
	"sort"
)

// Evaluation holds the hold-out quality metrics of a training run.
type Evaluation struct {
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	ROCAUC         float64
	TrainSize      int
	TestSize       int
}

// evaluate computes confusion-matrix cells, precision, recall, F1 and
// ROC-AUC from hold-out labels, hard predictions and probabilities.
func evaluate(labels, predicted []int, probs []float64) Evaluation {
	var ev Evaluation
	for i, y := range labels {
		switch {
		case y == 1 && predicted[i] == 1:
			ev.TruePositives++
		case y == 0 && predicted[i] == 1:
			ev.FalsePositives++
		case y == 0 && predicted[i] == 0:
			ev.TrueNegatives++
		default:
			ev.FalseNegatives++
		}
	}

	if ev.TruePositives+ev.FalsePositives > 0 {
		ev.Precision = float64(ev.TruePositives) / float64(ev.TruePositives+ev.FalsePositives)
	}
	if ev.TruePositives+ev.FalseNegatives > 0 {
		ev.Recall = float64(ev.TruePositives) / float64(ev.TruePositives+ev.FalseNegatives)
	}
	if ev.Precision+ev.Recall > 0 {
		ev.F1 = 2 * ev.Precision * ev.Recall / (ev.Precision + ev.Recall)
	}
	ev.ROCAUC = rocAUC(labels, probs)
	ev.TestSize = len(labels)

	return ev
}

// rocAUC is the Mann-Whitney rank statistic with midrank tie handling.
// Returns 0 when either class is absent.
func rocAUC(labels []int, probs []float64) float64 {
	n := len(labels)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return probs[order[a]] < probs[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[order[j]] == probs[order[i]] {
			j++
		}
		// Average rank over the tie group, ranks are 1-based.
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		i = j
	}

	nPos, nNeg := 0, 0
	rankSum := 0.0
	for i, y := range labels {
		if y == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0
	}

	return (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
}
