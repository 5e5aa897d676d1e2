package classifier

import (
	"sort"

	"go.uber.org/zap"
)

// HistEngine trains gradient-boosted trees with histogram-binned split
// search and second-order gradients, the XGBoost-style formulation: feature
// values are bucketed into at most MaxBins quantile bins once up front, and
// split gain uses both gradient and hessian sums with L2 leaf
// regularization. It is the default serving engine.
type HistEngine struct {
	params Params
	logger *zap.Logger
}

// NewHistEngine creates a histogram boosting engine
func NewHistEngine(params Params, logger *zap.Logger) *HistEngine {
	return &HistEngine{params: params, logger: logger}
}

// Name identifies the engine in logs and the persisted artifact
func (e *HistEngine) Name() string { return "hist" }

// histBin accumulates gradient statistics for one bin of one feature.
type histBin struct {
	grad  float64
	hess  float64
	count int
}

// Fit trains the ensemble on a normalized matrix and binary labels.
func (e *HistEngine) Fit(matrix [][]float64, labels []int) (*Ensemble, error) {
	if err := validateTrainingSet(matrix, labels); err != nil {
		return nil, err
	}

	n := len(matrix)
	cols := len(matrix[0])

	cuts, binned := e.binFeatures(matrix)

	pos := 0
	for _, y := range labels {
		pos += y
	}
	base := logOdds(float64(pos) / float64(n))

	margins := make([]float64, n)
	for i := range margins {
		margins[i] = base
	}

	ens := &Ensemble{
		Params:   e.params,
		Engine:   e.Name(),
		BaseLine: base,
		Columns:  cols,
		Trees:    make([]Tree, 0, e.params.NumTrees),
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	indices := make([]int, n)

	for round := 0; round < e.params.NumTrees; round++ {
		for i := range matrix {
			p := sigmoid(margins[i])
			grad[i] = p - float64(labels[i])
			hess[i] = p * (1 - p)
			indices[i] = i
		}

		var tree Tree
		e.grow(&tree, binned, cuts, grad, hess, margins, indices, 0)
		ens.Trees = append(ens.Trees, tree)
	}

	e.logger.Debug("Hist engine finished boosting",
		zap.Int("trees", len(ens.Trees)),
		zap.Int("columns", cols))

	return ens, nil
}

// binFeatures computes per-feature quantile cut points and the bin index of
// every sample. cuts[f][b] is the inclusive upper edge of bin b; the last
// bin is unbounded above.
func (e *HistEngine) binFeatures(matrix [][]float64) ([][]float64, [][]uint16) {
	n := len(matrix)
	cols := len(matrix[0])

	cuts := make([][]float64, cols)
	values := make([]float64, n)

	for f := 0; f < cols; f++ {
		for i := range matrix {
			values[i] = matrix[i][f]
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		uniq := sorted[:0]
		for i, v := range sorted {
			if i == 0 || v != uniq[len(uniq)-1] {
				uniq = append(uniq, v)
			}
		}

		if len(uniq) <= e.params.MaxBins {
			edges := make([]float64, 0, len(uniq))
			for i := 0; i+1 < len(uniq); i++ {
				edges = append(edges, (uniq[i]+uniq[i+1])/2)
			}
			cuts[f] = edges
		} else {
			edges := make([]float64, 0, e.params.MaxBins-1)
			for b := 1; b < e.params.MaxBins; b++ {
				q := uniq[b*len(uniq)/e.params.MaxBins]
				if len(edges) == 0 || q > edges[len(edges)-1] {
					edges = append(edges, q)
				}
			}
			cuts[f] = edges
		}
	}

	binned := make([][]uint16, n)
	for i := range matrix {
		row := make([]uint16, cols)
		for f := 0; f < cols; f++ {
			row[f] = uint16(sort.SearchFloat64s(cuts[f], matrix[i][f]))
		}
		binned[i] = row
	}

	return cuts, binned
}

// grow recursively builds a subtree over the sample indices.
func (e *HistEngine) grow(tree *Tree, binned [][]uint16, cuts [][]float64, grad, hess, margins []float64, indices []int, depth int) int {
	sumG, sumH := 0.0, 0.0
	for _, idx := range indices {
		sumG += grad[idx]
		sumH += hess[idx]
	}

	if depth >= e.params.MaxDepth || len(indices) < 2*e.params.MinSamplesLeaf {
		return e.emitLeaf(tree, margins, indices, sumG, sumH)
	}

	feature, bin, ok := e.bestSplit(binned, cuts, grad, hess, indices, sumG, sumH)
	if !ok {
		return e.emitLeaf(tree, margins, indices, sumG, sumH)
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if binned[idx][feature] <= uint16(bin) {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	// Split on the raw-value bin edge so Predict works on unbinned vectors.
	nodeIdx := tree.split(feature, cuts[feature][bin])
	leftIdx := e.grow(tree, binned, cuts, grad, hess, margins, left, depth+1)
	rightIdx := e.grow(tree, binned, cuts, grad, hess, margins, right, depth+1)
	tree.Nodes[nodeIdx].Left = leftIdx
	tree.Nodes[nodeIdx].Right = rightIdx
	return nodeIdx
}

// emitLeaf writes the regularized Newton leaf weight and advances margins.
func (e *HistEngine) emitLeaf(tree *Tree, margins []float64, indices []int, sumG, sumH float64) int {
	value := -e.params.LearningRate * sumG / (sumH + e.params.Lambda)
	for _, idx := range indices {
		margins[idx] += value
	}
	return tree.leaf(value)
}

// bestSplit scans per-feature histograms for the split with the highest
// regularized gain. Returns the feature and the last bin routed left.
func (e *HistEngine) bestSplit(binned [][]uint16, cuts [][]float64, grad, hess []float64, indices []int, sumG, sumH float64) (int, int, bool) {
	cols := len(cuts)
	lambda := e.params.Lambda
	parentScore := sumG * sumG / (sumH + lambda)

	bestGain := 1e-12
	bestFeature, bestBin := -1, -1

	for f := 0; f < cols; f++ {
		if len(cuts[f]) == 0 {
			continue
		}

		hist := make([]histBin, len(cuts[f])+1)
		for _, idx := range indices {
			b := binned[idx][f]
			hist[b].grad += grad[idx]
			hist[b].hess += hess[idx]
			hist[b].count++
		}

		leftG, leftH := 0.0, 0.0
		leftN := 0
		for b := 0; b < len(hist)-1; b++ {
			leftG += hist[b].grad
			leftH += hist[b].hess
			leftN += hist[b].count

			if leftN < e.params.MinSamplesLeaf ||
				len(indices)-leftN < e.params.MinSamplesLeaf {
				continue
			}

			rightG := sumG - leftG
			rightH := sumH - leftH
			gain := 0.5 * (leftG*leftG/(leftH+lambda) +
				rightG*rightG/(rightH+lambda) - parentScore)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestBin = b
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestBin, true
}
