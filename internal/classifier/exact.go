package classifier

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// ExactEngine trains gradient-boosted trees with exact greedy split search:
// every distinct feature value is a candidate threshold. Trees fit the
// first-order residual of the logistic loss and leaves take a single Newton
// step, the classic gradient-boosting formulation.
//
// The hist engine is faster on wide data; this engine is the reference that
// any normalized matrix can be trained with, bins or no bins.
type ExactEngine struct {
	params Params
	logger *zap.Logger
}

// NewExactEngine creates an exact-split boosting engine
func NewExactEngine(params Params, logger *zap.Logger) *ExactEngine {
	return &ExactEngine{params: params, logger: logger}
}

// Name identifies the engine in logs and the persisted artifact
func (e *ExactEngine) Name() string { return "exact" }

// Fit trains the ensemble on a normalized matrix and binary labels.
func (e *ExactEngine) Fit(matrix [][]float64, labels []int) (*Ensemble, error) {
	if err := validateTrainingSet(matrix, labels); err != nil {
		return nil, err
	}

	n := len(matrix)
	cols := len(matrix[0])

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

	residual := make([]float64, n)
	hessian := make([]float64, n)
	indices := make([]int, n)

	for round := 0; round < e.params.NumTrees; round++ {
		for i := range matrix {
			p := sigmoid(margins[i])
			residual[i] = float64(labels[i]) - p
			hessian[i] = p * (1 - p)
			indices[i] = i
		}

		var tree Tree
		e.grow(&tree, matrix, residual, hessian, margins, indices, 0)
		ens.Trees = append(ens.Trees, tree)
	}

	e.logger.Debug("Exact engine finished boosting",
		zap.Int("trees", len(ens.Trees)),
		zap.Int("columns", cols))

	return ens, nil
}

// grow recursively builds a subtree over the given sample indices, returning
// the node index. Leaves update the margins of their samples in place.
func (e *ExactEngine) grow(tree *Tree, matrix [][]float64, residual, hessian, margins []float64, indices []int, depth int) int {
	if depth >= e.params.MaxDepth || len(indices) < 2*e.params.MinSamplesLeaf {
		return e.emitLeaf(tree, residual, hessian, margins, indices)
	}

	feature, threshold, ok := e.bestSplit(matrix, residual, indices)
	if !ok {
		return e.emitLeaf(tree, residual, hessian, margins, indices)
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, idx := range indices {
		if matrix[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	nodeIdx := tree.split(feature, threshold)
	leftIdx := e.grow(tree, matrix, residual, hessian, margins, left, depth+1)
	rightIdx := e.grow(tree, matrix, residual, hessian, margins, right, depth+1)
	tree.Nodes[nodeIdx].Left = leftIdx
	tree.Nodes[nodeIdx].Right = rightIdx
	return nodeIdx
}

// emitLeaf computes the Newton-step leaf weight for the logistic loss,
// applies shrinkage, and advances the margins of its samples.
func (e *ExactEngine) emitLeaf(tree *Tree, residual, hessian, margins []float64, indices []int) int {
	sumR, sumH := 0.0, 0.0
	for _, idx := range indices {
		sumR += residual[idx]
		sumH += hessian[idx]
	}

	value := 0.0
	if sumH > 1e-12 {
		value = e.params.LearningRate * sumR / sumH
	}
	for _, idx := range indices {
		margins[idx] += value
	}
	return tree.leaf(value)
}

// bestSplit finds the split with the greatest squared-error reduction over
// the residuals, scanning every feature and every distinct value boundary.
func (e *ExactEngine) bestSplit(matrix [][]float64, residual []float64, indices []int) (int, float64, bool) {
	cols := len(matrix[0])
	total := 0.0
	for _, idx := range indices {
		total += residual[idx]
	}
	n := float64(len(indices))

	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0
	order := make([]int, len(indices))

	for f := 0; f < cols; f++ {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool {
			if matrix[order[a]][f] != matrix[order[b]][f] {
				return matrix[order[a]][f] < matrix[order[b]][f]
			}
			return order[a] < order[b]
		})

		leftSum, leftN := 0.0, 0.0
		for i := 0; i < len(order)-1; i++ {
			idx := order[i]
			leftSum += residual[idx]
			leftN++

			cur, next := matrix[idx][f], matrix[order[i+1]][f]
			if cur == next {
				continue
			}
			if int(leftN) < e.params.MinSamplesLeaf ||
				len(order)-int(leftN) < e.params.MinSamplesLeaf {
				continue
			}

			rightSum := total - leftSum
			rightN := n - leftN
			// Variance-reduction gain for squared error on residuals.
			gain := leftSum*leftSum/leftN + rightSum*rightSum/rightN - total*total/n
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 || math.IsNaN(bestThreshold) {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
