package classifier

import (
	"errors"
	"fmt"
	"math"
)

// Fixed training hyperparameters. Changing them changes the persisted model,
// so they are part of the artifact and recorded alongside the trees.
type Params struct {
	NumTrees       int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	Seed           int64

	// Lambda is the L2 leaf regularization used by the hist engine.
	Lambda float64
	// MaxBins bounds the histogram resolution of the hist engine.
	MaxBins int
}

// DefaultParams returns the hyperparameters the served models are trained
// with: 100 trees, shrinkage 0.1, depth 5, seed 42.
func DefaultParams() Params {
	return Params{
		NumTrees:       100,
		LearningRate:   0.1,
		MaxDepth:       5,
		MinSamplesLeaf: 1,
		Seed:           42,
		Lambda:         1.0,
		MaxBins:        256,
	}
}

// Ensemble is a trained boosted-tree model: an additive sequence of shallow
// regression trees over the normalized fused feature space, producing a
// class-1 (phishing) log-odds margin.
//
// An Ensemble is immutable after training and safe for concurrent Predict.
type Ensemble struct {
	Params   Params
	Engine   string
	BaseLine float64
	Trees    []Tree
	Columns  int
}

// ErrDimension is returned when a vector does not match the trained width.
var ErrDimension = errors.New("classifier: feature width does not match trained model")

// PredictProba returns the phishing probability for a normalized vector.
func (e *Ensemble) PredictProba(x []float64) (float64, error) {
	if len(x) != e.Columns {
		return 0, fmt.Errorf("%w: got %d, trained on %d", ErrDimension, len(x), e.Columns)
	}

	margin := e.BaseLine
	for i := range e.Trees {
		margin += e.Trees[i].Predict(x)
	}
	return sigmoid(margin), nil
}

// Predict returns the class label (true = phishing) and probability using a
// 0.5 decision threshold.
func (e *Ensemble) Predict(x []float64) (bool, float64, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return false, 0.5, err
	}
	return p >= 0.5, p, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// logOdds converts a prior probability to a margin, clipping away from the
// poles so the base score stays finite.
func logOdds(p float64) float64 {
	const eps = 1e-7
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}

// Engine fits a boosted ensemble to a normalized training matrix. Two
// interchangeable implementations exist; which one serves is a configuration
// decision made at startup.
type Engine interface {
	// Name identifies the engine in logs and the persisted artifact
	Name() string

	// Fit trains an ensemble on the matrix and binary labels
	Fit(matrix [][]float64, labels []int) (*Ensemble, error)
}

// validateTrainingSet rejects degenerate inputs common to both engines.
func validateTrainingSet(matrix [][]float64, labels []int) error {
	if len(matrix) == 0 {
		return errors.New("classifier: empty training matrix")
	}
	if len(matrix) != len(labels) {
		return fmt.Errorf("classifier: %d rows but %d labels", len(matrix), len(labels))
	}
	pos, neg := 0, 0
	for _, y := range labels {
		switch y {
		case 0:
			neg++
		case 1:
			pos++
		default:
			return fmt.Errorf("classifier: label %d is not binary", y)
		}
	}
	if pos == 0 || neg == 0 {
		return errors.New("classifier: training set contains a single class")
	}
	return nil
}
