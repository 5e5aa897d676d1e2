package training

import (
	"fmt"
	"sync"

	"github.com/phishguard/phishing-detector/internal/classifier"
	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/textproc"
	"go.uber.org/zap"
)

// Sample is one labeled training document.
type Sample struct {
	Text  string `json:"text"`
	Label int    `json:"is_phishing"`
}

// Trainer fits vectorizer, normalizer and classifier jointly on labeled
// samples and evaluates on a stratified hold-out. The three artifacts come
// out of one run and are returned as one bundle; persisting them separately
// would skew the feature space at inference time.
//
// Training is a blocking batch operation and never runs concurrently with
// itself.
type Trainer struct {
	extractor core.FeatureExtractor
	engine    classifier.Engine
	vecOpts   textproc.Options
	testRatio float64
	logger    *zap.Logger

	mu sync.Mutex
}

// NewTrainer creates a new trainer using the given boosting engine.
func NewTrainer(
	extractor core.FeatureExtractor,
	engine classifier.Engine,
	vecOpts textproc.Options,
	logger *zap.Logger,
) *Trainer {
	return &Trainer{
		extractor: extractor,
		engine:    engine,
		vecOpts:   vecOpts,
		testRatio: 0.2,
		logger:    logger,
	}
}

// Train fits the full pipeline on the training split and evaluates on the
// hold-out. Degenerate label distributions are configuration errors and
// surface to the caller.
func (t *Trainer) Train(samples []Sample) (*pipeline.Bundle, *Evaluation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	labels := make([]int, len(samples))
	for i, s := range samples {
		if s.Label != 0 && s.Label != 1 {
			return nil, nil, fmt.Errorf("training: sample %d has non-binary label %d", i, s.Label)
		}
		labels[i] = s.Label
	}

	seed := classifier.DefaultParams().Seed
	trainIdx, testIdx, err := stratifiedSplit(labels, t.testRatio, seed)
	if err != nil {
		return nil, nil, err
	}

	t.logger.Info("Training pipeline",
		zap.Int("samples", len(samples)),
		zap.Int("train", len(trainIdx)),
		zap.Int("test", len(testIdx)),
		zap.String("engine", t.engine.Name()))

	// Heuristic features and text blobs for every sample up front.
	vectors := make([]*core.FeatureVector, len(samples))
	for i, s := range samples {
		_, fv := t.extractor.ExtractEmail(s.Text)
		vectors[i] = fv
	}

	// Vocabulary is learned from the training split only.
	vectorizer := textproc.NewVectorizer(t.vecOpts)
	trainTexts := make([]string, len(trainIdx))
	for i, idx := range trainIdx {
		trainTexts[i] = vectors[idx].Text
	}
	if err := vectorizer.Fit(trainTexts); err != nil {
		return nil, nil, fmt.Errorf("training: %w", err)
	}

	fuse := func(idx int) []float64 {
		return pipeline.Fuse(vectorizer.Transform(vectors[idx].Text), vectors[idx].Values())
	}

	trainMatrix := make([][]float64, len(trainIdx))
	trainLabels := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainMatrix[i] = fuse(idx)
		trainLabels[i] = labels[idx]
	}

	scaler := pipeline.NewScaler()
	scaledTrain, err := scaler.FitTransform(trainMatrix)
	if err != nil {
		return nil, nil, fmt.Errorf("training: %w", err)
	}

	ensemble, err := t.engine.Fit(scaledTrain, trainLabels)
	if err != nil {
		return nil, nil, fmt.Errorf("training: %w", err)
	}

	bundle := &pipeline.Bundle{
		Vectorizer: vectorizer,
		Scaler:     scaler,
		Ensemble:   ensemble,
	}

	ev, err := t.evaluateHoldout(bundle, vectors, labels, testIdx)
	if err != nil {
		return nil, nil, err
	}
	ev.TrainSize = len(trainIdx)

	t.logger.Info("Training complete",
		zap.Float64("precision", ev.Precision),
		zap.Float64("recall", ev.Recall),
		zap.Float64("f1", ev.F1),
		zap.Float64("roc_auc", ev.ROCAUC))

	return bundle, ev, nil
}

// evaluateHoldout scores the hold-out split through the freshly fit bundle.
func (t *Trainer) evaluateHoldout(
	bundle *pipeline.Bundle,
	vectors []*core.FeatureVector,
	labels []int,
	testIdx []int,
) (*Evaluation, error) {
	testLabels := make([]int, len(testIdx))
	predicted := make([]int, len(testIdx))
	probs := make([]float64, len(testIdx))

	for i, idx := range testIdx {
		fused := pipeline.Fuse(bundle.Vectorizer.Transform(vectors[idx].Text), vectors[idx].Values())
		scaled, err := bundle.Scaler.Transform(fused)
		if err != nil {
			return nil, fmt.Errorf("training: holdout transform: %w", err)
		}
		isPhishing, p, err := bundle.Ensemble.Predict(scaled)
		if err != nil {
			return nil, fmt.Errorf("training: holdout predict: %w", err)
		}

		testLabels[i] = labels[idx]
		probs[i] = p
		if isPhishing {
			predicted[i] = 1
		}
	}

	ev := evaluate(testLabels, predicted, probs)
	return &ev, nil
}
