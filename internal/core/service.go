package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/whitelist"
	"go.uber.org/zap"
)

// ErrEmptyBatchItem is the per-item error for batch entries that carry
// neither email content nor a URL.
var ErrEmptyBatchItem = errors.New("batch item has neither email_content nor url")

// DetectorService is the core phishing detection service. It owns the model
// bundle and runs the scan pipeline: extraction, vectorization,
// normalization, prediction, risk mapping.
//
// Scans share the bundle read-only; SetBundle swaps the whole artifact
// triple atomically, so an in-flight request sees the old triple or the new
// one, never a mix.
type DetectorService struct {
	extractor      FeatureExtractor
	alerts         AlertRepository
	whitelist      *whitelist.Checker
	logger         *zap.Logger
	alertThreshold float64

	bundle atomic.Pointer[pipeline.Bundle]
}

// NewDetectorService creates a new detector service
func NewDetectorService(
	extractor FeatureExtractor,
	alerts AlertRepository,
	whitelistChecker *whitelist.Checker,
	logger *zap.Logger,
	alertThreshold float64,
) *DetectorService {
	s := &DetectorService{
		extractor:      extractor,
		alerts:         alerts,
		whitelist:      whitelistChecker,
		logger:         logger,
		alertThreshold: alertThreshold,
	}
	s.bundle.Store(&pipeline.Bundle{})
	return s
}

// SetBundle atomically replaces the serving model triple.
func (s *DetectorService) SetBundle(bundle *pipeline.Bundle) {
	if bundle == nil {
		bundle = &pipeline.Bundle{}
	}
	s.bundle.Store(bundle)

	info := s.ModelInfo()
	s.logger.Info("Model bundle swapped",
		zap.Bool("classifier", info.ClassifierLoaded),
		zap.Bool("vectorizer", info.VectorizerLoaded),
		zap.Bool("scaler", info.ScalerLoaded),
		zap.String("engine", info.Engine),
		zap.Int("vocabulary_size", info.VocabularySize),
		zap.Int("trees", info.TreeCount))
}

// ModelInfo describes the currently served bundle.
func (s *DetectorService) ModelInfo() ModelInfo {
	b := s.bundle.Load()
	info := ModelInfo{
		ClassifierLoaded: b.Ensemble != nil,
		VectorizerLoaded: b.Vectorizer != nil,
		ScalerLoaded:     b.Scaler != nil,
	}
	if b.Vectorizer != nil {
		info.VocabularySize = b.Vectorizer.Size()
	}
	if b.Ensemble != nil {
		info.Engine = b.Ensemble.Engine
		info.TreeCount = len(b.Ensemble.Trees)
	}
	return info
}

// ScoreEmail scans raw email content and returns the verdict with the
// reported email details.
func (s *DetectorService) ScoreEmail(ctx context.Context, raw string) (*EmailScanResult, error) {
	parsed, fv := s.extractor.ExtractEmail(raw)

	var prediction PredictionResult
	if s.whitelist != nil && s.whitelist.IsWhitelisted(parsed.Sender) {
		prediction = PredictionResult{
			IsPhishing:   false,
			Confidence:   0.0,
			RiskLevel:    RiskLow,
			ModelUsed:    "whitelist",
			AnalyzedAt:   time.Now(),
			ProcessingID: uuid.NewString(),
		}
	} else {
		prediction = s.predict(fv)
	}

	result := &EmailScanResult{
		PredictionResult: prediction,
		Subject:          parsed.Subject,
		Sender:           parsed.Sender,
		URLCount:         len(parsed.URLs),
		SuspiciousURLs:   int(fv.SuspiciousURLs),
		URLs:             parsed.URLs,
		EmailAddresses:   len(parsed.Addresses),
	}

	s.raiseAlert(ctx, prediction, map[string]string{
		"type":    "email",
		"subject": parsed.Subject,
		"sender":  parsed.Sender,
	})

	return result, nil
}

// ScoreURL scans a bare URL and returns the verdict with the URL details.
func (s *DetectorService) ScoreURL(ctx context.Context, rawURL string) (*URLScanResult, error) {
	analysis, fv := s.extractor.ExtractURL(rawURL)
	prediction := s.predict(fv)

	result := &URLScanResult{
		PredictionResult:  prediction,
		URL:               rawURL,
		Domain:            analysis.Domain,
		HasIP:             analysis.HasIPAddress,
		UsesHTTPS:         analysis.UsesHTTPS,
		URLLength:         analysis.URLLength,
		SuspiciousPattern: analysis.HasSuspiciousPattern,
		SuspiciousTLD:     analysis.SuspiciousTLD,
	}

	s.raiseAlert(ctx, prediction, map[string]string{
		"type": "url",
		"url":  rawURL,
	})

	return result, nil
}

// ScoreBatch scans each item independently. One malformed item yields an
// error entry for that item only; the rest still get results.
func (s *DetectorService) ScoreBatch(ctx context.Context, items []BatchItem) *BatchResult {
	batch := &BatchResult{
		Total:   len(items),
		Results: make([]BatchItemResult, 0, len(items)),
	}

	for i, item := range items {
		switch {
		case item.EmailContent != "":
			result, err := s.ScoreEmail(ctx, item.EmailContent)
			batch.Results = append(batch.Results, BatchItemResult{Type: "email", Email: result, Err: err})
		case item.URL != "":
			result, err := s.ScoreURL(ctx, item.URL)
			batch.Results = append(batch.Results, BatchItemResult{Type: "url", URL: result, Err: err})
		default:
			s.logger.Warn("Skipping malformed batch item", zap.Int("index", i))
			batch.Results = append(batch.Results, BatchItemResult{Err: ErrEmptyBatchItem})
		}
	}

	return batch
}

// predict runs the fused vector through the loaded bundle. With no complete
// bundle the verdict is the explicit neutral state (legitimate, 0.5); an
// internal pipeline fault also degrades to neutral but is logged as an
// error so the two states stay distinguishable.
func (s *DetectorService) predict(fv *FeatureVector) PredictionResult {
	result := PredictionResult{
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}

	b := s.bundle.Load()
	if !b.Complete() {
		s.logger.Warn("No trained model loaded, returning neutral verdict")
		result.IsPhishing = false
		result.Confidence = 0.5
		result.RiskLevel = RiskLevelFor(0.5)
		result.ModelUsed = "none"
		return result
	}

	textVec := b.Vectorizer.Transform(fv.Text)
	fused := pipeline.Fuse(textVec, fv.Values())

	scaled, err := b.Scaler.Transform(fused)
	if err != nil {
		s.logger.Error("Normalization failed, returning neutral verdict", zap.Error(err))
		result.IsPhishing = false
		result.Confidence = 0.5
		result.RiskLevel = RiskLevelFor(0.5)
		result.ModelUsed = "error"
		return result
	}

	isPhishing, confidence, err := b.Ensemble.Predict(scaled)
	if err != nil {
		s.logger.Error("Prediction failed, returning neutral verdict", zap.Error(err))
		result.IsPhishing = false
		result.Confidence = 0.5
		result.RiskLevel = RiskLevelFor(0.5)
		result.ModelUsed = "error"
		return result
	}

	result.IsPhishing = isPhishing
	result.Confidence = confidence
	result.RiskLevel = RiskLevelFor(confidence)
	result.ModelUsed = b.Ensemble.Engine
	return result
}

// raiseAlert records scans at or above the alert threshold. Alert failures
// are logged, never surfaced to the scan path.
func (s *DetectorService) raiseAlert(ctx context.Context, prediction PredictionResult, details map[string]string) {
	if s.alerts == nil || !prediction.IsPhishing || prediction.Confidence < s.alertThreshold {
		return
	}

	alert := &Alert{
		ID:       uuid.NewString(),
		Severity: prediction.RiskLevel,
		Message: fmt.Sprintf("Phishing %s detected with %.0f%% confidence",
			details["type"], prediction.Confidence*100),
		Details:   details,
		CreatedAt: time.Now(),
	}

	if err := s.alerts.Save(ctx, alert); err != nil {
		s.logger.Error("Failed to record alert",
			zap.Error(err),
			zap.String("alert_id", alert.ID))
		return
	}

	s.logger.Info("Alert recorded",
		zap.String("alert_id", alert.ID),
		zap.String("severity", string(alert.Severity)))
}
