package core

import (
	"context"
	"strings"
	"testing"

	"github.com/phishguard/phishing-detector/internal/classifier"
	"github.com/phishguard/phishing-detector/internal/pipeline"
	"github.com/phishguard/phishing-detector/internal/textproc"
	"github.com/phishguard/phishing-detector/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubExtractor returns canned features so service tests do not depend on
// the real extraction pipeline.
type stubExtractor struct {
	sender string
	urls   []string
}

func (s *stubExtractor) ExtractEmail(raw string) (*ParsedEmail, *FeatureVector) {
	return &ParsedEmail{
		Subject: "stub subject",
		Sender:  s.sender,
		URLs:    s.urls,
	}, &FeatureVector{Text: strings.ToLower(raw)}
}

func (s *stubExtractor) ExtractURL(rawURL string) (URLAnalysis, *FeatureVector) {
	return URLAnalysis{URL: rawURL, Domain: "stub.example.com"},
		&FeatureVector{Text: strings.ToLower(rawURL)}
}

// recordingAlerts captures saved alerts.
type recordingAlerts struct {
	saved []*Alert
}

func (r *recordingAlerts) Save(_ context.Context, alert *Alert) error {
	r.saved = append(r.saved, alert)
	return nil
}
func (r *recordingAlerts) Get(context.Context, string) (*Alert, error)  { return nil, nil }
func (r *recordingAlerts) List(context.Context, bool) ([]*Alert, error) { return nil, nil }
func (r *recordingAlerts) MarkRead(context.Context, string) error       { return nil }
func (r *recordingAlerts) Acknowledge(context.Context, string) error    { return nil }
func (r *recordingAlerts) Stats(context.Context) (*AlertStats, error)   { return nil, nil }
func (r *recordingAlerts) Cleanup(context.Context) error                { return nil }

func newTestService(extractor FeatureExtractor, alerts AlertRepository, domains []string) *DetectorService {
	logger := zap.NewNop()
	return NewDetectorService(extractor, alerts, whitelist.NewChecker(domains, logger), logger, 0.6)
}

// completeBundle builds a tiny fitted bundle whose single-leaf ensemble
// always produces the given margin.
func completeBundle(t *testing.T, margin float64) *pipeline.Bundle {
	t.Helper()

	vec := textproc.NewVectorizer(textproc.Options{MaxFeatures: 10, MinDocFreq: 1, MaxDocRatio: 1.0})
	require.NoError(t, vec.Fit([]string{"alpha beta", "gamma delta"}))

	width := vec.Size() + NumFeatures
	scaler := pipeline.NewScaler()
	rows := [][]float64{make([]float64, width), make([]float64, width)}
	for i := range rows[1] {
		rows[1][i] = 1
	}
	require.NoError(t, scaler.Fit(rows))

	return &pipeline.Bundle{
		Vectorizer: vec,
		Scaler:     scaler,
		Ensemble: &classifier.Ensemble{
			Engine:   "hist",
			BaseLine: margin,
			Columns:  width,
			Trees:    []classifier.Tree{},
		},
	}
}

func TestScoreEmail_NoModelIsNeutral(t *testing.T) {
	service := newTestService(&stubExtractor{sender: "a@b.com"}, nil, nil)

	result, err := service.ScoreEmail(context.Background(), "anything")
	require.NoError(t, err)

	assert.False(t, result.IsPhishing)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Equal(t, "none", result.ModelUsed)
	assert.NotEmpty(t, result.ProcessingID)
}

func TestScoreEmail_WhitelistedSenderBypassesModel(t *testing.T) {
	service := newTestService(&stubExtractor{sender: "alice@trusted.example.com"}, nil,
		[]string{"trusted.example.com"})
	service.SetBundle(completeBundle(t, 5))

	result, err := service.ScoreEmail(context.Background(), "content")
	require.NoError(t, err)

	assert.False(t, result.IsPhishing)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "whitelist", result.ModelUsed)
	assert.Equal(t, RiskLow, result.RiskLevel)
}

func TestScoreEmail_LoadedModelVerdict(t *testing.T) {
	service := newTestService(&stubExtractor{sender: "a@b.com"}, nil, nil)
	service.SetBundle(completeBundle(t, 5))

	result, err := service.ScoreEmail(context.Background(), "content")
	require.NoError(t, err)

	assert.True(t, result.IsPhishing)
	assert.Greater(t, result.Confidence, 0.9)
	assert.Equal(t, "hist", result.ModelUsed)
	assert.Equal(t, RiskCritical, result.RiskLevel)
}

func TestScoreURL(t *testing.T) {
	service := newTestService(&stubExtractor{}, nil, nil)
	service.SetBundle(completeBundle(t, -5))

	result, err := service.ScoreURL(context.Background(), "http://example.com")
	require.NoError(t, err)

	assert.False(t, result.IsPhishing)
	assert.Less(t, result.Confidence, 0.1)
	assert.Equal(t, "http://example.com", result.URL)
	assert.Equal(t, "stub.example.com", result.Domain)
}

func TestScoreBatch_IsolatesMalformedItems(t *testing.T) {
	service := newTestService(&stubExtractor{sender: "a@b.com"}, nil, nil)

	batch := service.ScoreBatch(context.Background(), []BatchItem{
		{EmailContent: "an email"},
		{},
		{URL: "http://example.com"},
	})

	assert.Equal(t, 3, batch.Total)
	require.Len(t, batch.Results, 3)

	assert.Equal(t, "email", batch.Results[0].Type)
	assert.NoError(t, batch.Results[0].Err)
	assert.NotNil(t, batch.Results[0].Email)

	assert.ErrorIs(t, batch.Results[1].Err, ErrEmptyBatchItem)

	assert.Equal(t, "url", batch.Results[2].Type)
	assert.NotNil(t, batch.Results[2].URL)
}

func TestScoreEmail_AlertRaisedAboveThreshold(t *testing.T) {
	alerts := &recordingAlerts{}
	service := newTestService(&stubExtractor{sender: "a@b.com"}, alerts, nil)
	service.SetBundle(completeBundle(t, 5))

	_, err := service.ScoreEmail(context.Background(), "content")
	require.NoError(t, err)

	require.Len(t, alerts.saved, 1)
	assert.Equal(t, RiskCritical, alerts.saved[0].Severity)
	assert.Equal(t, "email", alerts.saved[0].Details["type"])
}

func TestScoreEmail_NoAlertBelowThreshold(t *testing.T) {
	alerts := &recordingAlerts{}
	service := newTestService(&stubExtractor{sender: "a@b.com"}, alerts, nil)
	service.SetBundle(completeBundle(t, -5))

	_, err := service.ScoreEmail(context.Background(), "content")
	require.NoError(t, err)

	assert.Empty(t, alerts.saved)
}

func TestModelInfo(t *testing.T) {
	service := newTestService(&stubExtractor{}, nil, nil)

	info := service.ModelInfo()
	assert.False(t, info.ClassifierLoaded)

	service.SetBundle(completeBundle(t, 0))
	info = service.ModelInfo()
	assert.True(t, info.ClassifierLoaded)
	assert.True(t, info.VectorizerLoaded)
	assert.True(t, info.ScalerLoaded)
	assert.Equal(t, "hist", info.Engine)
	assert.Greater(t, info.VocabularySize, 0)
}

func TestSetBundle_NilResetsToEmpty(t *testing.T) {
	service := newTestService(&stubExtractor{}, nil, nil)
	service.SetBundle(completeBundle(t, 0))
	service.SetBundle(nil)

	assert.False(t, service.ModelInfo().ClassifierLoaded)
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       RiskLevel
	}{
		{0.0, RiskLow},
		{0.39, RiskLow},
		{0.4, RiskMedium},
		{0.59, RiskMedium},
		{0.6, RiskHigh},
		{0.79, RiskHigh},
		{0.8, RiskCritical},
		{1.0, RiskCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.confidence), "confidence %v", tt.confidence)
	}
}
