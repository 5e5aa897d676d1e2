package core

import (
	"time"
)

// RiskLevel is the discretized confidence bucket shown to end users.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFor maps a phishing confidence in [0,1] to a risk bucket.
// Boundaries are inclusive at the lower end of each bucket.
func RiskLevelFor(confidence float64) RiskLevel {
	switch {
	case confidence >= 0.8:
		return RiskCritical
	case confidence >= 0.6:
		return RiskHigh
	case confidence >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ParsedEmail is an email decomposed into the fields the extractor needs.
// It is built fresh per request and discarded after feature extraction.
type ParsedEmail struct {
	Subject   string
	Sender    string
	Recipient string
	Body      string
	Headers   map[string][]string
	URLs      []string
	Addresses []string
}

// FeatureVector is the fixed 16-slot heuristic signal block plus the bounded
// text blob consumed by the vectorizer. Slot order is part of the persisted
// model's contract; reordering fields breaks compatibility with saved models.
type FeatureVector struct {
	SubjectLength        float64
	BodyLength           float64
	URLCount             float64
	UrgentWords          float64
	FinancialWords       float64
	PersonalWords        float64
	ActionWords          float64
	UrgencyScore         float64
	URLRiskScore         float64
	SuspiciousURLs       float64
	SenderDomainMismatch float64
	SenderSuspicious     float64
	ExcessiveLinks       float64
	ShortBody            float64
	ManyExclamations     float64
	UnusualCapitals      float64

	// Text is the case-folded subject+body blob (or the bare URL), bounded
	// in length, consumed only by the TF-IDF vectorizer.
	Text string
}

// NumFeatures is the width of the heuristic block fused after the text vector.
const NumFeatures = 16

// Values returns the heuristic signals in model column order.
func (f *FeatureVector) Values() []float64 {
	return []float64{
		f.SubjectLength,
		f.BodyLength,
		f.URLCount,
		f.UrgentWords,
		f.FinancialWords,
		f.PersonalWords,
		f.ActionWords,
		f.UrgencyScore,
		f.URLRiskScore,
		f.SuspiciousURLs,
		f.SenderDomainMismatch,
		f.SenderSuspicious,
		f.ExcessiveLinks,
		f.ShortBody,
		f.ManyExclamations,
		f.UnusualCapitals,
	}
}

// URLAnalysis holds the per-URL signals computed by the URL analyzer.
type URLAnalysis struct {
	URL                  string
	Domain               string
	Path                 string
	HasIPAddress         bool
	HasSuspiciousPattern bool
	HasPort              bool
	SubdomainCount       int
	URLLength            int
	UsesHTTPS            bool
	SuspiciousTLD        bool
}

// PredictionResult is the pipeline's verdict for a single document.
type PredictionResult struct {
	IsPhishing   bool
	Confidence   float64
	RiskLevel    RiskLevel
	ModelUsed    string
	AnalyzedAt   time.Time
	ProcessingID string
}

// EmailScanResult is the verdict plus the email details reported to callers.
type EmailScanResult struct {
	PredictionResult
	Subject        string
	Sender         string
	URLCount       int
	SuspiciousURLs int
	URLs           []string
	EmailAddresses int
}

// URLScanResult is the verdict plus the URL details reported to callers.
type URLScanResult struct {
	PredictionResult
	URL               string
	Domain            string
	HasIP             bool
	UsesHTTPS         bool
	URLLength         int
	SuspiciousPattern bool
	SuspiciousTLD     bool
}

// BatchItem is one entry of a batch scan request. Exactly one of
// EmailContent or URL must be set.
type BatchItem struct {
	EmailContent string
	URL          string
}

// BatchItemResult carries either a scan result or the item's isolated error.
type BatchItemResult struct {
	Type  string
	Email *EmailScanResult
	URL   *URLScanResult
	Err   error
}

// BatchResult is the outcome of a batch scan. Total always equals the number
// of submitted items, failed ones included.
type BatchResult struct {
	Total   int
	Results []BatchItemResult
}

// ModelInfo describes the currently loaded model bundle.
type ModelInfo struct {
	ClassifierLoaded bool
	VectorizerLoaded bool
	ScalerLoaded     bool
	Engine           string
	VocabularySize   int
	TreeCount        int
}

// Alert records a high-risk scan for later review.
type Alert struct {
	ID           string
	Severity     RiskLevel
	Message      string
	Details      map[string]string
	CreatedAt    time.Time
	Read         bool
	Acknowledged bool
}

// AlertStats summarizes the alert store.
type AlertStats struct {
	Total      int
	Unread     int
	BySeverity map[RiskLevel]int
}
