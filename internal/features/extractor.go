package features

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/phishguard/phishing-detector/internal/mailparse"
	"github.com/phishguard/phishing-detector/internal/utils"
	"go.uber.org/zap"
)

// maxTextBlob bounds the text handed to the vectorizer.
const maxTextBlob = 5000

// Extractor turns parsed emails and bare URLs into the fixed 16-slot
// FeatureVector the model consumes.
//
// Extraction never fails: malformed input degrades to neutral (zero) signals
// so the serving path stays up regardless of what callers submit.
type Extractor struct {
	parser *mailparse.Parser
	text   *utils.TextProcessor
	logger *zap.Logger
}

// NewExtractor creates a new feature extractor
func NewExtractor(parser *mailparse.Parser, text *utils.TextProcessor, logger *zap.Logger) *Extractor {
	return &Extractor{
		parser: parser,
		text:   text,
		logger: logger,
	}
}

// ExtractEmail parses raw email content and computes its feature vector.
func (e *Extractor) ExtractEmail(raw string) (*core.ParsedEmail, *core.FeatureVector) {
	parsed := e.parser.Parse(raw)

	subject := strings.ToLower(parsed.Subject)
	body := strings.ToLower(parsed.Body)
	combined := subject + " " + body

	riskScore, suspiciousCount := e.analyzeURLs(parsed.URLs)

	fv := &core.FeatureVector{
		SubjectLength:        float64(utf8.RuneCountInString(subject)),
		BodyLength:           float64(utf8.RuneCountInString(body)),
		URLCount:             float64(len(parsed.URLs)),
		UrgentWords:          float64(countOccurrences(combined, urgentWords)),
		FinancialWords:       float64(countOccurrences(combined, financialWords)),
		PersonalWords:        float64(countOccurrences(combined, personalWords)),
		ActionWords:          float64(countOccurrences(combined, actionWords)),
		UrgencyScore:         urgencyScore(combined),
		URLRiskScore:         riskScore,
		SuspiciousURLs:       float64(suspiciousCount),
		SenderDomainMismatch: boolFeature(domainMismatch(parsed.Sender, parsed.URLs)),
		SenderSuspicious:     boolFeature(suspiciousSender(parsed.Sender)),
		ExcessiveLinks:       boolFeature(len(parsed.URLs) > 3),
		ShortBody:            boolFeature(utf8.RuneCountInString(body) < 50),
		ManyExclamations:     boolFeature(strings.Count(combined, "!") > 2),
		UnusualCapitals:      boolFeature(capsRatio(parsed.Subject+" "+parsed.Body) > 0.3),
		Text:                 e.text.ProcessText(combined, maxTextBlob),
	}

	return parsed, fv
}

// ExtractURL analyzes a bare URL and computes its feature vector. URL
// documents fill the first seven slots; the email-only slots stay zero so
// the fused column space matches the trained model.
func (e *Extractor) ExtractURL(rawURL string) (core.URLAnalysis, *core.FeatureVector) {
	analysis := mailparse.AnalyzeURL(rawURL)

	fv := &core.FeatureVector{
		SubjectLength:  float64(analysis.URLLength),
		BodyLength:     float64(analysis.SubdomainCount),
		URLCount:       boolFeature(analysis.HasIPAddress),
		UrgentWords:    boolFeature(analysis.HasSuspiciousPattern),
		FinancialWords: boolFeature(!analysis.UsesHTTPS),
		PersonalWords:  boolFeature(analysis.HasPort),
		ActionWords:    boolFeature(analysis.SuspiciousTLD),
		Text:           e.text.ProcessText(strings.ToLower(rawURL), maxTextBlob),
	}

	return analysis, fv
}

// analyzeURLs returns the mean per-URL risk and the count of URLs whose
// risk exceeds 0.5. An empty list scores exactly 0.
func (e *Extractor) analyzeURLs(urls []string) (float64, int) {
	if len(urls) == 0 {
		return 0, 0
	}

	total := 0.0
	suspicious := 0
	for _, u := range urls {
		risk := mailparse.RiskScore(mailparse.AnalyzeURL(u))
		total += risk
		if risk > 0.5 {
			suspicious++
		}
	}

	return total / float64(len(urls)), suspicious
}

// countOccurrences sums substring occurrence counts over a keyword list.
func countOccurrences(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		count += strings.Count(text, keyword)
	}
	return count
}

// urgencyScore counts urgency indicators and normalizes to [0,1].
func urgencyScore(text string) float64 {
	count := 0
	for _, indicator := range urgencyIndicators {
		count += strings.Count(text, indicator)
	}
	score := float64(count) / 10
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// domainMismatch reports whether none of the URLs reference the sender's
// domain. Known precision risk: legitimate senders routinely link to other
// trusted domains, so this flag over-fires on e.g. a bank linking to its
// payment processor. Kept as-is for model compatibility.
func domainMismatch(sender string, urls []string) bool {
	if !strings.Contains(sender, "@") || len(urls) == 0 {
		return false
	}

	parts := strings.SplitN(sender, "@", 2)
	domain := strings.ToLower(strings.TrimSuffix(parts[1], ">"))
	if domain == "" {
		return false
	}

	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), domain) {
			return false
		}
	}
	return true
}

// suspiciousSender reports whether the sender address contains a generic
// automated-sender term.
func suspiciousSender(sender string) bool {
	lower := strings.ToLower(sender)
	for _, term := range suspiciousSenderTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// capsRatio is the fraction of uppercase letters over all characters,
// counted in runes so multi-byte text is not deflated.
func capsRatio(text string) float64 {
	caps, total := 0, 0
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			caps++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(caps) / float64(total)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
