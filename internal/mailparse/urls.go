package mailparse

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/phishguard/phishing-detector/internal/core"
)

// Patterns that mark a URL as suspicious: credential-action keywords,
// impersonated brands, and known URL shorteners.
var suspiciousURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:verify|confirm|update|login|signin|account|security|confirm-identity)`),
	regexp.MustCompile(`(?:paypal|amazon|apple|microsoft|google|bank)`),
	regexp.MustCompile(`(?:bit\.ly|tinyurl|short\.link)`),
}

// TLDs disproportionately used by phishing campaigns.
var suspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".top", ".pw", ".xyz"}

// AnalyzeURL computes the phishing-relevant signals for a single URL.
// An unparseable URL yields an all-zero analysis rather than an error.
func AnalyzeURL(rawURL string) core.URLAnalysis {
	analysis := core.URLAnalysis{URL: rawURL, URLLength: len(rawURL)}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return core.URLAnalysis{URL: rawURL}
	}

	analysis.Domain = parsed.Host
	analysis.Path = parsed.Path
	analysis.UsesHTTPS = parsed.Scheme == "https"
	analysis.HasIPAddress = isIPv4Host(parsed.Host)
	analysis.HasPort = parsed.Port() != ""
	analysis.SubdomainCount = strings.Count(parsed.Host, ".")
	analysis.HasSuspiciousPattern = hasSuspiciousPattern(rawURL)
	analysis.SuspiciousTLD = hasSuspiciousTLD(rawURL)

	return analysis
}

// RiskScore is the weighted per-URL risk aggregate, clipped to 1.0.
func RiskScore(a core.URLAnalysis) float64 {
	risk := 0.0
	if a.HasIPAddress {
		risk += 0.3
	}
	if a.HasSuspiciousPattern {
		risk += 0.3
	}
	if !a.UsesHTTPS {
		risk += 0.2
	}
	if a.URLLength > 100 {
		risk += 0.1
	}
	if a.SuspiciousTLD {
		risk += 0.1
	}
	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}

func hasSuspiciousPattern(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range suspiciousURLPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

func hasSuspiciousTLD(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, tld := range suspiciousTLDs {
		if strings.Contains(lower, tld) {
			return true
		}
	}
	return false
}

// isIPv4Host reports whether the host is four dot-separated octets in [0,255].
func isIPv4Host(host string) bool {
	host = strings.Split(host, ":")[0]
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" || strings.Trim(part, "0123456789") != "" {
			return false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}
