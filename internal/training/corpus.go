package training

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSONL reads labeled samples from a JSON-lines dataset, one
// {"text": ..., "is_phishing": 0|1} record per line. Blank lines are
// skipped.
func LoadJSONL(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open dataset: %w", err)
	}
	defer f.Close()

	var samples []Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var s Sample
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("corpus: line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read dataset: %w", err)
	}

	return samples, nil
}

// SeedCorpus is a small built-in labeled corpus for smoke training when no
// dataset is supplied. It is far too small for a production model.
func SeedCorpus() []Sample {
	return []Sample{
		{Label: 1, Text: "verify your account immediately due to unusual activity click here to confirm your identity urgent action required"},
		{Label: 1, Text: "we noticed suspicious activity please update your password now within 24 hours or account will be suspended"},
		{Label: 1, Text: "click here to claim your prize 1 million dollars waiting verify account credentials PayPal urgent"},
		{Label: 1, Text: "your paypal account requires immediate verification limited time offer confirm billing information now"},
		{Label: 1, Text: "amazon urgent action needed suspicious login attempt reset password immediately http://verify-amazon.tk"},
		{Label: 1, Text: "bank alert unauthorized transactions detected click to verify account 192.168.1.1 important urgent"},
		{Label: 1, Text: "microsoft security alert unusual activity confirm identity immediately action required http://secure-verify-microsoft.xyz"},
		{Label: 1, Text: "apple id verification needed confirm password immediately reactivate account http://bit.ly/verify-apple"},
		{Label: 0, Text: "Your monthly statement is ready. Please click below to download your PDF statement from our secure portal. Banking services."},
		{Label: 0, Text: "Hi John, Meeting scheduled for tomorrow at 2pm. Please confirm your attendance. Looking forward to seeing you then."},
		{Label: 0, Text: "Thank you for your purchase. Your order confirmation and tracking information has been sent to your email."},
		{Label: 0, Text: "Welcome to our service. Your account has been created successfully. You can now log in with your credentials."},
		{Label: 0, Text: "Project update: Q3 results are ready for review. Please access our secure dashboard to view detailed analytics."},
		{Label: 0, Text: "Hello team, Attached is the meeting minutes from today. Please review and provide feedback by Friday."},
		{Label: 0, Text: "Your quarterly health insurance coverage is now active. Find plan details and ID card in your member portal."},
		{Label: 0, Text: "New comment on your blog post. Click here to view and respond to reader feedback on your article."},
	}
}
