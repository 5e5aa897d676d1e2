package features

// Keyword categories counted over the case-folded subject+body text.
// Counts are substring occurrence counts, so repeated keywords accumulate.
var (
	urgentWords = []string{
		"urgent", "immediate", "critical", "expire", "expired",
		"confirm", "verify", "validate", "act now", "limited time",
	}

	financialWords = []string{
		"payment", "billing", "credit card", "account", "bank",
		"refund", "tax", "invoice", "transaction", "unauthorized",
	}

	personalWords = []string{
		"identity", "password", "personal information", "ssn",
		"driver license", "social security", "prove", "confirm identity",
	}

	actionWords = []string{
		"click", "download", "install", "open", "submit", "update",
		"reset", "change", "confirm", "respond",
	}

	// urgencyIndicators feed the normalized urgency score.
	urgencyIndicators = []string{"!", "urgent", "immediate", "confirm", "verify"}

	// suspiciousSenderTerms in the sender address mark generic or
	// automated senders.
	suspiciousSenderTerms = []string{
		"admin", "support", "noreply", "notification",
		"no-reply", "donotreply", "mailer",
	}
)
