// Package validation implements Stage 4 (Validation, C8) of the
// enrichment pipeline, plus the records-affected rule shared with
// Stage 2 extraction (C6).
package validation

import "strings"

// majorInternationalOrgs and majorAustralianOrgs are the process-wide
// constants the records-affected rule consults. Reloading these
// requires a redeploy by design (spec §4.4.4) — they are a short,
// curated list, not a data source an operator tunes per run.
var majorInternationalOrgs = []string{
	"facebook", "meta", "google", "microsoft", "amazon", "twitter", "x corp",
	"linkedin", "yahoo", "marriott", "equifax", "capital one", "t-mobile",
}

var majorAustralianOrgs = []string{
	"optus", "medibank", "latitude financial", "commonwealth bank", "anz",
	"westpac", "nab", "telstra", "qantas", "woolworths", "coles",
}

var governmentIdentifiers = []string{
	"department of", "australian government", "services australia",
	"centrelink", "medicare", "australian taxation office", "ato",
	"state government", "city council",
}

// RecordsAffected applies the shared records-affected rule (spec
// §4.4.4) to a candidate integer v extracted for title. It returns the
// accepted value, or nil if the rule rejects v.
func RecordsAffected(v int64, title string) *int64 {
	if v <= 0 || v < 50 {
		return nil
	}
	if v > 1_000_000_000 {
		return nil
	}

	lowerTitle := strings.ToLower(title)

	if v > 20_000_000 {
		if !containsAny(lowerTitle, majorInternationalOrgs) &&
			!containsAny(lowerTitle, majorAustralianOrgs) &&
			!containsAny(lowerTitle, governmentIdentifiers) {
			return nil
		}
	}

	if v > 30_000_000 {
		if containsAny(lowerTitle, majorAustralianOrgs) && !containsAny(lowerTitle, majorInternationalOrgs) {
			return nil
		}
	}

	out := v
	return &out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
