package collectors

import "strings"

// cyberKeywords is the vocabulary the discovery-time gate looks for.
// A single match is enough to pass — this stage only needs to reject
// obvious noise cheaply, not confirm relevance.
var cyberKeywords = []string{
	"data breach", "databreach", "ransomware", "malware", "cyber attack",
	"cyberattack", "phishing", "ddos", "credential theft", "credential stuffing",
	"hack", "hacked", "hacker", "vulnerability", "exploit", "cyber security",
	"cybersecurity", "data leak", "leaked data", "security incident",
	"unauthorised access", "unauthorized access",
}

// noiseExclusions are terms whose presence alongside a weak keyword
// match strongly suggests the obvious non-cyber senses of ambiguous
// words like "hack" (golf) or "attack" (sports).
var noiseExclusions = []string{
	"fireworks", "grand final", "golf hack", "life hack", "football",
	"cricket", "election result", "celebrity", "red carpet",
}

// DiscoveryGate is the cheap Stage-1 keyword filter the Progressive
// Filter (C4) applies to a collector's title/description before a
// RawEvent is even inserted. It rejects only the obviously irrelevant;
// genuine relevance is decided later by Stage 2 extraction.
func DiscoveryGate(title, description string) bool {
	haystack := strings.ToLower(title + " " + description)

	matched := false
	for _, kw := range cyberKeywords {
		if strings.Contains(haystack, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, noise := range noiseExclusions {
		if strings.Contains(haystack, noise) {
			return false
		}
	}
	return true
}

// postScrapeMinKeywordHits is the stricter bar applied once full
// article text is available: a single incidental keyword mention is
// no longer enough.
const postScrapeMinKeywordHits = 2

// PostScrapeGate is the stricter Stage-2 gate applied after content
// acquisition, when the full article text is available to count
// distinct keyword hits rather than relying on a title/description
// snippet.
func PostScrapeGate(fullText string) bool {
	haystack := strings.ToLower(fullText)
	hits := 0
	for _, kw := range cyberKeywords {
		if strings.Contains(haystack, kw) {
			hits++
		}
	}
	return hits >= postScrapeMinKeywordHits
}
