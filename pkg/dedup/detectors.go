package dedup

import (
	"math"
	"regexp"
	"strings"
	"time"
)

var aggregateReportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)multiple`),
	regexp.MustCompile(`(?i)OAIC notifiable`),
	regexp.MustCompile(`(?i)COVID-themed`),
	regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+20\d\d\s+(roundup|wrap|digest|review)`),
	regexp.MustCompile(`(?i)weekly (round.?up|digest)`),
]

func matchesAggregatePattern(title string) bool {
	for _, p := range aggregateReportPatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}

// isGenericSummaryPair implements spec §4.5 step 2b: both titles read
// as aggregate roundups and share at least 3 common terms.
func isGenericSummaryPair(a, b Candidate) bool {
	if !matchesAggregatePattern(a.Title) || !matchesAggregatePattern(b.Title) {
		return false
	}
	common := commonTermCount(a.Title, b.Title)
	return common >= 3
}

func commonTermCount(a, b string) int {
	ta, tb := toSet(significantTerms(a)), toSet(significantTerms(b))
	n := 0
	for t := range ta {
		if tb[t] {
			n++
		}
	}
	return n
}

func significantTerms(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	var out []string
	for _, f := range fields {
		f = strings.Trim(f, ".,:;\"'()")
		if len(f) >= 4 && !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

// attackAnchorPair is a crude (method, timeframe) extraction used by
// the different-incident detector to decide whether two descriptions
// clearly reference distinct attacks.
var methodPattern = regexp.MustCompile(`(?i)(ransomware|phishing|ddos|credential stuffing|sql injection|supply.?chain|malware|data leak|third.?party breach)`)
var timeframePattern = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+20\d\d`)

func attackAnchor(description string) (method, timeframe string) {
	if m := methodPattern.FindString(description); m != "" {
		method = strings.ToLower(m)
	}
	if m := timeframePattern.FindString(description); m != "" {
		timeframe = strings.ToLower(m)
	}
	return
}

// isDifferentIncident implements spec §4.5 step 2c: same company, but
// customer counts differ by more than 10x and the descriptions carry
// clearly distinct attack-method/timeframe anchors.
func isDifferentIncident(a, b Candidate) bool {
	if a.RecordsAffected == nil || b.RecordsAffected == nil {
		return false
	}
	ra, rb := float64(*a.RecordsAffected), float64(*b.RecordsAffected)
	if ra == 0 || rb == 0 {
		return false
	}
	ratio := ra / rb
	if ratio < 1 {
		ratio = 1 / ratio
	}
	if ratio <= 10 {
		return false
	}

	methodA, timeA := attackAnchor(a.Description)
	methodB, timeB := attackAnchor(b.Description)
	if methodA == "" || methodB == "" || timeA == "" || timeB == "" {
		return false
	}
	return methodA != methodB && timeA != timeB
}

// dateFactor implements spec §4.5 step 2d's date-proximity decay.
func dateFactor(a, b *time.Time, identicalTitles bool) float64 {
	if identicalTitles {
		return 0.95
	}
	if a == nil || b == nil {
		return 0.8
	}
	delta := a.Sub(*b)
	if delta < 0 {
		delta = -delta
	}
	days := delta.Hours() / 24

	switch {
	case days == 0:
		return 1.0
	case days <= 7:
		return 0.98
	case days <= 30:
		return 0.90
	case days <= 90:
		return 0.80
	case days <= 180:
		return 0.70
	case days <= 365:
		return 0.60
	default:
		return math.Max(0.4, 1-days/1000)
	}
}
