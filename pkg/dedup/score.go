package dedup

import (
	"regexp"
	"strings"
)

// keyCyberTerms is the ~30-term domain vocabulary whose intersection
// boosts desc_sim, per spec §4.5 step 2d.
var keyCyberTerms = []string{
	"ransomware", "phishing", "malware", "ddos", "credential", "breach",
	"exfiltrate", "exfiltration", "encrypt", "encrypted", "extortion",
	"dark web", "third-party", "third party", "vendor", "vulnerability",
	"exploit", "zero-day", "supply chain", "contact centre", "contact center",
	"call centre", "call center", "notifiable", "regulator", "oaic",
	"personal information", "customer data", "data leak", "unauthorised access",
	"unauthorized access", "threat actor", "nation-state",
}

var keyTermPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)contact\s*(centre|center)`),
	regexp.MustCompile(`(?i)third.?party`),
	regexp.MustCompile(`(?i)ransomware`),
	regexp.MustCompile(`(?i)phishing`),
	regexp.MustCompile(`(?i)ddos`),
	regexp.MustCompile(`(?i)credential stuffing`),
	regexp.MustCompile(`(?i)supply.?chain`),
	regexp.MustCompile(`(?i)scattered spider|alphv|lockbit|clop|medusa|blackcat`),
	regexp.MustCompile(`(?i)data leak`),
	regexp.MustCompile(`(?i)dark web`),
}

func keyTermSet(text string) map[string]bool {
	lower := strings.ToLower(text)
	matched := map[string]bool{}
	for _, p := range keyTermPatterns {
		if p.MatchString(lower) {
			matched[p.String()] = true
		}
	}
	return matched
}

// titleSimilarity is max(sequence ratio, truncation similarity when one
// token set is a subset of the other, prefix similarity over the
// shorter title's length).
func titleSimilarity(a, b string) float64 {
	best := sequenceRatio(a, b)

	ta, tb := toSet(significantTerms(a)), toSet(significantTerms(b))
	if isSubset(ta, tb) || isSubset(tb, ta) {
		if v := jaccard(ta, tb); v > best {
			best = v
		}
	}

	if v := prefixSimilarity(a, b); v > best {
		best = v
	}
	return best
}

func isSubset(small, big map[string]bool) bool {
	if len(small) == 0 {
		return false
	}
	for t := range small {
		if !big[t] {
			return false
		}
	}
	return true
}

func prefixSimilarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	n := len(la)
	if len(lb) < n {
		n = len(lb)
	}
	if n == 0 {
		return 0
	}
	return sequenceRatio(la[:n], lb[:n])
}

// descriptionSimilarity applies the key-cyber-terms boost of up to
// +0.3 when the vocabulary intersection exceeds 4 terms.
func descriptionSimilarity(a, b string) float64 {
	base := sequenceRatio(a, b)
	la, lb := strings.ToLower(a), strings.ToLower(b)

	matched := 0
	for _, term := range keyCyberTerms {
		if strings.Contains(la, term) && strings.Contains(lb, term) {
			matched++
		}
	}
	if matched > 4 {
		base += 0.3
	}
	if base > 1 {
		base = 1
	}
	return base
}

// strongIndicators scores how many of the spec's small ruleset of
// strong same-incident signals are present: same specific system
// mentioned, same precise date string in body, >=2 matching data-type
// terms, same detection-method phrasing, same threat actor.
func strongIndicators(a, b Candidate) float64 {
	hits := 0
	total := 5

	la, lb := strings.ToLower(a.Description), strings.ToLower(b.Description)

	systemTerms := []string{"contact centre", "contact center", "call centre", "call center", "third-party platform", "third party platform"}
	for _, t := range systemTerms {
		if strings.Contains(la, t) && strings.Contains(lb, t) {
			hits++
			break
		}
	}

	_, timeA := attackAnchor(a.Description)
	_, timeB := attackAnchor(b.Description)
	if timeA != "" && timeA == timeB {
		hits++
	}

	dataTypeTerms := []string{"names", "addresses", "passport", "driver's licence", "driver's license", "medicare", "credit card", "date of birth"}
	matchCount := 0
	for _, t := range dataTypeTerms {
		if strings.Contains(la, t) && strings.Contains(lb, t) {
			matchCount++
		}
	}
	if matchCount >= 2 {
		hits++
	}

	detectionTerms := []string{"detected", "identified", "discovered", "notified"}
	for _, t := range detectionTerms {
		if strings.Contains(la, t) && strings.Contains(lb, t) {
			hits++
			break
		}
	}

	if a.AttackingEntity != "" && strings.EqualFold(a.AttackingEntity, b.AttackingEntity) {
		hits++
	}

	return float64(hits) / float64(total)
}

// typeFactor is 1.0 when both candidates share an event_type, else 0.7.
func typeFactor(a, b Candidate) float64 {
	if strings.EqualFold(a.EventType, b.EventType) {
		return 1.0
	}
	return 0.7
}

// contentScore computes the spec §4.5 step 2d weighted score and the
// threshold it must clear for the two branches (strong-indicator
// weighting vs the default weighting).
func contentScore(a, b Candidate, identicalTitles bool) (score, threshold float64) {
	titleSim := titleSimilarity(a.Title, b.Title)
	descSim := descriptionSimilarity(a.Description, b.Description)
	keyTermsSim := jaccard(keyTermSet(a.Description), keyTermSet(b.Description))
	date := dateFactor(a.EventDate, b.EventDate, identicalTitles)
	typ := typeFactor(a, b)
	strong := strongIndicators(a, b)

	if identicalTitles && titleSim < 0.95 {
		titleSim = 0.95
	}

	if strong >= 0.8 {
		descMax := descSim
		if descMax < 0.3 {
			descMax = 0.3
		}
		score = (0.2*titleSim + 0.1*descMax + 0.5*keyTermsSim + 0.2*strong) * date
		threshold = 0.60
		return
	}

	score = (0.3*titleSim + 0.2*descSim + 0.4*keyTermsSim + 0.1*typ) * date
	threshold = 0.70
	return
}
