package dedup

import (
	"strings"
	"time"
)

// Merge folds a Group into its canonical Merged record, per spec §4.5
// step 3: the highest-confidence member becomes master; title and
// description adopt the longest variant; data sources union by URL;
// the canonical confidence score rewards corroboration.
func Merge(group Group) Merged {
	members := group.Members
	master := members[0]
	for _, m := range members[1:] {
		if m.ConfidenceScore > master.ConfidenceScore {
			master = m
		}
	}

	title := longestOf(members, func(c Candidate) string { return c.Title })
	description := longestOf(members, func(c Candidate) string { return c.Description })

	sourcesByURL := map[string]Candidate{}
	for _, m := range members {
		if m.SourceURL == "" {
			continue
		}
		if _, exists := sourcesByURL[m.SourceURL]; !exists {
			sourcesByURL[m.SourceURL] = m
		}
	}

	rawSeen := map[string]bool{}
	enrichedSeen := map[string]bool{}
	for _, m := range members {
		rawSeen[m.RawID] = true
		enrichedSeen[m.EnrichedID] = true
	}

	confidence := master.ConfidenceScore + 0.1*float64(min(len(sourcesByURL), 3))
	if confidence > 1 {
		confidence = 1
	}

	similarity := averagePairwiseTitleSimilarity(members)

	merged := Merged{
		Master: master,
		Others: otherThan(members, master),

		Title:                      title,
		Description:                description,
		VictimOrganizationName:     master.VictimOrganization,
		VictimOrganizationIndustry: master.VictimIndustry,
		AttackingEntityName:        bestNonEmpty(members, func(c Candidate) string { return c.AttackingEntity }),
		AttackMethod:               bestNonEmpty(members, func(c Candidate) string { return c.AttackMethod }),
		EventType:                  master.EventType,
		Severity:                   highestSeverity(members),
		EventDate:                  bestEventDate(members),
		RecordsAffected:            master.RecordsAffected,
		IsAustralianEvent:          anyTrue(members, func(c Candidate) bool { return c.IsAustralianEvent }),
		IsSpecificEvent:            anyTrue(members, func(c Candidate) bool { return c.IsSpecificEvent }),
		ConfidenceScore:            confidence,
		AustralianRelevanceScore:   master.RelevanceScore,
		TotalDataSources:           len(sourcesByURL),
		ContributingRawEvents:      len(rawSeen),
		ContributingEnrichedEvents: len(enrichedSeen),
		SimilarityScore:            similarity,
		SourcesByURL:               sourcesByURL,
	}
	return merged
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func longestOf(members []Candidate, field func(Candidate) string) string {
	best := ""
	for _, m := range members {
		if v := field(m); len(v) > len(best) {
			best = v
		}
	}
	return best
}

func bestNonEmpty(members []Candidate, field func(Candidate) string) string {
	for _, m := range members {
		if v := field(m); v != "" {
			return v
		}
	}
	return ""
}

func anyTrue(members []Candidate, field func(Candidate) bool) bool {
	for _, m := range members {
		if field(m) {
			return true
		}
	}
	return false
}

var severityRank = map[string]int{
	"low": 1, "medium": 2, "high": 3, "critical": 4,
}

// highestSeverity prefers the most severe recorded rating across
// members, since a master chosen purely by confidence may understate
// severity a corroborating report captured.
func highestSeverity(members []Candidate) string {
	best := ""
	bestRank := -1
	for _, m := range members {
		if r, ok := severityRank[strings.ToLower(m.Severity)]; ok && r > bestRank {
			bestRank = r
			best = m.Severity
		}
	}
	return best
}

// bestEventDate prefers the earliest non-nil event date, on the theory
// that the first report to pin a date is closest to the original
// disclosure.
func bestEventDate(members []Candidate) *time.Time {
	var best *time.Time
	for _, m := range members {
		if m.EventDate == nil {
			continue
		}
		if best == nil || m.EventDate.Before(*best) {
			d := *m.EventDate
			best = &d
		}
	}
	return best
}

func otherThan(members []Candidate, master Candidate) []Candidate {
	out := make([]Candidate, 0, len(members)-1)
	for _, m := range members {
		if m.EnrichedID != master.EnrichedID {
			out = append(out, m)
		}
	}
	return out
}

func averagePairwiseTitleSimilarity(members []Candidate) float64 {
	if len(members) < 2 {
		return 1
	}
	total := 0.0
	pairs := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			total += titleSimilarity(members[i].Title, members[j].Title)
			pairs++
		}
	}
	if pairs == 0 {
		return 1
	}
	return total / float64(pairs)
}
