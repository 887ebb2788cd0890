package validation

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Severity mirrors the incident severity levels the cross-field
// consistency rule reasons about.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// DuplicateChecker is the narrow store dependency the duplicate-check
// rule needs: does an Active EnrichedEvent already exist for this
// victim and date? storage.EnrichedEventStore satisfies it directly
// (it has this exact method); it is kept as an interface here so this
// package never imports pkg/storage.
type DuplicateChecker interface {
	ActiveEventExists(ctx context.Context, victimOrganization string, eventDate *time.Time) (bool, error)
}

// Input bundles the Stage 2/Stage 3 fields Stage 4 validation rules
// over. It intentionally does not import pkg/extraction or
// pkg/factcheck types, to avoid a dependency cycle (pkg/extraction
// already imports this package for the shared records-affected rule).
type Input struct {
	Title string
	URL   string

	VictimOrganization string
	Industry           string

	Severity        Severity
	RecordsAffected *int64

	EventDate      *time.Time
	DiscoveryDate  *time.Time
	DisclosureDate *time.Time

	IsSpecificIncident  bool
	AustralianRelevance float64
	AttackType          string

	FactCheckChecksPerformed int
	FactCheckChecksPassed    int

	Now time.Time
}

// Override records one heuristic-repair action the validator took.
type Override struct {
	Field  string
	From   any
	To     any
	Reason string
}

// Result is the Stage 4 output.
type Result struct {
	Errors   []string
	Warnings []string

	// IsSpecificIncident and the overrides below reflect the
	// possibly-repaired extraction, per spec §4.4 Stage 4.
	IsSpecificIncident bool
	Overrides          []Override

	IsValid              bool
	ValidationConfidence float64
}

var (
	genericOrgPattern  = regexp.MustCompile(`(?i)^(an?\s+)?australian\s+\w+\s+compan(y|ies)$|multiple organi[sz]ations|unnamed (company|organi[sz]ation)`)
	personNamePattern  = regexp.MustCompile(`^(Mr|Mrs|Ms|Dr|Mx)\.?\s+[A-Z][a-z]+$`)
	aggregateURLMarker = regexp.MustCompile(`(?i)(blog/|weekly|roundup|digest)`)
	educationalPrefix  = regexp.MustCompile(`(?i)^(how to|guide to|best practices)`)
)

var genericOrgValues = map[string]bool{
	"unknown": true, "n/a": true, "none": true, "": true,
}

// industryMismatches is a small hard-coded table of organisation name
// substrings known to belong to an industry other than what a naive
// keyword match might suggest.
var industryMismatches = map[string]string{
	"bank":     "Financial Services",
	"hospital": "Healthcare and Public Health",
	"uni":      "Education",
}

// Validate runs every Stage 4 rule over in and returns the Stage 4
// result, including any heuristic-repair overrides applied to
// is_specific_incident.
func Validate(ctx context.Context, in Input, dup DuplicateChecker) Result {
	res := Result{IsSpecificIncident: in.IsSpecificIncident}

	checkOrganizationNameSanity(in, &res)
	checkTitleMatch(in, &res)
	checkDatePlausibility(in, &res)
	checkCrossFieldConsistency(in, &res)
	checkDuplicate(ctx, in, dup, &res)
	applySpecificityOverride(in, &res)

	res.IsValid = len(res.Errors) == 0
	res.ValidationConfidence = computeValidationConfidence(res, in)
	return res
}

func checkOrganizationNameSanity(in Input, res *Result) {
	name := strings.TrimSpace(in.VictimOrganization)
	lower := strings.ToLower(name)

	if genericOrgValues[lower] {
		res.Errors = append(res.Errors, "victim organization name is empty or a placeholder value")
		return
	}
	if len(name) < 2 || len(name) > 150 {
		res.Errors = append(res.Errors, "victim organization name length is implausible")
		return
	}
	if genericOrgPattern.MatchString(name) {
		res.Errors = append(res.Errors, "victim organization name is a generic descriptor, not a named entity")
		return
	}
	if personNamePattern.MatchString(name) {
		res.Errors = append(res.Errors, "victim organization name looks like a person's name")
	}
}

func checkTitleMatch(in Input, res *Result) {
	if in.VictimOrganization == "" {
		return
	}
	title := strings.ToLower(in.Title)
	found := false
	for _, word := range significantWords(in.VictimOrganization) {
		if strings.Contains(title, strings.ToLower(word)) {
			found = true
			break
		}
	}
	if found {
		return
	}
	if aggregateURLMarker.MatchString(in.URL) {
		res.Warnings = append(res.Warnings, "victim organization does not appear in title, and the URL looks like an aggregate listing")
		return
	}
	res.Warnings = append(res.Warnings, "victim organization does not appear in title")
}

func significantWords(org string) []string {
	fields := strings.Fields(org)
	var out []string
	for _, f := range fields {
		if len(f) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

func checkDatePlausibility(in Input, res *Result) {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if in.EventDate != nil {
		if in.EventDate.After(now) {
			res.Errors = append(res.Errors, "incident date is in the future")
		}
		if in.EventDate.Year() < 1990 {
			res.Errors = append(res.Errors, "incident date predates 1990")
		}
	}
	if in.EventDate != nil && in.DiscoveryDate != nil && in.DiscoveryDate.Before(*in.EventDate) {
		res.Errors = append(res.Errors, "discovery date precedes incident date")
	}
	if in.DiscoveryDate != nil && in.DisclosureDate != nil && in.DisclosureDate.Before(*in.DiscoveryDate) {
		res.Errors = append(res.Errors, "disclosure date precedes discovery date")
	}
}

func checkCrossFieldConsistency(in Input, res *Result) {
	if in.RecordsAffected != nil {
		records := *in.RecordsAffected
		if in.Severity == SeverityCritical && records < 1000 {
			res.Warnings = append(res.Warnings, "severity is Critical but records_affected is below 1,000")
		}
		if in.Severity == SeverityLow && records > 100000 {
			res.Warnings = append(res.Warnings, "severity is Low but records_affected exceeds 100,000")
		}
	}

	orgLower := strings.ToLower(in.VictimOrganization)
	for hint, expectedIndustry := range industryMismatches {
		if strings.Contains(orgLower, hint) && in.Industry != "" && in.Industry != expectedIndustry {
			res.Warnings = append(res.Warnings, "organization name suggests industry \""+expectedIndustry+"\" but extracted industry is \""+in.Industry+"\"")
		}
	}
}

func checkDuplicate(ctx context.Context, in Input, dup DuplicateChecker, res *Result) {
	if dup == nil || in.VictimOrganization == "" {
		return
	}
	exists, err := dup.ActiveEventExists(ctx, in.VictimOrganization, in.EventDate)
	if err != nil {
		// The duplicate check is advisory; a store error should not
		// turn into a validation error on its own.
		return
	}
	if exists {
		res.Warnings = append(res.Warnings, "an Active EnrichedEvent already exists for this victim and date")
	}
}

func applySpecificityOverride(in Input, res *Result) {
	hasVictim := strings.TrimSpace(in.VictimOrganization) != ""
	hasAnchor := in.RecordsAffected != nil || in.EventDate != nil || (in.AttackType != "" && !isGenericAttackType(in.AttackType))

	if !in.IsSpecificIncident && hasVictim && in.AustralianRelevance >= 0.7 && hasAnchor {
		res.IsSpecificIncident = true
		res.Overrides = append(res.Overrides, Override{
			Field: "is_specific_incident", From: false, To: true,
			Reason: "victim present, australian_relevance >= 0.7, and a concrete anchor exists",
		})
		return
	}

	if in.IsSpecificIncident && educationalPrefix.MatchString(strings.TrimSpace(in.Title)) && !hasVictim {
		res.IsSpecificIncident = false
		res.Overrides = append(res.Overrides, Override{
			Field: "is_specific_incident", From: true, To: false,
			Reason: "title is an educational/how-to prefix and no victim was named",
		})
	}
}

func isGenericAttackType(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return lower == "" || lower == "unknown" || lower == "cyber attack" || lower == "cyber incident"
}

func computeValidationConfidence(res Result, in Input) float64 {
	confidence := 1 - 0.3*float64(len(res.Errors)) - 0.1*float64(len(res.Warnings))
	confidence = clamp01(confidence)

	if in.FactCheckChecksPerformed > 0 {
		passRate := float64(in.FactCheckChecksPassed) / float64(in.FactCheckChecksPerformed)
		confidence = (confidence + passRate) / 2
	}
	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
