// Package confidence implements Stage 5 (Confidence Aggregation &
// Decision, C9) of the enrichment pipeline: a weighted combination of
// the four upstream stage scores, an ordered chain of multiplicative
// penalties, and the AUTO_ACCEPT / ACCEPT_WITH_WARNING / REJECT
// decision thresholds.
package confidence

import (
	"math"
	"strings"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// Weights for the base weighted sum (spec §4.4 Stage 5).
const (
	weightExtraction       = 0.30
	weightFactCheck        = 0.30
	weightValidation       = 0.20
	weightSourceReliability = 0.20
)

// Decision thresholds.
const (
	autoAcceptThreshold = 0.80
	acceptWarnThreshold = 0.50
)

// Penalty factors, applied in the fixed order the spec lists them.
const (
	penaltyValidationError       = 0.30
	penaltyManyWarnings          = 0.80
	penaltyNotSpecific           = 0.80
	penaltyLowAustralianRelevance = 0.40
	penaltyLowFactCheckPassRate   = 0.50
	penaltyTitleMentionsAusButLow = 0.30
)

const lowAustralianRelevance = 0.3
const lowFactCheckPassRate = 0.5
const manyWarningsThreshold = 3

// Input bundles every signal Stage 5 needs. Nothing here is computed
// by this package; it is the pure aggregation of upstream results.
type Input struct {
	ExtractionConfidence  float64
	FactCheckConfidence   float64
	ValidationConfidence  float64
	SourceReliability     float64

	HasValidationError bool
	ValidationWarnings  int

	IsSpecificIncident  bool
	AustralianRelevance float64

	FactCheckChecksPerformed int
	FactCheckChecksPassed    int

	Title string
}

// PenaltyApplication records one penalty factor that fired, for the
// audit trail.
type PenaltyApplication struct {
	Name   string
	Factor float64
}

// Decision is the Stage 5 output: the final clamped confidence, the
// categorical decision, and every penalty that was applied (for
// audit storage, C10).
type Decision struct {
	BaseScore        float64
	FinalConfidence  float64
	Penalties        []PenaltyApplication
	Decision         model.Decision
}

// Aggregator computes Stage 5 decisions. It holds no state; it exists
// so callers can inject it the same way they inject Extractor/FactChecker.
type Aggregator struct{}

// NewAggregator returns an Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes the final confidence and decision for in. The
// computation is pure and deterministic: given the same Input it
// always recomputes the same FinalConfidence within floating-point
// tolerance, satisfying the pipeline's recomputability invariant.
func (a *Aggregator) Aggregate(in Input) Decision {
	base := weightExtraction*in.ExtractionConfidence +
		weightFactCheck*in.FactCheckConfidence +
		weightValidation*in.ValidationConfidence +
		weightSourceReliability*in.SourceReliability

	score := base
	var penalties []PenaltyApplication

	apply := func(name string, factor float64) {
		score *= factor
		penalties = append(penalties, PenaltyApplication{Name: name, Factor: factor})
	}

	if in.HasValidationError {
		apply("validation_error", penaltyValidationError)
	}
	if in.ValidationWarnings > manyWarningsThreshold {
		apply("excess_validation_warnings", penaltyManyWarnings)
	}
	if !in.IsSpecificIncident {
		apply("not_specific_incident", penaltyNotSpecific)
	}
	if in.AustralianRelevance < lowAustralianRelevance {
		apply("low_australian_relevance", penaltyLowAustralianRelevance)
	}
	if in.FactCheckChecksPerformed > 0 {
		passRate := float64(in.FactCheckChecksPassed) / float64(in.FactCheckChecksPerformed)
		if passRate < lowFactCheckPassRate {
			apply("low_factcheck_pass_rate", penaltyLowFactCheckPassRate)
		}
	}
	if mentionsAustralian(in.Title) && in.AustralianRelevance < lowAustralianRelevance {
		apply("title_claims_australian_but_low_relevance", penaltyTitleMentionsAusButLow)
	}

	final := clamp01(score)

	d := Decision{BaseScore: base, FinalConfidence: final, Penalties: penalties}
	switch {
	case final >= autoAcceptThreshold:
		d.Decision = model.DecisionAutoAccept
	case final >= acceptWarnThreshold:
		d.Decision = model.DecisionAcceptWithWarning
	default:
		d.Decision = model.DecisionReject
	}
	return d
}

func mentionsAustralian(title string) bool {
	return strings.Contains(strings.ToLower(title), "australian")
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
