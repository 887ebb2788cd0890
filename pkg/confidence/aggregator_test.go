package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/colinpriest/austcyberevents/pkg/model"
)

func baseInput() Input {
	return Input{
		ExtractionConfidence: 0.9,
		FactCheckConfidence:  0.9,
		ValidationConfidence: 0.9,
		SourceReliability:    0.9,
		IsSpecificIncident:   true,
		AustralianRelevance:  0.9,
		Title:                "Big Corp suffers data breach",
	}
}

func TestAggregateAutoAcceptsCleanInput(t *testing.T) {
	a := NewAggregator()
	d := a.Aggregate(baseInput())

	assert.InDelta(t, 0.9, d.BaseScore, 1e-9)
	assert.Equal(t, model.DecisionAutoAccept, d.Decision)
	assert.Empty(t, d.Penalties)
}

func TestAggregateIsDeterministic(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	d1 := a.Aggregate(in)
	d2 := a.Aggregate(in)
	assert.InDelta(t, d1.FinalConfidence, d2.FinalConfidence, 1e-6)
}

func TestAggregateAppliesValidationErrorPenalty(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.HasValidationError = true

	d := a.Aggregate(in)
	assert.InDelta(t, 0.9*0.30, d.FinalConfidence, 1e-9)
	assert.Equal(t, model.DecisionReject, d.Decision)
	require1Penalty(t, d, "validation_error", 0.30)
}

func TestAggregateAppliesMultiplePenaltiesInOrder(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.IsSpecificIncident = false
	in.AustralianRelevance = 0.1

	d := a.Aggregate(in)
	expected := clamp01(0.9 * 0.80 * 0.40)
	assert.InDelta(t, expected, d.FinalConfidence, 1e-9)
	assert.Len(t, d.Penalties, 2)
	assert.Equal(t, "not_specific_incident", d.Penalties[0].Name)
	assert.Equal(t, "low_australian_relevance", d.Penalties[1].Name)
}

func TestAggregateAppliesManyWarningsPenalty(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.ValidationWarnings = 4

	d := a.Aggregate(in)
	require1Penalty(t, d, "excess_validation_warnings", 0.80)
}

func TestAggregateAppliesLowFactCheckPassRatePenalty(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.FactCheckChecksPerformed = 4
	in.FactCheckChecksPassed = 1

	d := a.Aggregate(in)
	require1Penalty(t, d, "low_factcheck_pass_rate", 0.50)
}

func TestAggregateSkipsFactCheckPenaltyWhenNoChecksPerformed(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.FactCheckChecksPerformed = 0
	in.FactCheckChecksPassed = 0

	d := a.Aggregate(in)
	assert.Empty(t, d.Penalties)
}

func TestAggregateAppliesTitleMentionsAustralianButLowRelevancePenalty(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.Title = "Australian firm hit by ransomware"
	in.AustralianRelevance = 0.1

	d := a.Aggregate(in)
	names := penaltyNames(d)
	assert.Contains(t, names, "low_australian_relevance")
	assert.Contains(t, names, "title_claims_australian_but_low_relevance")
}

func TestAggregateClampsToZeroOne(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.HasValidationError = true
	in.IsSpecificIncident = false
	in.AustralianRelevance = 0.0
	in.FactCheckChecksPerformed = 2
	in.FactCheckChecksPassed = 0

	d := a.Aggregate(in)
	assert.GreaterOrEqual(t, d.FinalConfidence, 0.0)
	assert.LessOrEqual(t, d.FinalConfidence, 1.0)
	assert.Equal(t, model.DecisionReject, d.Decision)
}

func TestAggregateAcceptWithWarningBand(t *testing.T) {
	a := NewAggregator()
	in := baseInput()
	in.ExtractionConfidence = 0.6
	in.FactCheckConfidence = 0.6
	in.ValidationConfidence = 0.6
	in.SourceReliability = 0.6

	d := a.Aggregate(in)
	assert.InDelta(t, 0.6, d.FinalConfidence, 1e-9)
	assert.Equal(t, model.DecisionAcceptWithWarning, d.Decision)
}

func require1Penalty(t *testing.T, d Decision, name string, factor float64) {
	t.Helper()
	for _, p := range d.Penalties {
		if p.Name == name {
			assert.InDelta(t, factor, p.Factor, 1e-9)
			return
		}
	}
	t.Fatalf("expected penalty %q to have fired, got %+v", name, d.Penalties)
}

func penaltyNames(d Decision) []string {
	names := make([]string, len(d.Penalties))
	for i, p := range d.Penalties {
		names[i] = p.Name
	}
	return names
}
