package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsGenericSummaryPairTrueForTwoAggregateRoundups(t *testing.T) {
	a := Candidate{Title: "Multiple Australian companies hit by ransomware attacks in March 2026"}
	b := Candidate{Title: "Multiple Australian firms hit by ransomware attacks this month"}
	assert.True(t, isGenericSummaryPair(a, b))
}

func TestIsGenericSummaryPairFalseWhenOnlyOneIsAggregate(t *testing.T) {
	a := Candidate{Title: "Multiple Australian companies hit by ransomware attacks"}
	b := Candidate{Title: "Medibank confirms customer data breach"}
	assert.False(t, isGenericSummaryPair(a, b))
}

func TestIsDifferentIncidentTrueWhenRecordsDifferByOrderOfMagnitudeWithDistinctAnchors(t *testing.T) {
	recordsSmall := int64(500)
	recordsLarge := int64(9_000_000)
	a := Candidate{
		RecordsAffected: &recordsSmall,
		Description:     "A phishing attack in March 2024 compromised a small set of customer accounts.",
	}
	b := Candidate{
		RecordsAffected: &recordsLarge,
		Description:     "A ransomware attack in November 2025 exposed millions of customer records.",
	}
	assert.True(t, isDifferentIncident(a, b))
}

func TestIsDifferentIncidentFalseWhenAnchorsMatch(t *testing.T) {
	recordsSmall := int64(500)
	recordsLarge := int64(9_000_000)
	a := Candidate{
		RecordsAffected: &recordsSmall,
		Description:     "A ransomware attack in November 2025 compromised a small set of accounts.",
	}
	b := Candidate{
		RecordsAffected: &recordsLarge,
		Description:     "A ransomware attack in November 2025 exposed millions of customer records.",
	}
	assert.False(t, isDifferentIncident(a, b))
}

func TestIsDifferentIncidentFalseWhenRecordsMissing(t *testing.T) {
	a := Candidate{Description: "A ransomware attack."}
	b := Candidate{Description: "A phishing attack."}
	assert.False(t, isDifferentIncident(a, b))
}

func TestDateFactorSameDateIsOne(t *testing.T) {
	d := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1.0, dateFactor(&d, &d, false))
}

func TestDateFactorDecaysWithGap(t *testing.T) {
	a := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	b5d := a.AddDate(0, 0, 5)
	assert.Equal(t, 0.98, dateFactor(&a, &b5d, false))

	b20d := a.AddDate(0, 0, 20)
	assert.Equal(t, 0.90, dateFactor(&a, &b20d, false))

	b200d := a.AddDate(0, 0, 200)
	assert.Equal(t, 0.60, dateFactor(&a, &b200d, false))
}

func TestDateFactorMissingDateDefaultsPointEight(t *testing.T) {
	a := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.8, dateFactor(&a, nil, false))
}

func TestDateFactorIdenticalTitlesOverridesToPointNineFive(t *testing.T) {
	assert.Equal(t, 0.95, dateFactor(nil, nil, true))
}
