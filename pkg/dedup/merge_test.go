package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePicksHighestConfidenceMaster(t *testing.T) {
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", ConfidenceScore: 0.6, Title: "short"},
		{EnrichedID: "e2", RawID: "r2", ConfidenceScore: 0.9, Title: "a much longer title about the incident"},
	}}

	merged := Merge(group)

	assert.Equal(t, "e2", merged.Master.EnrichedID)
	require.Len(t, merged.Others, 1)
	assert.Equal(t, "e1", merged.Others[0].EnrichedID)
}

func TestMergeAdoptsLongestTitleAndDescription(t *testing.T) {
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", ConfidenceScore: 0.8, Title: "ANZ hit", Description: "short"},
		{EnrichedID: "e2", RawID: "r2", ConfidenceScore: 0.8, Title: "ANZ Bank hit by cyber incident affecting customers", Description: "a much longer description of the incident"},
	}}

	merged := Merge(group)

	assert.Equal(t, "ANZ Bank hit by cyber incident affecting customers", merged.Title)
	assert.Equal(t, "a much longer description of the incident", merged.Description)
}

func TestMergeUnionsSourcesByURLDeduplicatingRepeats(t *testing.T) {
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", SourceURL: "https://a.example/1"},
		{EnrichedID: "e2", RawID: "r2", SourceURL: "https://a.example/1"},
		{EnrichedID: "e3", RawID: "r3", SourceURL: "https://b.example/2"},
	}}

	merged := Merge(group)

	assert.Equal(t, 2, merged.TotalDataSources)
	assert.Len(t, merged.SourcesByURL, 2)
}

func TestMergeConfidenceRewardsCorroborationUpToCap(t *testing.T) {
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", ConfidenceScore: 0.7, SourceURL: "https://a.example"},
		{EnrichedID: "e2", RawID: "r2", ConfidenceScore: 0.5, SourceURL: "https://b.example"},
		{EnrichedID: "e3", RawID: "r3", ConfidenceScore: 0.5, SourceURL: "https://c.example"},
		{EnrichedID: "e4", RawID: "r4", ConfidenceScore: 0.5, SourceURL: "https://d.example"},
	}}

	merged := Merge(group)

	// master confidence 0.7 + 0.1 * min(4 sources, 3) = 1.0, clamped at 1.0.
	assert.Equal(t, 1.0, merged.ConfidenceScore)
}

func TestMergePrefersEarliestNonNilEventDate(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", EventDate: &late},
		{EnrichedID: "e2", RawID: "r2", EventDate: &early},
	}}

	merged := Merge(group)

	require.NotNil(t, merged.EventDate)
	assert.True(t, merged.EventDate.Equal(early))
}

func TestMergePicksHighestSeverityAcrossMembers(t *testing.T) {
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", Severity: "Medium"},
		{EnrichedID: "e2", RawID: "r2", Severity: "Critical"},
	}}

	merged := Merge(group)

	assert.Equal(t, "Critical", merged.Severity)
}

func TestMergeSingleMemberGroupHasSimilarityScoreOfOne(t *testing.T) {
	group := Group{Members: []Candidate{
		{EnrichedID: "e1", RawID: "r1", Title: "solo"},
	}}

	merged := Merge(group)

	assert.Equal(t, 1.0, merged.SimilarityScore)
	assert.Empty(t, merged.Others)
}
