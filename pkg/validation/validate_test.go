package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDuplicateChecker struct {
	exists bool
	err    error
}

func (s stubDuplicateChecker) ActiveEventExists(ctx context.Context, victim string, eventDate *time.Time) (bool, error) {
	return s.exists, s.err
}

func validInput() Input {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := int64(50000)
	return Input{
		Title:               "iiNet confirms data breach affecting customers",
		URL:                 "https://example.com/news/iinet-breach",
		VictimOrganization:  "iiNet",
		Industry:            "Information Technology",
		Severity:            SeverityHigh,
		RecordsAffected:     &records,
		EventDate:           &date,
		DiscoveryDate:       &date,
		DisclosureDate:      &date,
		IsSpecificIncident:  true,
		AustralianRelevance: 0.9,
		AttackType:          "ransomware",
		Now:                 time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateAcceptsCleanInput(t *testing.T) {
	res := Validate(context.Background(), validInput(), nil)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1.0, res.ValidationConfidence)
}

func TestValidateRejectsGenericOrganizationName(t *testing.T) {
	in := validInput()
	in.VictimOrganization = "Unknown"

	res := Validate(context.Background(), in, nil)
	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
}

func TestValidateRejectsGenericDescriptorOrganization(t *testing.T) {
	in := validInput()
	in.VictimOrganization = "an Australian healthcare company"

	res := Validate(context.Background(), in, nil)
	assert.False(t, res.IsValid)
}

func TestValidateWarnsWhenVictimAbsentFromTitle(t *testing.T) {
	in := validInput()
	in.Title = "Major breach hits regional telco"

	res := Validate(context.Background(), in, nil)
	assert.True(t, res.IsValid)
	assert.NotEmpty(t, res.Warnings)
}

func TestValidateErrorsOnFutureIncidentDate(t *testing.T) {
	in := validInput()
	future := in.Now.AddDate(0, 1, 0)
	in.EventDate = &future

	res := Validate(context.Background(), in, nil)
	assert.False(t, res.IsValid)
}

func TestValidateErrorsOnDiscoveryBeforeIncident(t *testing.T) {
	in := validInput()
	early := in.EventDate.AddDate(0, 0, -5)
	in.DiscoveryDate = &early

	res := Validate(context.Background(), in, nil)
	assert.False(t, res.IsValid)
}

func TestValidateWarnsOnCriticalSeverityWithFewRecords(t *testing.T) {
	in := validInput()
	in.Severity = SeverityCritical
	small := int64(500)
	in.RecordsAffected = &small

	res := Validate(context.Background(), in, nil)
	assert.True(t, res.IsValid)
	assert.NotEmpty(t, res.Warnings)
}

func TestValidateWarnsOnDuplicateActiveEvent(t *testing.T) {
	res := Validate(context.Background(), validInput(), stubDuplicateChecker{exists: true})
	assert.NotEmpty(t, res.Warnings)
}

func TestValidateAppliesSpecificityOverrideToTrue(t *testing.T) {
	in := validInput()
	in.IsSpecificIncident = false

	res := Validate(context.Background(), in, nil)
	assert.True(t, res.IsSpecificIncident)
	require.Len(t, res.Overrides, 1)
	assert.Equal(t, "is_specific_incident", res.Overrides[0].Field)
	assert.Equal(t, false, res.Overrides[0].From)
	assert.Equal(t, true, res.Overrides[0].To)
}

func TestValidateAppliesSpecificityOverrideToFalseForEducationalTitle(t *testing.T) {
	in := validInput()
	in.Title = "How to protect your business from ransomware"
	in.VictimOrganization = ""
	in.IsSpecificIncident = true

	res := Validate(context.Background(), in, nil)
	assert.False(t, res.IsSpecificIncident)
	require.Len(t, res.Overrides, 1)
}

func TestValidateConfidencePenalisesErrorsAndWarningsThenAveragesWithFactCheck(t *testing.T) {
	in := validInput()
	future := in.Now.AddDate(0, 1, 0)
	in.EventDate = &future // 1 error, no title-match warning since org name unaffected
	in.DiscoveryDate = nil
	in.DisclosureDate = nil
	in.FactCheckChecksPerformed = 2
	in.FactCheckChecksPassed = 1 // pass rate 0.5

	res := Validate(context.Background(), in, nil)
	require.Len(t, res.Errors, 1)
	require.Empty(t, res.Warnings)

	base := 1 - 0.3*1
	expected := (base + 0.5) / 2
	assert.InDelta(t, expected, res.ValidationConfidence, 1e-9)
}
