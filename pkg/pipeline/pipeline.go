// Package pipeline sequences the five enrichment stages (Content
// Acquisition, Primary Extraction, Fact-Checking, Validation,
// Confidence Aggregation) over one RawEvent, applying the
// error-disposition table in spec §7: a Stage 1 failure short-circuits
// straight to REJECT, every other stage's failure degrades the result
// rather than aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/audit"
	"github.com/colinpriest/austcyberevents/pkg/confidence"
	"github.com/colinpriest/austcyberevents/pkg/content"
	"github.com/colinpriest/austcyberevents/pkg/extraction"
	"github.com/colinpriest/austcyberevents/pkg/factcheck"
	"github.com/colinpriest/austcyberevents/pkg/model"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

// RawEventStore is the narrow store dependency for marking a RawEvent
// processed once its run completes, whatever the outcome.
type RawEventStore interface {
	MarkProcessed(ctx context.Context, rawID string, processed bool, processingErr string) error
}

// EnrichedEventStore is the narrow store dependency for persisting a
// non-REJECT decision.
type EnrichedEventStore interface {
	Insert(ctx context.Context, e *model.EnrichedEvent) (string, error)
}

// ProcessingLogAppender is the narrow store dependency for per-stage
// operational logging.
type ProcessingLogAppender interface {
	Append(ctx context.Context, log *model.ProcessingLog) error
}

// Pipeline wires the five stages together with the stores each needs
// to record its outcome.
type Pipeline struct {
	acquirer   *content.Acquirer
	extractor  *extraction.Extractor
	factcheck  *factcheck.FactChecker
	aggregator *confidence.Aggregator
	dupcheck   validation.DuplicateChecker

	rawEvents      RawEventStore
	enrichedEvents EnrichedEventStore
	processingLog  ProcessingLogAppender
	auditStore     *audit.Store

	now func() time.Time
}

// New returns a Pipeline. now defaults to time.Now when nil; tests
// inject a fixed clock for deterministic date-plausibility checks.
func New(
	acquirer *content.Acquirer,
	extractor *extraction.Extractor,
	fc *factcheck.FactChecker,
	aggregator *confidence.Aggregator,
	dupcheck validation.DuplicateChecker,
	rawEvents RawEventStore,
	enrichedEvents EnrichedEventStore,
	processingLog ProcessingLogAppender,
	auditStore *audit.Store,
	now func() time.Time,
) *Pipeline {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Pipeline{
		acquirer: acquirer, extractor: extractor, factcheck: fc, aggregator: aggregator,
		dupcheck: dupcheck, rawEvents: rawEvents, enrichedEvents: enrichedEvents,
		processingLog: processingLog, auditStore: auditStore, now: now,
	}
}

// Outcome is what Run reports back to the caller driving the worker pool.
type Outcome struct {
	RawID      string
	EnrichedID string
	Decision   model.Decision
	Confidence float64
	Err        error // non-nil only for unexpected infrastructure errors (DB write failure)
}

// Run executes all five stages for raw and persists the result,
// per spec §7's disposition table.
func (p *Pipeline) Run(ctx context.Context, raw *model.RawEvent, isPDF bool) Outcome {
	started := p.now()
	run := audit.Run{RawID: raw.RawID, StartedAt: started}

	contentResult := p.acquirer.Acquire(ctx, raw.SourceURL, isPDF)
	run.Content = contentResult
	p.logStage(ctx, raw.RawID, model.StageContent, contentResult.ExtractionSuccess, contentResult.LastError)

	if !contentResult.ExtractionSuccess {
		return p.finishRejected(ctx, raw, &run, string(model.StageContent), errToString(contentResult.LastError))
	}

	extractionResult := p.extractor.Extract(ctx, extraction.Input{
		Title:             raw.Title,
		URL:               raw.SourceURL,
		PublicationDate:   contentResult.PublicationDate,
		SourceReliability: contentResult.SourceReliability,
		ArticleText:       contentResult.FullText,
	})
	run.Extraction = extractionResult
	p.logStage(ctx, raw.RawID, model.StageExtraction, !extractionResult.Sentinel, stringErr(extractionResult.Error))

	factCheckInput := factcheck.Input{
		VictimOrganization: extractionResult.Victim.OrganizationName,
		HasVictim:          extractionResult.Victim.OrganizationName != "",
		EventDate:          extractionResult.Incident.EventDate,
		HasEventDate:       extractionResult.Incident.EventDate != nil,
		AttackerName:       extractionResult.Attacker.Name,
		RecordsAffected:    extractionResult.Incident.RecordsAffected,
	}
	factCheckResult := p.factcheck.Verify(ctx, factCheckInput)
	run.FactCheck = factCheckResult
	p.logStage(ctx, raw.RawID, model.StageFactCheck, factCheckResult.ChecksFailed == 0, nil)

	validationInput := validation.Input{
		Title:                    raw.Title,
		URL:                      raw.SourceURL,
		VictimOrganization:       extractionResult.Victim.OrganizationName,
		Industry:                 extractionResult.Victim.Industry,
		Severity:                 validation.Severity(extractionResult.Incident.Severity),
		RecordsAffected:          extractionResult.Incident.RecordsAffected,
		EventDate:                extractionResult.Incident.EventDate,
		DiscoveryDate:            &started,
		IsSpecificIncident:       extractionResult.Specificity.IsSpecificIncident,
		AustralianRelevance:      extractionResult.AustralianRelevance.Score,
		AttackType:               extractionResult.Attacker.Method,
		FactCheckChecksPerformed: factCheckResult.ChecksPerformed,
		FactCheckChecksPassed:    factCheckResult.ChecksPassed,
		Now:                      started,
	}
	validationResult := validation.Validate(ctx, validationInput, p.dupcheck)
	run.Validation = &validationResult
	p.logStage(ctx, raw.RawID, model.StageValidation, validationResult.IsValid, nil)

	decision := p.aggregator.Aggregate(confidence.Input{
		ExtractionConfidence:     extractionResult.OverallConfidence,
		FactCheckConfidence:      factCheckResult.OverallVerificationConfidence,
		ValidationConfidence:     validationResult.ValidationConfidence,
		SourceReliability:        contentResult.SourceReliability,
		HasValidationError:       !validationResult.IsValid,
		ValidationWarnings:       len(validationResult.Warnings),
		IsSpecificIncident:       validationResult.IsSpecificIncident,
		AustralianRelevance:      extractionResult.AustralianRelevance.Score,
		FactCheckChecksPerformed: factCheckResult.ChecksPerformed,
		FactCheckChecksPassed:    factCheckResult.ChecksPassed,
		Title:                    raw.Title,
	})
	run.Decision = &decision
	p.logStage(ctx, raw.RawID, model.StageConfidence, true, nil)

	run.CompletedAt = p.now()

	if decision.Decision == model.DecisionReject {
		return p.finishRejected(ctx, raw, &run, "", "")
	}

	// §3 invariant: only Australian, specific incidents may become a
	// standard EnrichedEvent. The confidence penalties make this an
	// unlikely survivor already, but a non-AUTO_ACCEPT/ACCEPT_WITH_WARNING
	// combination of low-relevance, non-specific signals can still clear
	// the 0.50 threshold, so the invariant is checked explicitly here.
	if !extractionResult.Victim.IsAustralian || !validationResult.IsSpecificIncident {
		return p.finishRejected(ctx, raw, &run, string(model.StageConfidence), "not an Australian, specific incident")
	}

	enriched := &model.EnrichedEvent{
		RawID:                      raw.RawID,
		Title:                      raw.Title,
		Description:                extractionResult.Incident.Description,
		Summary:                    extractionResult.Incident.Summary,
		EventType:                  extractionResult.Incident.EventType,
		Severity:                   model.Severity(extractionResult.Incident.Severity),
		EventDate:                  extractionResult.Incident.EventDate,
		RecordsAffected:            extractionResult.Incident.RecordsAffected,
		IsAustralianEvent:          extractionResult.Victim.IsAustralian,
		IsSpecificEvent:            validationResult.IsSpecificIncident,
		ConfidenceScore:            decision.FinalConfidence,
		AustralianRelevanceScore:   extractionResult.AustralianRelevance.Score,
		AttackingEntityName:        extractionResult.Attacker.Name,
		AttackMethod:               extractionResult.Attacker.Method,
		VictimOrganizationName:     extractionResult.Victim.OrganizationName,
		VictimOrganizationIndustry: extractionResult.Victim.Industry,
		Status:                     model.StatusActive,
	}

	enrichedID, err := p.enrichedEvents.Insert(ctx, enriched)
	if err != nil {
		slog.Error("failed to persist enriched event, leaving raw event unprocessed for retry", "raw_id", raw.RawID, "error", err)
		return Outcome{RawID: raw.RawID, Err: fmt.Errorf("insert enriched event: %w", err)}
	}
	run.EnrichedID = enrichedID

	if _, err := p.auditStore.Record(ctx, run); err != nil {
		slog.Error("failed to persist audit trail", "raw_id", raw.RawID, "error", err)
	}

	if err := p.rawEvents.MarkProcessed(ctx, raw.RawID, true, ""); err != nil {
		slog.Error("failed to mark raw event processed", "raw_id", raw.RawID, "error", err)
	}

	return Outcome{RawID: raw.RawID, EnrichedID: enrichedID, Decision: decision.Decision, Confidence: decision.FinalConfidence}
}

func (p *Pipeline) finishRejected(ctx context.Context, raw *model.RawEvent, run *audit.Run, stageName, stageErr string) Outcome {
	run.StageName = stageName
	run.StageError = stageErr
	if run.CompletedAt.IsZero() {
		run.CompletedAt = p.now()
	}

	if _, err := p.auditStore.Record(ctx, *run); err != nil {
		slog.Error("failed to persist audit trail for rejected run", "raw_id", raw.RawID, "error", err)
	}

	processingErr := stageErr
	if processingErr == "" {
		processingErr = "rejected by confidence aggregation"
	}
	if err := p.rawEvents.MarkProcessed(ctx, raw.RawID, true, processingErr); err != nil {
		slog.Error("failed to mark rejected raw event processed", "raw_id", raw.RawID, "error", err)
	}

	return Outcome{RawID: raw.RawID, Decision: model.DecisionReject}
}

func (p *Pipeline) logStage(ctx context.Context, rawID string, stage model.ProcessingStage, ok bool, err error) {
	status := "ok"
	errMsg := ""
	if !ok {
		status = "failed"
	}
	if err != nil {
		errMsg = err.Error()
	}
	logErr := p.processingLog.Append(ctx, &model.ProcessingLog{
		RawID:  rawID,
		Stage:  stage,
		Status: status,
		Error:  errMsg,
	})
	if logErr != nil {
		slog.Warn("failed to append processing log", "raw_id", rawID, "stage", stage, "error", logErr)
	}
}

func errToString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func stringErr(s string) error {
	if s == "" {
		return nil
	}
	return fmt.Errorf("%s", s)
}
