// Package extraction implements Stage 2 (Primary Extraction, C6) of
// the enrichment pipeline: a single constrained-schema call to a
// reasoning LLM that turns article text into the six structured
// sub-objects the rest of the pipeline consumes.
package extraction

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

// Extractor performs Stage 2 extraction via an injected ReasoningLLM.
type Extractor struct {
	llm             capability.ReasoningLLM
	modelName       string
	articleCharBudget int
}

// NewExtractor returns an Extractor backed by llm. modelName is recorded
// in the audit trail for operator visibility; it is not sent to the LLM
// (the llm implementation owns its own model selection).
func NewExtractor(llm capability.ReasoningLLM, modelName string) *Extractor {
	return &Extractor{llm: llm, modelName: modelName, articleCharBudget: defaultArticleCharBudget}
}

// wireResult mirrors the JSON shape the model is instructed to return.
type wireResult struct {
	Victim struct {
		OrganizationName string `json:"organization_name"`
		Industry         string `json:"industry"`
		IsAustralian     bool   `json:"is_australian"`
		Location         string `json:"location"`
	} `json:"victim"`
	Attacker struct {
		Name   string `json:"name"`
		Method string `json:"method"`
	} `json:"attacker"`
	Incident struct {
		EventType       string `json:"event_type"`
		Severity        string `json:"severity"`
		EventDate       string `json:"event_date"`
		RecordsAffected *int64 `json:"records_affected"`
		Description     string `json:"description"`
		Summary         string `json:"summary"`
	} `json:"incident"`
	AustralianRelevance struct {
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	} `json:"australian_relevance"`
	Specificity struct {
		IsSpecificIncident bool   `json:"is_specific_incident"`
		Reasoning          string `json:"reasoning"`
	} `json:"specificity"`
	MultiVictim struct {
		IsMultiVictim bool     `json:"is_multi_victim"`
		OtherVictims  []string `json:"other_victims"`
	} `json:"multi_victim"`
	OverallConfidence float64 `json:"overall_confidence"`
	ExtractionNotes   string  `json:"extraction_notes"`
}

// Extract runs Stage 2 against in. On an LLM call error or an
// unparsable response it returns a sentinel zero-confidence Result
// rather than an error, per spec §4.4 Stage 2 failure handling: the
// pipeline must continue to validation, which will drive the final
// decision to REJECT.
func (e *Extractor) Extract(ctx context.Context, in Input) *Result {
	userPrompt := BuildUserPrompt(in, e.articleCharBudget)

	raw, err := e.llm.Complete(ctx, systemPrompt, userPrompt, jsonSchema)
	if err != nil {
		slog.Warn("extraction LLM call failed, returning sentinel", "url", in.URL, "error", err)
		return sentinel(e.modelName, err.Error())
	}

	var w wireResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		slog.Warn("extraction response was not valid JSON, returning sentinel", "url", in.URL, "error", err)
		return sentinel(e.modelName, err.Error())
	}

	result := &Result{
		Victim: Victim{
			OrganizationName: w.Victim.OrganizationName,
			Industry:         w.Victim.Industry,
			IsAustralian:     w.Victim.IsAustralian,
			Location:         w.Victim.Location,
		},
		Attacker: Attacker{Name: w.Attacker.Name, Method: w.Attacker.Method},
		Incident: Incident{
			EventType:   w.Incident.EventType,
			Severity:    w.Incident.Severity,
			Description: w.Incident.Description,
			Summary:     w.Incident.Summary,
		},
		AustralianRelevance: AustralianRelevance{Score: w.AustralianRelevance.Score, Reasoning: w.AustralianRelevance.Reasoning},
		Specificity:         Specificity{IsSpecificIncident: w.Specificity.IsSpecificIncident, Reasoning: w.Specificity.Reasoning},
		MultiVictim:         MultiVictim{IsMultiVictim: w.MultiVictim.IsMultiVictim, OtherVictims: w.MultiVictim.OtherVictims},
		OverallConfidence:   w.OverallConfidence,
		ExtractionNotes:     w.ExtractionNotes,
		ModelName:           e.modelName,
		CompletedAt:         time.Now().UTC(),
	}

	if w.Incident.EventDate != "" {
		if t, err := time.Parse("2006-01-02", w.Incident.EventDate); err == nil {
			result.Incident.EventDate = &t
		}
	}

	if w.Incident.RecordsAffected != nil {
		result.Incident.RecordsAffected = validation.RecordsAffected(*w.Incident.RecordsAffected, in.Title)
	}

	return result
}

func sentinel(modelName, errMsg string) *Result {
	return &Result{
		ModelName:         modelName,
		OverallConfidence: 0,
		CompletedAt:       time.Now().UTC(),
		Sentinel:          true,
		Error:             errMsg,
	}
}
