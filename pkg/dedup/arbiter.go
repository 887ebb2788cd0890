package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Arbiter escalates borderline content scores to an LLM when the
// cheap signals alone cannot decide whether two candidates describe
// the same incident.
type Arbiter struct {
	search    SearchGroundedLLM
	reasoning ReasoningLLM
}

// SearchGroundedLLM is the narrow capability the arbiter needs first.
type SearchGroundedLLM interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// ReasoningLLM is the fallback capability used when no search-grounded
// client is configured.
type ReasoningLLM interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonSchema string) (string, error)
}

// NewArbiter builds an Arbiter. Either dependency may be nil; Decide
// treats a fully nil Arbiter as "cannot decide, default to not same".
func NewArbiter(search SearchGroundedLLM, reasoning ReasoningLLM) *Arbiter {
	return &Arbiter{search: search, reasoning: reasoning}
}

type arbiterVerdict struct {
	SameIncident bool   `json:"same_incident"`
	Reasoning    string `json:"reasoning"`
}

const arbiterSchema = `{
  "type": "object",
  "properties": {
    "same_incident": {"type": "boolean"},
    "reasoning": {"type": "string"}
  },
  "required": ["same_incident", "reasoning"]
}`

// Decide is invoked by Engine.IsSimilar for content scores from 0.50
// up to the scoring branch's threshold (0.60 or 0.70). A score at or
// above that threshold is accepted without consulting the arbiter, so
// the rest of the [0.50, 0.85) band never reaches Decide, and the
// verdict carries no confidence value to gate on. It tries the
// search-grounded LLM first since
// it can check current reporting; if unavailable, it falls back to the
// reasoning LLM with a conservative prompt requiring at least two
// matching anchors (organisation + date, or organisation + method)
// before confirming a match.
func (a *Arbiter) Decide(ctx context.Context, x, y Candidate) (bool, error) {
	if a.search != nil {
		raw, err := a.search.Answer(ctx, searchArbiterPrompt(x, y))
		if err != nil {
			slog.Warn("dedup arbiter: search-grounded answer failed, falling back", "error", err)
		} else {
			var v arbiterVerdict
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				return v.SameIncident, nil
			}
			slog.Warn("dedup arbiter: search-grounded response not parseable, falling back")
		}
	}

	if a.reasoning != nil {
		raw, err := a.reasoning.Complete(ctx, reasoningArbiterSystemPrompt, reasoningArbiterPrompt(x, y), arbiterSchema)
		if err != nil {
			return false, fmt.Errorf("dedup arbiter: reasoning fallback: %w", err)
		}
		var v arbiterVerdict
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return false, fmt.Errorf("dedup arbiter: reasoning response unparsable: %w", err)
		}
		return v.SameIncident, nil
	}

	return false, nil
}

func searchArbiterPrompt(x, y Candidate) string {
	return fmt.Sprintf(`Two cyber incident reports may describe the same real-world event. Use current search results to confirm.

Report A: %q — %s
Report B: %q — %s

Respond as JSON: {"same_incident": bool, "reasoning": string}`, x.Title, x.Description, y.Title, y.Description)
}

const reasoningArbiterSystemPrompt = `You decide whether two cyber incident reports describe the same real-world event. Be conservative: only answer same_incident=true when at least two independent anchors agree (e.g. the same victim organisation AND the same approximate date, or the same victim organisation AND the same attack method). If in doubt, answer false.`

func reasoningArbiterPrompt(x, y Candidate) string {
	return fmt.Sprintf(`Report A:
Title: %s
Victim: %s
Event date: %v
Attack method: %s
Description: %s

Report B:
Title: %s
Victim: %s
Event date: %v
Attack method: %s
Description: %s

Do these describe the same incident?`,
		x.Title, x.VictimOrganization, x.EventDate, x.AttackMethod, x.Description,
		y.Title, y.VictimOrganization, y.EventDate, y.AttackMethod, y.Description)
}
