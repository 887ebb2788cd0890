package dedup

import (
	"context"
	"log/slog"
	"strings"
)

// Threshold defaults mirror config.DefaultPipelineConfig's Dedup block
// (pkg/config/defaults.go) so the engine behaves sensibly out of the
// box; an orchestrator wiring a loaded pipeline.yaml would substitute
// its own values the same way pkg/confidence and pkg/validation take
// their spec-default constants today.
const (
	entityGateThreshold = 0.70
	arbiterLowBand      = 0.50
	arbiterHighBand     = 0.85
)

// Engine groups Candidates that describe the same real-world incident.
type Engine struct {
	arbiter *Arbiter
}

// NewEngine builds an Engine. arbiter may be nil, in which case
// borderline content scores default to "not the same incident".
func NewEngine(arbiter *Arbiter) *Engine {
	return &Engine{arbiter: arbiter}
}

// IsSimilar implements spec §4.5 step 2's full decision chain: entity
// gate, generic-summary detector, different-incident detector,
// weighted content score, and arbiter escalation for borderline
// scores.
func (e *Engine) IsSimilar(ctx context.Context, a, b Candidate) bool {
	entityA, okA := primaryEntityOf(a)
	entityB, okB := primaryEntityOf(b)
	if okA && okB {
		if EntitySimilarity(entityA, entityB) < entityGateThreshold {
			return false
		}
	} else if a.VictimOrganization != "" && b.VictimOrganization != "" {
		if EntitySimilarity(a.VictimOrganization, b.VictimOrganization) < entityGateThreshold {
			return false
		}
	}

	if isGenericSummaryPair(a, b) {
		return false
	}

	if isDifferentIncident(a, b) {
		return false
	}

	identicalTitles := strings.EqualFold(strings.TrimSpace(a.Title), strings.TrimSpace(b.Title))
	score, threshold := contentScore(a, b, identicalTitles)

	switch {
	case score >= arbiterHighBand:
		return true
	case score < arbiterLowBand:
		return false
	case score >= threshold:
		return true
	case score >= arbiterLowBand:
		if e.arbiter == nil {
			return false
		}
		same, err := e.arbiter.Decide(ctx, a, b)
		if err != nil {
			slog.Warn("dedup: arbiter decision failed, defaulting to not-same", "error", err)
			return false
		}
		return same
	default:
		return false
	}
}

// GroupCandidates forms groups via the linear O(n^2) sweep spec §4.5
// step 1 describes: each ungrouped candidate seeds a new group, and
// every later ungrouped candidate that IsSimilar to ANY current member
// joins it.
func (e *Engine) GroupCandidates(ctx context.Context, candidates []Candidate) []Group {
	assigned := make([]bool, len(candidates))
	var groups []Group

	for i := range candidates {
		if assigned[i] {
			continue
		}
		group := Group{Members: []Candidate{candidates[i]}}
		assigned[i] = true

		for j := i + 1; j < len(candidates); j++ {
			if assigned[j] {
				continue
			}
			matched := false
			for _, member := range group.Members {
				if e.IsSimilar(ctx, member, candidates[j]) {
					matched = true
					break
				}
			}
			if matched {
				group.Members = append(group.Members, candidates[j])
				assigned[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}
