// Package export writes the Active DeduplicatedEvent table to a flat
// file for analyst consumption. The spec treats the export surface as
// an out-of-scope external collaborator (spec §1, "contracts only in
// §6") so this package stays to the minimum the CLI contract
// (`export --format xlsx|csv --output PATH`) actually requires: a CSV
// writer using the standard library's encoding/csv, which needs no
// third-party grounding precisely because the feature itself is a
// Non-goal.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/colinpriest/austcyberevents/pkg/model"
)

// ErrUnsupportedFormat is returned for any --format value other than
// "csv". XLSX workbook generation is explicitly out of scope (spec
// §1); wiring a real spreadsheet library would mean depending on
// something no example repo in the pack imports.
var ErrUnsupportedFormat = errors.New("export: unsupported format (only \"csv\" is implemented)")

// Source lists the rows an export writes; storage.DeduplicatedEventStore
// satisfies it structurally.
type Source interface {
	ListActive(ctx context.Context) ([]*model.DeduplicatedEvent, error)
}

var csvHeader = []string{
	"dedup_id", "title", "event_type", "severity", "event_date", "records_affected",
	"victim_organization_name", "victim_organization_industry", "attacking_entity_name",
	"attack_method", "is_australian_event", "confidence_score", "australian_relevance_score",
	"total_data_sources", "created_at",
}

// Write reads every Active DeduplicatedEvent from src and writes it to
// w in the requested format.
func Write(ctx context.Context, src Source, format string, w io.Writer) (int, error) {
	if format != "csv" {
		return 0, ErrUnsupportedFormat
	}

	events, err := src.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: list active events: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("export: write header: %w", err)
	}
	for _, e := range events {
		if err := cw.Write(row(e)); err != nil {
			return 0, fmt.Errorf("export: write row %s: %w", e.DedupID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("export: flush: %w", err)
	}
	return len(events), nil
}

func row(e *model.DeduplicatedEvent) []string {
	eventDate := ""
	if e.EventDate != nil {
		eventDate = e.EventDate.Format("2006-01-02")
	}
	recordsAffected := ""
	if e.RecordsAffected != nil {
		recordsAffected = strconv.FormatInt(*e.RecordsAffected, 10)
	}
	return []string{
		e.DedupID, e.Title, e.EventType, string(e.Severity), eventDate, recordsAffected,
		e.VictimOrganizationName, e.VictimOrganizationIndustry, e.AttackingEntityName,
		e.AttackMethod, strconv.FormatBool(e.IsAustralianEvent),
		strconv.FormatFloat(e.ConfidenceScore, 'f', 4, 64),
		strconv.FormatFloat(e.AustralianRelevanceScore, 'f', 4, 64),
		strconv.Itoa(e.TotalDataSources), e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
