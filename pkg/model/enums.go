package model

// SourceType identifies which collector produced a RawEvent.
type SourceType string

const (
	SourceNewsEvents      SourceType = "NewsEvents"
	SourceLLMSearch       SourceType = "LLMSearch"
	SourceWebSearch       SourceType = "WebSearch"
	SourceRegulatorScrape SourceType = "RegulatorScrape"
	SourceCuratedList     SourceType = "CuratedList"
	SourceResearchQuery   SourceType = "ResearchQuery"
)

// IsValid reports whether s is one of the recognised source types.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceNewsEvents, SourceLLMSearch, SourceWebSearch, SourceRegulatorScrape, SourceCuratedList, SourceResearchQuery:
		return true
	default:
		return false
	}
}

// Severity is the assessed impact level of an incident.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityUnknown  Severity = "Unknown"
)

// EventStatus is the lifecycle state of an EnrichedEvent.
type EventStatus string

const (
	StatusActive     EventStatus = "Active"
	StatusSuperseded EventStatus = "Superseded"
	StatusRejected   EventStatus = "Rejected"
)

// Decision is the terminal verdict of the enrichment pipeline for one RawEvent.
type Decision string

const (
	DecisionAutoAccept        Decision = "AUTO_ACCEPT"
	DecisionAcceptWithWarning Decision = "ACCEPT_WITH_WARNING"
	DecisionReject            Decision = "REJECT"
)

// EntityType classifies a named Entity.
type EntityType string

const (
	EntityGovernment   EntityType = "government"
	EntityBusiness     EntityType = "business"
	EntityNotForProfit EntityType = "not-for-profit"
	EntityIndividual   EntityType = "individual"
	EntityThreatActor  EntityType = "threat-actor"
	EntityOther        EntityType = "other"
)

// ContributionType classifies a RawEvent/EnrichedEvent's role within a
// deduplication group.
type ContributionType string

const (
	ContributionPrimary    ContributionType = "primary"
	ContributionSupporting ContributionType = "supporting"
	ContributionDuplicate  ContributionType = "duplicate"
)

// RelationshipType classifies how an Entity relates to an EnrichedEvent.
type RelationshipType string

const (
	RelationshipVictim    RelationshipType = "victim"
	RelationshipAttacker  RelationshipType = "attacker"
	RelationshipAffected  RelationshipType = "affected"
	RelationshipMentioned RelationshipType = "mentioned"
)

// ProcessingStage identifies which pipeline stage produced a ProcessingLog row.
type ProcessingStage string

const (
	StageDiscovery  ProcessingStage = "discovery"
	StageContent    ProcessingStage = "content"
	StageExtraction ProcessingStage = "extraction"
	StageFactCheck  ProcessingStage = "factcheck"
	StageValidation ProcessingStage = "validation"
	StageConfidence ProcessingStage = "confidence"
	StageDedup      ProcessingStage = "dedup"
)
