package extraction

import "time"

// IndustryCategories is the fixed, NIST-aligned industry enumeration
// the extraction prompt constrains the model to.
var IndustryCategories = []string{
	"Chemical", "Commercial Facilities", "Communications", "Critical Manufacturing",
	"Dams", "Defense Industrial Base", "Emergency Services", "Energy",
	"Financial Services", "Food and Agriculture", "Government Facilities",
	"Healthcare and Public Health", "Information Technology",
	"Nuclear Reactors Materials and Waste", "Transportation Systems",
	"Water and Wastewater Systems", "Education", "Retail", "Not-for-profit", "Other",
}

// Victim is the Stage 2 victim-identification sub-object.
type Victim struct {
	OrganizationName string
	Industry         string
	IsAustralian     bool
	Location         string
}

// Attacker is the Stage 2 attacker-attribution sub-object.
type Attacker struct {
	Name   string // "Unknown" when not determinable
	Method string
}

// Incident is the Stage 2 incident-detail sub-object.
type Incident struct {
	EventType       string
	Severity        string
	EventDate       *time.Time
	RecordsAffected *int64
	Description     string
	Summary         string
}

// AustralianRelevance is the Stage 2 Australian-relevance sub-object.
type AustralianRelevance struct {
	Score     float64
	Reasoning string
}

// Specificity is the Stage 2 specificity sub-object, derived from the
// three-question rule: can the reader name (i) which organisation,
// (ii) what attack type, (iii) approximately when?
type Specificity struct {
	IsSpecificIncident bool
	Reasoning          string
}

// MultiVictim is the Stage 2 aggregate-article sub-object.
type MultiVictim struct {
	IsMultiVictim bool
	OtherVictims  []string
}

// Result is the full Stage 2 output: the six sub-objects plus overall
// confidence and free-text notes, along with call metadata.
type Result struct {
	Victim              Victim
	Attacker             Attacker
	Incident             Incident
	AustralianRelevance  AustralianRelevance
	Specificity          Specificity
	MultiVictim          MultiVictim
	OverallConfidence    float64
	ExtractionNotes      string

	ModelName    string
	InputTokens  int
	OutputTokens int
	CompletedAt  time.Time

	// Sentinel is true when the LLM call or JSON parse failed, per
	// spec §4.4 Stage 2 failure handling: a zero-confidence sentinel
	// extraction that lets the pipeline continue to validation/REJECT
	// rather than aborting the run.
	Sentinel bool
	Error    string
}

// Input bundles the Stage 1 output needed to build the extraction prompt.
type Input struct {
	Title             string
	URL               string
	PublicationDate   *time.Time
	SourceReliability float64
	ArticleText       string
}
