package extraction

import (
	"fmt"
	"strings"
)

// defaultArticleCharBudget is the "first N characters" the spec
// requires presenting to the model (typically 8,000).
const defaultArticleCharBudget = 8000

const systemPrompt = `You are a cyber-incident analyst extracting structured facts from a news article about a possible Australian cyber security incident. Return ONLY a single strict JSON object matching the schema described. Do not include markdown fences or commentary outside the JSON.

Negative examples — do NOT extract as the victim organisation:
(a) organisations mentioned only for background context;
(b) organisations that are clients of a breached vendor, not the breached party itself;
(c) generic descriptors such as "an Australian healthcare provider" with no named entity;
(d) people mentioned only as expert commentators.

Title-prioritisation rule: if the article is an aggregate post discussing several incidents, prefer the organisation named in the title over organisations named only in the body.

Specificity rule: set is_specific_incident to true only if a reader could answer all three: (i) which organisation, (ii) what attack type, (iii) approximately when.

records_affected rule: the integer MUST represent people/accounts, never transactions, dollars, or bytes. Parse units correctly ("6 million" -> 6000000, not 6). Reject values outside [50, 1000000000] by omitting the field (null) rather than guessing.

Use exactly one of these industry categories: ` + industryEnumList() + `.`

func industryEnumList() string {
	return strings.Join(IndustryCategories, ", ")
}

// BuildUserPrompt assembles the Stage 2 user prompt from in, truncating
// article text to charBudget characters (0 uses the spec default).
func BuildUserPrompt(in Input, charBudget int) string {
	if charBudget <= 0 {
		charBudget = defaultArticleCharBudget
	}
	text := in.ArticleText
	if len(text) > charBudget {
		text = text[:charBudget]
	}

	pubDate := "unknown"
	if in.PublicationDate != nil {
		pubDate = in.PublicationDate.Format("2006-01-02")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "URL: %s\n", in.URL)
	fmt.Fprintf(&b, "Publication date: %s\n", pubDate)
	fmt.Fprintf(&b, "Source reliability: %.2f\n", in.SourceReliability)
	b.WriteString("Article text:\n")
	b.WriteString(text)
	return b.String()
}

// jsonSchema is passed to capability.ReasoningLLM.Complete to request
// the six-sub-object response shape.
const jsonSchema = `{
  "type": "object",
  "properties": {
    "victim": {"type": "object", "properties": {
      "organization_name": {"type": "string"}, "industry": {"type": "string"},
      "is_australian": {"type": "boolean"}, "location": {"type": "string"}}},
    "attacker": {"type": "object", "properties": {
      "name": {"type": "string"}, "method": {"type": "string"}}},
    "incident": {"type": "object", "properties": {
      "event_type": {"type": "string"}, "severity": {"type": "string"},
      "event_date": {"type": "string"}, "records_affected": {"type": ["integer", "null"]},
      "description": {"type": "string"}, "summary": {"type": "string"}}},
    "australian_relevance": {"type": "object", "properties": {
      "score": {"type": "number"}, "reasoning": {"type": "string"}}},
    "specificity": {"type": "object", "properties": {
      "is_specific_incident": {"type": "boolean"}, "reasoning": {"type": "string"}}},
    "multi_victim": {"type": "object", "properties": {
      "is_multi_victim": {"type": "boolean"}, "other_victims": {"type": "array", "items": {"type": "string"}}}},
    "overall_confidence": {"type": "number"},
    "extraction_notes": {"type": "string"}
  },
  "required": ["victim", "attacker", "incident", "australian_relevance", "specificity", "multi_victim", "overall_confidence"]
}`
