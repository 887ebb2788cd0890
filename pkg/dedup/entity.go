package dedup

import "regexp"

// titleEntityPatterns is the curated set of ~15 regexes spec §4.5 step
// 2a describes for extracting a primary entity from a title when no
// primary_entity field was recorded upstream. Each has exactly one
// capture group for the entity name.
var titleEntityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s+suffers\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+confirms\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+hit by\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+discloses\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+reports\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+admits\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+investigates\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+breached\b`),
	regexp.MustCompile(`(?i)^(.+?)\s+targeted by\b`),
	regexp.MustCompile(`(?i)^ransomware attack on (.+?)(?:[:,.]|$)`),
	regexp.MustCompile(`(?i)^data breach at (.+?)(?:[:,.]|$)`),
	regexp.MustCompile(`(?i)^cyber attack on (.+?)(?:[:,.]|$)`),
	regexp.MustCompile(`(?i)^the (.+?) hack\b`),
	regexp.MustCompile(`(?i)^(.+?) data leak\b`),
	regexp.MustCompile(`(?i)^(.+?) customers affected\b`),
}

// ExtractPrimaryEntity returns the entity named in title, using the
// curated regex set above. ok is false when no pattern matched.
func ExtractPrimaryEntity(title string) (entity string, ok bool) {
	for _, pattern := range titleEntityPatterns {
		if m := pattern.FindStringSubmatch(title); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}

// primaryEntityOf returns c's recorded primary entity if set, else
// attempts to extract one from its title.
func primaryEntityOf(c Candidate) (string, bool) {
	if c.PrimaryEntity != "" {
		return c.PrimaryEntity, true
	}
	return ExtractPrimaryEntity(c.Title)
}
