package config

// DefaultBatchSize is used when BATCH_SIZE is unset or invalid.
const DefaultBatchSize = 50

// DefaultEnrichmentStrategy is used when ENRICHMENT_STRATEGY is unset.
const DefaultEnrichmentStrategy = "thorough"

// DefaultPipelineConfig returns the built-in pipeline tunables the
// spec's components default to. User-supplied pipeline.yaml is merged
// on top of this with mergo.WithOverride, so any field left zero in
// YAML keeps its built-in value.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Workers: WorkerCounts{
			Discover: 1, // discovery is typically sequential per source to respect rate limits
			Scrape:   5,
			Enrich:   4,
			Dedupe:   1,
		},
		RateLimits: map[string]RateLimit{
			"news-events":      {PerSecond: 2, PerMinute: 60},
			"llm-search":       {PerSecond: 1, PerMinute: 30},
			"web-search":       {PerSecond: 2, PerMinute: 60},
			"regulator-scrape": {PerSecond: 1, PerMinute: 20},
			"curated-list":     {PerSecond: 1, PerMinute: 20},
			"reasoning-llm":    {PerSecond: 2, PerMinute: 60},
			"search-grounded":  {PerSecond: 1, PerMinute: 30},
		},
		Retry: RetryConfig{
			MaxRetries:        3,
			BaseDelaySeconds:  0.5,
			MaxDelaySeconds:   30,
			BackoffMultiplier: 2.0,
		},
		Breaker: BreakerConfig{
			Threshold:       5,
			CooldownSeconds: 300,
		},
		ConfidenceWeights: ConfidenceWeights{
			Extraction:        0.30,
			FactCheck:         0.30,
			Validation:        0.20,
			SourceReliability: 0.20,
		},
		ConfidenceThresholds: ConfidenceThresholds{
			AutoAccept: 0.80,
			Reject:     0.50,
		},
		FactCheckWeights: FactCheckWeights{
			Organization: 0.4,
			Incident:     0.4,
			Attacker:     0.1,
			Records:      0.1,
		},
		RecordsAffected: RecordsAffectedBounds{
			Min:                  50,
			Max:                  1_000_000_000,
			InternationalCeiling: 20_000_000,
			AustralianCeiling:    30_000_000,
		},
		DomainReliability: map[string]float64{
			"cyber.gov.au":          0.95,
			"oaic.gov.au":           0.95,
			"abc.net.au":            0.90,
			"smh.com.au":            0.85,
			"theaustralian.com.au":  0.85,
			"afr.com":               0.85,
			"theguardian.com":       0.85,
			"bleepingcomputer.com":  0.90,
			"therecord.media":       0.90,
			"darkreading.com":       0.88,
			"itnews.com.au":         0.82,
			"9news.com.au":          0.75,
			"news.com.au":           0.70,
		},
		MajorInternationalOrgs: []string{
			"microsoft", "google", "amazon", "meta", "apple", "ibm", "oracle",
			"ticketmaster", "t-mobile", "at&t", "equifax", "yahoo", "marriott",
		},
		MajorAustralianOrgs: []string{
			"optus", "medibank", "latitude financial", "commonwealth bank",
			"anz", "westpac", "nab", "telstra", "qantas", "woolworths", "coles",
		},
		Dedup: DedupConfig{
			EntitySimilarityThreshold:    0.70,
			ContentScoreThreshold:        0.70,
			ContentScoreThresholdStrong:  0.60,
			StrongIndicatorGate:          0.80,
			ArbiterBandLow:               0.50,
			ArbiterBandHigh:              0.85,
			CorporateSuffixes: []string{
				"group", "ltd", "limited", "corp", "inc", "pty", "llc", "holdings",
			},
			EntityAliases: map[string]string{
				"boa":         "bank of america",
				"cba":         "commonwealth bank",
				"anz":         "australia and new zealand banking group",
				"nab":         "national australia bank",
				"westpac":     "westpac banking corporation",
				"medibank":    "medibank private",
			},
		},
	}
}
