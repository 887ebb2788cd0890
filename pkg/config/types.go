package config

// Config is the umbrella configuration object returned by Initialize
// and threaded explicitly through cmd/austcyberevents into every
// collaborator — there is no package-level singleton (per the
// "no ambient singletons" design note).
type Config struct {
	configDir string

	// DatabaseURL is a sqlite path or sqlite:// URL (spec §6).
	DatabaseURL string
	// BatchSize is read from BATCH_SIZE, must be positive, and is
	// logged at startup; no orchestrator phase reads it, so phases do
	// not bound how many RawEvents they pull by this value.
	BatchSize int
	// EnrichmentStrategy is read from ENRICHMENT_STRATEGY and logged at
	// startup; no pipeline stage reads it, so every run performs all
	// applicable fact-check verifications whatever its value.
	EnrichmentStrategy string

	Providers Providers
	Pipeline  *PipelineConfig
}

// Providers holds the environment-sourced credentials for every
// external capability the core consumes (spec §6). A missing key
// disables that source for the run rather than failing startup — see
// pkg/config/validator.go.
type Providers struct {
	OpenAIAPIKey          string
	PerplexityAPIKey      string
	NewsEventsProject     string
	NewsEventsCredentials string
	WebSearchAPIKey       string
	WebSearchCX           string
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// RateLimit is the per-service admission cap read from pipeline.yaml.
type RateLimit struct {
	PerSecond int `yaml:"per_second"`
	PerMinute int `yaml:"per_minute"`
}

// RetryConfig mirrors pkg/resilience.RetryConfig in YAML-friendly form.
type RetryConfig struct {
	MaxRetries        int     `yaml:"max_retries"`
	BaseDelaySeconds  float64 `yaml:"base_delay_seconds"`
	MaxDelaySeconds   float64 `yaml:"max_delay_seconds"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// BreakerConfig mirrors pkg/resilience.BreakerConfig in YAML-friendly
// form.
type BreakerConfig struct {
	Threshold       int     `yaml:"threshold"`
	CooldownSeconds float64 `yaml:"cooldown_seconds"`
}

// WorkerCounts bounds concurrency per orchestrator phase (spec §4.6,
// §5).
type WorkerCounts struct {
	Discover int `yaml:"discover"`
	Scrape   int `yaml:"scrape"`
	Enrich   int `yaml:"enrich"`
	Dedupe   int `yaml:"dedupe"`
}

// ConfidenceWeights are the §4.4 Stage-5 aggregation weights.
type ConfidenceWeights struct {
	Extraction       float64 `yaml:"extraction"`
	FactCheck        float64 `yaml:"fact_check"`
	Validation       float64 `yaml:"validation"`
	SourceReliability float64 `yaml:"source_reliability"`
}

// ConfidenceThresholds are the §4.4 Stage-5 decision boundaries.
type ConfidenceThresholds struct {
	AutoAccept float64 `yaml:"auto_accept"`
	Reject     float64 `yaml:"reject"`
}

// FactCheckWeights are the §4.4 Stage-3 weighted-average weights.
type FactCheckWeights struct {
	Organization float64 `yaml:"organization"`
	Incident     float64 `yaml:"incident"`
	Attacker     float64 `yaml:"attacker"`
	Records      float64 `yaml:"records"`
}

// RecordsAffectedBounds are the §4.4.4 acceptance bounds.
type RecordsAffectedBounds struct {
	Min                int64 `yaml:"min"`
	Max                int64 `yaml:"max"`
	InternationalCeiling int64 `yaml:"international_ceiling"`
	AustralianCeiling  int64 `yaml:"australian_ceiling"`
}

// DedupConfig configures the entity gate and scoring thresholds of the
// deduplication engine (spec §4.5).
type DedupConfig struct {
	EntitySimilarityThreshold  float64           `yaml:"entity_similarity_threshold"`
	ContentScoreThreshold      float64           `yaml:"content_score_threshold"`
	ContentScoreThresholdStrong float64          `yaml:"content_score_threshold_strong"`
	StrongIndicatorGate        float64           `yaml:"strong_indicator_gate"`
	ArbiterBandLow             float64           `yaml:"arbiter_band_low"`
	ArbiterBandHigh            float64           `yaml:"arbiter_band_high"`
	CorporateSuffixes          []string          `yaml:"corporate_suffixes"`
	EntityAliases              map[string]string `yaml:"entity_aliases"`
}

// PipelineConfig holds every non-secret tunable the enrichment and
// deduplication stages need: thresholds, worker counts, rate limits,
// circuit-breaker parameters, and the domain-credibility/major-org
// reference tables. Loaded from pipeline.yaml, merged over
// DefaultPipelineConfig.
type PipelineConfig struct {
	Workers          WorkerCounts          `yaml:"workers"`
	RateLimits       map[string]RateLimit  `yaml:"rate_limits"`
	Retry            RetryConfig           `yaml:"retry"`
	Breaker          BreakerConfig         `yaml:"breaker"`
	ConfidenceWeights ConfidenceWeights    `yaml:"confidence_weights"`
	ConfidenceThresholds ConfidenceThresholds `yaml:"confidence_thresholds"`
	FactCheckWeights FactCheckWeights      `yaml:"fact_check_weights"`
	RecordsAffected  RecordsAffectedBounds `yaml:"records_affected"`
	DomainReliability map[string]float64   `yaml:"domain_reliability"`
	MajorInternationalOrgs []string        `yaml:"major_international_orgs"`
	MajorAustralianOrgs    []string        `yaml:"major_australian_orgs"`
	Dedup            DedupConfig           `yaml:"dedup"`
}
