package config

// Stats summarises loaded configuration for startup logging.
type Stats struct {
	BatchSize          int
	EnrichmentStrategy string
	RateLimitedServices int
	DomainReliabilityEntries int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() Stats {
	return Stats{
		BatchSize:                c.BatchSize,
		EnrichmentStrategy:       c.EnrichmentStrategy,
		RateLimitedServices:      len(c.Pipeline.RateLimits),
		DomainReliabilityEntries: len(c.Pipeline.DomainReliability),
	}
}
