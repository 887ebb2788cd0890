package config

import (
	"fmt"
	"log/slog"
)

// Validator performs comprehensive validation on loaded configuration.
// Missing provider credentials are not hard validation failures — the
// spec (§7) requires that a missing API key disables that collector
// and continues the run, so the validator only warns and lets
// pkg/collectors.ValidateConfig make the per-source decision.
type Validator struct {
	cfg *Config
}

// NewValidator returns a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every validation rule and returns the first hard
// failure, if any. Soft warnings are logged only when no hard failure
// was found.
func (v *Validator) ValidateAll() error {
	if v.cfg.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}

	if err := v.validateBatchSize(); err != nil {
		return err
	}
	if err := v.validatePipeline(); err != nil {
		return err
	}

	v.warnMissingProviders()
	return nil
}

func (v *Validator) validateBatchSize() error {
	if v.cfg.BatchSize <= 0 {
		return NewValidationError("config", "batch_size", fmt.Errorf("%w: must be positive, got %d", ErrInvalidValue, v.cfg.BatchSize))
	}
	return nil
}

func (v *Validator) validatePipeline() error {
	p := v.cfg.Pipeline
	if p == nil {
		return NewValidationError("pipeline", "", ErrMissingRequiredField)
	}

	weights := p.ConfidenceWeights
	sum := weights.Extraction + weights.FactCheck + weights.Validation + weights.SourceReliability
	if sum < 0.99 || sum > 1.01 {
		return NewValidationError("pipeline.confidence_weights", "", fmt.Errorf("%w: weights must sum to 1.0, got %.4f", ErrInvalidValue, sum))
	}

	fc := p.FactCheckWeights
	fcSum := fc.Organization + fc.Incident + fc.Attacker + fc.Records
	if fcSum < 0.99 || fcSum > 1.01 {
		return NewValidationError("pipeline.fact_check_weights", "", fmt.Errorf("%w: weights must sum to 1.0, got %.4f", ErrInvalidValue, fcSum))
	}

	if p.ConfidenceThresholds.AutoAccept <= p.ConfidenceThresholds.Reject {
		return NewValidationError("pipeline.confidence_thresholds", "", fmt.Errorf("%w: auto_accept must exceed reject", ErrInvalidValue))
	}

	if p.RecordsAffected.Min <= 0 || p.RecordsAffected.Max <= p.RecordsAffected.Min {
		return NewValidationError("pipeline.records_affected", "", fmt.Errorf("%w: min must be positive and less than max", ErrInvalidValue))
	}

	if p.Dedup.ArbiterBandLow >= p.Dedup.ArbiterBandHigh {
		return NewValidationError("pipeline.dedup", "arbiter_band", fmt.Errorf("%w: arbiter_band_low must be less than arbiter_band_high", ErrInvalidValue))
	}

	for _, w := range []struct {
		name  string
		value int
	}{
		{"discover", p.Workers.Discover},
		{"scrape", p.Workers.Scrape},
		{"enrich", p.Workers.Enrich},
		{"dedupe", p.Workers.Dedupe},
	} {
		if w.value <= 0 {
			return NewValidationError("pipeline.workers", w.name, fmt.Errorf("%w: must be positive", ErrInvalidValue))
		}
	}

	return nil
}

// warnMissingProviders logs (but does not fail) for each unset
// provider credential, matching the spec §7 disposition for
// "Configuration missing (no API key)": disable that collector,
// record, continue.
func (v *Validator) warnMissingProviders() {
	p := v.cfg.Providers
	checks := []struct {
		name string
		set  bool
	}{
		{"OPENAI_API_KEY", p.OpenAIAPIKey != ""},
		{"PERPLEXITY_API_KEY", p.PerplexityAPIKey != ""},
		{"NEWSEVENTS_PROJECT", p.NewsEventsProject != ""},
		{"WEBSEARCH_API_KEY", p.WebSearchAPIKey != ""},
		{"WEBSEARCH_CX", p.WebSearchCX != ""},
	}
	for _, c := range checks {
		if !c.set {
			slog.Warn("provider credential not configured; dependent sources will be disabled", "env_var", c.name)
		}
	}
}
