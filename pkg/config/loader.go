package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// pipelineYAML is the on-disk shape of pipeline.yaml. All fields are
// optional; anything left unset keeps its DefaultPipelineConfig value.
type pipelineYAML struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Load pipeline.yaml from configDir (if present).
//  2. Merge built-in pipeline defaults with the user-supplied YAML.
//  3. Read provider credentials and DATABASE_URL/BATCH_SIZE/
//     ENRICHMENT_STRATEGY from the environment.
//  4. Validate all configuration.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized successfully",
		"batch_size", stats.BatchSize,
		"enrichment_strategy", stats.EnrichmentStrategy,
		"rate_limited_services", stats.RateLimitedServices,
		"domain_reliability_entries", stats.DomainReliabilityEntries)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	userPipeline, err := loader.loadPipelineYAML()
	if err != nil {
		return nil, NewLoadError("pipeline.yaml", err)
	}

	pipeline := DefaultPipelineConfig()
	if err := mergo.Merge(pipeline, userPipeline, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge pipeline config: %w", err)
	}

	return &Config{
		configDir:          configDir,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		BatchSize:          resolveBatchSize(),
		EnrichmentStrategy: resolveEnrichmentStrategy(),
		Providers: Providers{
			OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
			PerplexityAPIKey:      os.Getenv("PERPLEXITY_API_KEY"),
			NewsEventsProject:     os.Getenv("NEWSEVENTS_PROJECT"),
			NewsEventsCredentials: os.Getenv("NEWSEVENTS_CREDENTIALS"),
			WebSearchAPIKey:       os.Getenv("WEBSEARCH_API_KEY"),
			WebSearchCX:           os.Getenv("WEBSEARCH_CX"),
		},
		Pipeline: pipeline,
	}, nil
}

func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadPipelineYAML() (*PipelineConfig, error) {
	path := filepath.Join(l.configDir, "pipeline.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PipelineConfig{}, nil
		}
		return nil, err
	}

	data = ExpandEnv(data)

	var wrapper pipelineYAML
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &wrapper.Pipeline, nil
}

func resolveBatchSize() int {
	raw := os.Getenv("BATCH_SIZE")
	if raw == "" {
		return DefaultBatchSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid BATCH_SIZE, using default", "value", raw, "default", DefaultBatchSize)
		return DefaultBatchSize
	}
	return n
}

func resolveEnrichmentStrategy() string {
	if raw := os.Getenv("ENRICHMENT_STRATEGY"); raw != "" {
		return raw
	}
	return DefaultEnrichmentStrategy
}
