package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"DATABASE_URL", "BATCH_SIZE", "ENRICHMENT_STRATEGY",
		"OPENAI_API_KEY", "PERPLEXITY_API_KEY", "NEWSEVENTS_PROJECT",
		"NEWSEVENTS_CREDENTIALS", "WEBSEARCH_API_KEY", "WEBSEARCH_CX",
	} {
		t.Setenv(v, "")
	}
}

func TestInitializeAppliesDefaultsWithoutYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///tmp/events.db")

	cfg, err := Initialize(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultEnrichmentStrategy, cfg.EnrichmentStrategy)
	assert.Equal(t, 5, cfg.Pipeline.Workers.Scrape)
	assert.Equal(t, 0.80, cfg.Pipeline.ConfidenceThresholds.AutoAccept)
}

func TestInitializeFailsWithoutDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Initialize(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestInitializeMergesUserPipelineYAMLOverBuiltins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///tmp/events.db")

	dir := t.TempDir()
	yaml := `
pipeline:
  workers:
    discover: 1
    scrape: 9
    enrich: 4
    dedupe: 1
  confidence_thresholds:
    auto_accept: 0.85
    reject: 0.50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.yaml"), []byte(yaml), 0o600))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Pipeline.Workers.Scrape)
	assert.Equal(t, 0.85, cfg.Pipeline.ConfidenceThresholds.AutoAccept)
	// Untouched sections still carry their built-in defaults.
	assert.Equal(t, 0.30, cfg.Pipeline.ConfidenceWeights.Extraction)
}

func TestInitializeExpandsEnvVarsInYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///tmp/events.db")
	t.Setenv("SCRAPE_WORKERS", "7")

	dir := t.TempDir()
	yaml := `
pipeline:
  workers:
    discover: 1
    scrape: ${SCRAPE_WORKERS}
    enrich: 4
    dedupe: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.yaml"), []byte(yaml), 0o600))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.Workers.Scrape)
}

func TestInitializeRejectsMalformedConfidenceWeights(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///tmp/events.db")

	dir := t.TempDir()
	yaml := `
pipeline:
  confidence_weights:
    extraction: 0.5
    fact_check: 0.5
    validation: 0.5
    source_reliability: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.yaml"), []byte(yaml), 0o600))

	_, err := Initialize(context.Background(), dir)
	assert.Error(t, err)
}
