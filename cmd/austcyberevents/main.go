// austcyberevents drives the Australian cyber-security incident
// corpus pipeline: discovery, scraping, enrichment, deduplication,
// historical backfill, and the records-affected repair job, plus a
// read-only progress server. The CLI itself is an out-of-scope thin
// collaborator (spec §1) — every operation it wires lives in
// pkg/orchestrator.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/colinpriest/austcyberevents/pkg/audit"
	"github.com/colinpriest/austcyberevents/pkg/capability"
	"github.com/colinpriest/austcyberevents/pkg/capability/httpimpl"
	"github.com/colinpriest/austcyberevents/pkg/collectors"
	"github.com/colinpriest/austcyberevents/pkg/confidence"
	"github.com/colinpriest/austcyberevents/pkg/config"
	"github.com/colinpriest/austcyberevents/pkg/content"
	"github.com/colinpriest/austcyberevents/pkg/dedup"
	"github.com/colinpriest/austcyberevents/pkg/entity"
	"github.com/colinpriest/austcyberevents/pkg/export"
	"github.com/colinpriest/austcyberevents/pkg/extraction"
	"github.com/colinpriest/austcyberevents/pkg/factcheck"
	"github.com/colinpriest/austcyberevents/pkg/orchestrator"
	"github.com/colinpriest/austcyberevents/pkg/pipeline"
	"github.com/colinpriest/austcyberevents/pkg/ratelimit"
	"github.com/colinpriest/austcyberevents/pkg/resilience"
	"github.com/colinpriest/austcyberevents/pkg/storage"
	"github.com/colinpriest/austcyberevents/pkg/validation"
)

// Exit codes per spec §6.
const (
	exitOK            = 0
	exitRecoverable   = 1
	exitConfiguration = 2
	exitInterrupted   = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitConfiguration
	}

	configDir := getEnv("CONFIG_DIR", "./deploy/config")
	if p := firstFlagValue(args, "--config-dir"); p != "" {
		configDir = p
	}
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil {
		slog.Warn("no .env file loaded", "config_dir", configDir, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		slog.Error("configuration failed", "error", err)
		return exitConfiguration
	}

	app, err := wire(ctx, cfg)
	if err != nil {
		slog.Error("failed to wire application", "error", err)
		return exitConfiguration
	}
	defer app.db.Close()

	cmd, rest := args[0], args[1:]
	code, err := app.dispatch(ctx, cmd, rest)
	if ctx.Err() != nil {
		return exitInterrupted
	}
	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
	}
	return code
}

func usage() {
	fmt.Fprintln(os.Stderr, `austcyberevents <command> [flags]

Commands:
  discover  --start YYYY-MM-DD --end YYYY-MM-DD [--max-events N]
  scrape    [--limit N]
  enrich    [--limit N]
  dedupe
  backfill  --start-month YYYY-MM --end-month YYYY-MM [--priority-only]
  fix-records [--apply]
  export    --format csv --output PATH
  serve     [--port 8080] [--backfill-cron "0 3 * * *"]`)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// firstFlagValue does a best-effort pre-scan for --config-dir, which
// must be known before flag.NewFlagSet is built per-subcommand.
func firstFlagValue(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(a, name+"=") {
			return strings.TrimPrefix(a, name+"=")
		}
	}
	return ""
}

// app bundles every wired collaborator a subcommand might need.
type app struct {
	cfg *config.Config
	db  *sql.DB

	rawEvents     *storage.RawEventStore
	enrichedStore *storage.EnrichedEventStore
	dedupStore    *storage.DeduplicatedEventStore
	entityStore   *storage.EntityStore
	monthLedger   *storage.MonthProcessedStore

	sources  []collectors.Collector
	fetch    capability.HttpFetch
	extract  capability.MainContentExtract
	pipeline *pipeline.Pipeline
	entities *entity.Enricher

	dedupEngine *dedup.Engine
	dedupWriter *dedup.Store

	fc         *factcheck.FactChecker
	aggregator *confidence.Aggregator
	dupcheck   validation.DuplicateChecker

	status *orchestrator.StatusReporter
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) (int, error) {
	switch cmd {
	case "discover":
		return a.runDiscover(ctx, args)
	case "scrape":
		return a.runScrape(ctx, args)
	case "enrich":
		return a.runEnrich(ctx, args)
	case "dedupe":
		return a.runDedupe(ctx, args)
	case "backfill":
		return a.runBackfill(ctx, args)
	case "fix-records":
		return a.runFixRecords(ctx, args)
	case "export":
		return a.runExport(ctx, args)
	case "serve":
		return a.runServe(ctx, args)
	default:
		usage()
		return exitConfiguration, fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) runDiscover(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	start := fs.String("start", "", "discovery window start (YYYY-MM-DD)")
	end := fs.String("end", "", "discovery window end (YYYY-MM-DD)")
	maxEvents := fs.Int("max-events", 0, "stop after this many discovered events (0 = unbounded)")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	startDate, endDate, err := parseDateWindow(*start, *end)
	if err != nil {
		return exitConfiguration, err
	}

	progress := orchestrator.Discover(ctx, a.sources, a.rawEvents, orchestrator.DiscoverOptions{
		Start: startDate, End: endDate, MaxEvents: *maxEvents, WorkerCount: a.cfg.Pipeline.Workers.Discover,
	})
	slog.Info("discover complete", "discovered", progress.Discovered, "errors", progress.Errors)
	return exitCodeFor(progress), nil
}

func (a *app) runScrape(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	limit := fs.Int("limit", 0, "max raw events to scrape this run")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	progress := orchestrator.Scrape(ctx, a.fetch, a.extract, a.rawEvents, orchestrator.ScrapeOptions{
		Limit: *limit, WorkerCount: a.cfg.Pipeline.Workers.Scrape,
	})
	slog.Info("scrape complete", "scraped", progress.Scraped, "rejected", progress.Rejected, "errors", progress.Errors)
	return exitCodeFor(progress), nil
}

func (a *app) runEnrich(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	limit := fs.Int("limit", 0, "max raw events to enrich this run")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	progress := orchestrator.Enrich(ctx, a.pipeline, a.rawEvents, a.enrichedStore, a.entities, orchestrator.EnrichOptions{
		Limit: *limit, WorkerCount: a.cfg.Pipeline.Workers.Enrich,
	})
	slog.Info("enrich complete", "enriched", progress.Enriched, "rejected", progress.Rejected, "errors", progress.Errors)
	return exitCodeFor(progress), nil
}

func (a *app) runDedupe(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("dedupe", flag.ContinueOnError)
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	progress := orchestrator.Dedupe(ctx, a.dedupEngine, a.dedupWriter, a.enrichedStore, a.rawEvents)
	slog.Info("dedupe complete", "merged_members", progress.Enriched, "errors", progress.Errors)
	return exitCodeFor(progress), nil
}

func (a *app) runBackfill(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("backfill", flag.ContinueOnError)
	startMonth := fs.String("start-month", "", "backfill window start (YYYY-MM)")
	endMonth := fs.String("end-month", "", "backfill window end (YYYY-MM)")
	priorityOnly := fs.Bool("priority-only", false, "restrict perplexity re-verification to placeholder event dates")
	perplexity := fs.Bool("perplexity", false, "re-run fact-check/validation/confidence only, skipping discover/scrape/enrich")
	limit := fs.Int("limit", 0, "max events for --perplexity mode")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	if *perplexity {
		progress := orchestrator.PerplexityBackfill(ctx, a.fc, a.aggregator, a.dupcheck, a.enrichedStore, orchestrator.PerplexityBackfillOptions{
			Limit: *limit, PriorityOnly: *priorityOnly, WorkerCount: a.cfg.Pipeline.Workers.Enrich,
		})
		slog.Info("perplexity backfill complete", "reverified", progress.Enriched, "errors", progress.Errors)
		return exitCodeFor(progress), nil
	}

	start, end, err := parseMonthWindow(*startMonth, *endMonth)
	if err != nil {
		return exitConfiguration, err
	}

	progress := orchestrator.MonthBackfill(ctx, a.sources, a.fetch, a.extract, a.pipeline,
		a.rawEvents, a.rawEvents, a.monthLedger, orchestrator.MonthBackfillOptions{
			StartMonth: start, EndMonth: end, WorkerCount: a.cfg.Pipeline.Workers.Discover,
		})
	slog.Info("month backfill complete", "discovered", progress.Discovered, "scraped", progress.Scraped, "enriched", progress.Enriched, "errors", progress.Errors)
	return exitCodeFor(progress), nil
}

func (a *app) runFixRecords(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("fix-records", flag.ContinueOnError)
	apply := fs.Bool("apply", false, "write corrections instead of only reporting them")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	adjustments, err := orchestrator.FixRecords(ctx, a.dedupStore, *apply)
	if err != nil {
		return exitRecoverable, err
	}
	for _, adj := range adjustments {
		slog.Info("records_affected rejected on re-check", "dedup_id", adj.DedupID, "title", adj.Title, "original", adj.Original, "applied", *apply)
	}
	slog.Info("fix-records complete", "adjustments", len(adjustments), "applied", *apply)
	return exitOK, nil
}

func (a *app) runExport(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "csv", "export format (csv)")
	output := fs.String("output", "", "output file path")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}
	if *output == "" {
		return exitConfiguration, fmt.Errorf("--output is required")
	}

	f, err := os.Create(*output)
	if err != nil {
		return exitRecoverable, fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	n, err := export.Write(ctx, a.dedupStore, *format, f)
	if err != nil {
		return exitRecoverable, err
	}
	slog.Info("export complete", "rows", n, "output", *output, "format", *format)
	return exitOK, nil
}

func (a *app) runServe(ctx context.Context, args []string) (int, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", 8080, "health/status server port")
	backfillCron := fs.String("backfill-cron", "", "optional cron expression scheduling a nightly MonthBackfill of the trailing month")
	configDir(fs)
	if err := fs.Parse(args); err != nil {
		return exitConfiguration, err
	}

	var scheduler *cron.Cron
	if *backfillCron != "" {
		scheduler = cron.New()
		a.status.Start("scheduled-backfill")
		if _, err := scheduler.AddFunc(*backfillCron, func() {
			now := time.Now().UTC()
			progress := orchestrator.MonthBackfill(ctx, a.sources, a.fetch, a.extract, a.pipeline,
				a.rawEvents, a.rawEvents, a.monthLedger,
				orchestrator.MonthBackfillOptions{
					StartMonth: now.AddDate(0, -1, 0), EndMonth: now, WorkerCount: a.cfg.Pipeline.Workers.Discover,
				})
			a.status.Update(progress)
		}); err != nil {
			return exitConfiguration, fmt.Errorf("invalid --backfill-cron expression: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	gin.SetMode(getEnv("GIN_MODE", "release"))
	router := orchestrator.Router(a.status)
	addr := ":" + strconv.Itoa(*port)
	slog.Info("serving health/status", "addr", addr)

	errc := make(chan error, 1)
	go func() { errc <- router.Run(addr) }()

	select {
	case <-ctx.Done():
		return exitInterrupted, nil
	case err := <-errc:
		return exitRecoverable, err
	}
}

// configDir registers the --config-dir flag on every subcommand's
// FlagSet purely so `-h` output is consistent; the value itself was
// already consumed by firstFlagValue before config.Initialize ran.
func configDir(fs *flag.FlagSet) {
	fs.String("config-dir", "", "configuration directory (read before subcommand flags)")
}

func exitCodeFor(p orchestrator.Progress) int {
	if p.Errors > 0 {
		return exitRecoverable
	}
	return exitOK
}

func parseDateWindow(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end are required (YYYY-MM-DD)")
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
	}
	return s, e, nil
}

func parseMonthWindow(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start-month and --end-month are required (YYYY-MM)")
	}
	s, err := time.Parse("2006-01", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start-month: %w", err)
	}
	e, err := time.Parse("2006-01", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end-month: %w", err)
	}
	return s, e, nil
}

// wire constructs every collaborator the subcommands share. A provider
// with no credentials configured is left as a nil capability, which
// disables the collector/feature that depends on it for this run
// rather than failing startup (spec §6).
func wire(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB := db

	rawEvents := storage.NewRawEventStore(sqlDB)
	enrichedEvents := storage.NewEnrichedEventStore(sqlDB)
	dedupStore := storage.NewDeduplicatedEventStore(sqlDB)
	entityStore := storage.NewEntityStore(sqlDB)
	monthLedger := storage.NewMonthProcessedStore(sqlDB)
	processingLog := storage.NewProcessingLogStore(sqlDB)
	auditTrail := storage.NewAuditTrailStore(sqlDB)

	limiter := ratelimit.NewRegistry()
	for service, l := range cfg.Pipeline.RateLimits {
		limiter.SetLimit(service, l.PerMinute, l.PerSecond)
	}
	retrier := resilience.NewRetrier(resilience.RetryConfig{
		MaxRetries:        cfg.Pipeline.Retry.MaxRetries,
		BaseDelay:         secondsToDuration(cfg.Pipeline.Retry.BaseDelaySeconds),
		MaxDelay:          secondsToDuration(cfg.Pipeline.Retry.MaxDelaySeconds),
		BackoffMultiplier: cfg.Pipeline.Retry.BackoffMultiplier,
	})
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Threshold: cfg.Pipeline.Breaker.Threshold,
		Cooldown:  secondsToDuration(cfg.Pipeline.Breaker.CooldownSeconds),
	})
	decorator := resilience.NewDecorator(retrier, breaker)
	retryFunc := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return decorator.Call(ctx, "reasoning-llm", fn)
	}

	fetch := httpimpl.NewFetcher()
	mainContent := httpimpl.NewMainContentExtractor()
	domFallback := httpimpl.NewDOMFallbackExtractor()
	pdf := httpimpl.NewPDFExtractor()
	articleParser := httpimpl.NewArticleParser()

	var reasoning capability.ReasoningLLM
	if cfg.Providers.OpenAIAPIKey != "" {
		reasoning = httpimpl.NewReasoningClient(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), cfg.Providers.OpenAIAPIKey, getEnv("OPENAI_MODEL", "gpt-4o-mini"))
	}
	var searchGrounded capability.SearchGroundedLLM
	if cfg.Providers.PerplexityAPIKey != "" {
		searchGrounded = httpimpl.NewSearchGroundedClient(getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"), cfg.Providers.PerplexityAPIKey, getEnv("PERPLEXITY_MODEL", "sonar"))
	}
	var webSearch capability.WebSearch
	if cfg.Providers.WebSearchAPIKey != "" && cfg.Providers.WebSearchCX != "" {
		webSearch = httpimpl.NewWebSearchClient(cfg.Providers.WebSearchAPIKey, cfg.Providers.WebSearchCX)
	}
	var newsEvents capability.NewsEventsQuery
	if cfg.Providers.NewsEventsProject != "" {
		newsEvents = httpimpl.NewNewsEventsClient(getEnv("NEWSEVENTS_BASE_URL", "https://api.gdeltproject.org/api/v2/doc/doc"), cfg.Providers.NewsEventsProject)
	}
	var browser capability.HeadlessBrowserFetch
	if browserURL := os.Getenv("HEADLESS_BROWSER_URL"); browserURL != "" {
		browser = httpimpl.NewHeadlessBrowserClient(browserURL)
	}

	sources := buildCollectors(fetch, newsEvents, webSearch, reasoning, decorator, limiter)

	acquirer := content.NewAcquirer(fetch, articleParser, mainContent, domFallback, pdf, browser, 30*time.Second)
	extractor := extraction.NewExtractor(reasoning, getEnv("OPENAI_MODEL", "gpt-4o-mini"))
	fc := factcheck.NewFactChecker(searchGrounded, retryFunc)
	aggregator := confidence.NewAggregator()
	dupcheck := enrichedEvents

	auditStore := audit.NewStore(auditTrail)
	p := pipeline.New(acquirer, extractor, fc, aggregator, dupcheck, rawEvents, enrichedEvents, processingLog, auditStore, nil)

	entities := entity.NewEnricher(entityStore, reasoning, retryFunc)

	arbiter := dedup.NewArbiter(searchGrounded, reasoning)
	engine := dedup.NewEngine(arbiter)
	dedupWriter := dedup.NewStore(dedupStore)

	return &app{
		cfg: cfg, db: db,
		rawEvents: rawEvents, enrichedStore: enrichedEvents, dedupStore: dedupStore,
		entityStore: entityStore, monthLedger: monthLedger,
		sources: sources, fetch: fetch, extract: mainContent, pipeline: p, entities: entities,
		dedupEngine: engine, dedupWriter: dedupWriter,
		fc: fc, aggregator: aggregator, dupcheck: dupcheck,
		status: orchestrator.NewStatusReporter(),
	}, nil
}

func buildCollectors(
	fetch capability.HttpFetch,
	newsEvents capability.NewsEventsQuery,
	webSearch capability.WebSearch,
	reasoning capability.ReasoningLLM,
	decorator *resilience.Decorator,
	limiter *ratelimit.Registry,
) []collectors.Collector {
	oaic := collectors.NewOAICNoticeLister()

	return []collectors.Collector{
		collectors.NewNewsEventsCollector(newsEvents, decorator, limiter),
		collectors.NewWebSearchCollector(webSearch, decorator, limiter),
		collectors.NewLLMSearchCollector(reasoning, decorator, limiter),
		collectors.NewRegulatorScrapeCollector(fetch, oaic, oaic,
			getEnv("OAIC_LISTING_URL", "https://www.oaic.gov.au/privacy/notifiable-data-breaches/notifiable-data-breaches-statistics"),
			oaicSourceType, decorator, limiter),
		collectors.NewCuratedListScrapeCollector(fetch, collectors.NewWebberInsuranceLister(), httpimpl.NewArticleParser(),
			getEnv("WEBBER_INSURANCE_URL", "https://www.webberinsurance.com.au/data-breaches-list"),
			curatedListSourceType, decorator, limiter),
	}
}

const (
	oaicSourceType        = "RegulatorScrape"
	curatedListSourceType = "CuratedList"
)

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
