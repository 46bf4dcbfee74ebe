package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthtextlab/medread/internal/aggregate"
	"github.com/healthtextlab/medread/internal/cache"
	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/export"
	"github.com/healthtextlab/medread/internal/extract"
	"github.com/healthtextlab/medread/internal/fetch"
	"github.com/healthtextlab/medread/internal/narrative"
	"github.com/healthtextlab/medread/internal/normalize"
	"github.com/healthtextlab/medread/internal/readability"
	"github.com/healthtextlab/medread/internal/reanalyze"
	"github.com/healthtextlab/medread/internal/report"
	"github.com/healthtextlab/medread/internal/robots"
	"github.com/healthtextlab/medread/internal/search"
	"github.com/healthtextlab/medread/internal/stats"
	"github.com/healthtextlab/medread/internal/validate"
)

// ErrNoResults is returned when search yields zero URLs to analyze. Per the
// exit code policy this ends the process with a non-zero status.
var ErrNoResults = errors.New("no search results")

// scoreSpreadLimit is the inter-formula disagreement (in grade levels) above
// which a record gets an advisory warning.
const scoreSpreadLimit = 10.0

// App wires the pipeline together for one run.
type App struct {
	cfg Config
	log zerolog.Logger

	provider   search.Provider
	fetcher    *fetch.Client
	checker    *validate.Checker
	classifier *classify.Classifier
	summarizer *narrative.Summarizer
	httpCache  *cache.HTTPCache

	// Stdout receives the dry-run plan. Defaults to os.Stdout.
	Stdout io.Writer
}

// New builds the pipeline components from cfg. The logger is injected so
// library code never writes through a process-global.
func New(cfg Config, logger zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger, Stdout: os.Stdout}

	// Cache invalidation controls run before anything reads the cache.
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				logger.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				logger.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				logger.Debug().Int("entries", n).Msg("purged stale cache entries")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	httpClient := newCrawlHTTPClient()

	switch {
	case cfg.SearchFile != "":
		a.provider = &search.FileProvider{Path: cfg.SearchFile}
	case cfg.SerpAPIKey != "":
		a.provider = &search.SerpAPI{
			APIKey:     cfg.SerpAPIKey,
			HTTPClient: httpClient,
			UserAgent:  ua,
			PageDelay:  cfg.RequestDelay,
		}
	default:
		logger.Warn().Msg("no search API key configured; falling back to the curated site list")
		a.provider = &search.Static{}
	}

	var robotsMgr *robots.Manager
	if cfg.RespectRobots {
		robotsMgr = &robots.Manager{
			HTTPClient: httpClient,
			UserAgent:  ua,
			Disk:       a.httpCache,
		}
	}

	a.fetcher = &fetch.Client{
		HTTPClient:  httpClient,
		UserAgent:   ua,
		Timeout:     cfg.Timeout,
		MaxAttempts: cfg.MaxRetries,
		Limiter:     fetch.NewLimiter(cfg.RequestDelay),
		Robots:      robotsMgr,
		Cache:       a.httpCache,
		CacheMaxAge: cfg.CacheMaxAge,
	}

	a.checker = &validate.Checker{
		Cfg: validate.Config{MinWords: cfg.MinWords, MaxWords: cfg.MaxWords},
	}
	if cfg.LanguageCheck {
		a.checker.Language = validate.NewLanguageGate()
	}

	tables := classify.DefaultTables()
	if cfg.EvidencePath != "" {
		t, err := classify.LoadTables(cfg.EvidencePath)
		if err != nil {
			return nil, fmt.Errorf("load evidence tables: %w", err)
		}
		tables = t
	}
	a.classifier = classify.New(tables, cfg.ConfidenceThreshold)

	if cfg.NarrativeEnabled {
		a.summarizer = &narrative.Summarizer{
			Client: narrative.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey),
			Model:  cfg.LLMModel,
		}
	}

	return a, nil
}

// Run executes one run in the configured mode and writes the artifact
// cluster next to the workbook.
func (a *App) Run(ctx context.Context) error {
	if trim(a.cfg.ReanalyzePath) != "" {
		return a.runReanalysis(ctx)
	}
	return a.runPipeline(ctx)
}

func (a *App) runPipeline(ctx context.Context) error {
	query := trim(a.cfg.Query)

	// 1) Search
	limit := a.cfg.NumResults
	if limit <= 0 {
		limit = DefaultNumResults
	}
	a.log.Info().Str("query", query).Str("provider", a.provider.Name()).Int("limit", limit).Msg("searching")
	results, err := a.provider.Search(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	// 2) Normalize URLs, dedupe, cap. Order fixes the search rank.
	merged := aggregate.MergeAndNormalize([][]search.Result{results}, aggregate.Options{PerDomainCap: a.cfg.PerDomainCap})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	if len(merged) == 0 {
		a.log.Warn().Msg("search returned no usable URLs")
		return ErrNoResults
	}
	a.log.Info().Int("urls", len(merged)).Msg("search complete")

	paths := deriveArtifacts(a.cfg, query, time.Now())

	if a.cfg.DryRun {
		return a.printPlan(query, merged, paths)
	}

	// 3) Fetch, extract, validate, classify, and score each URL in rank
	// order. One bad page never stops the batch.
	ds := dataset.New(query)
	for i, r := range merged {
		rec := a.processOne(ctx, i+1, r)
		ds.Append(rec)
		a.log.Info().
			Int("rank", rec.Rank).
			Str("url", rec.URL).
			Str("status", string(rec.Status)).
			Str("source", rec.SourceType).
			Msg("processed")
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled: %w", err)
		}
	}

	// 4) Statistics and artifacts
	return a.finishRun(ctx, ds, paths)
}

func (a *App) runReanalysis(ctx context.Context) error {
	ds, rep, err := reanalyze.Load(a.cfg.ReanalyzePath)
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}
	for _, w := range rep.Warnings {
		a.log.Warn().Msg(w)
	}
	a.log.Info().
		Int("rows", rep.Rows).
		Int("scored", rep.ScoredRows).
		Int("recomputed_means", rep.RecomputedMeans).
		Str("query", ds.Query).
		Msg("workbook loaded")

	paths := deriveArtifacts(a.cfg, ds.Query, time.Now())

	if a.cfg.DryRun {
		w := a.stdout()
		fmt.Fprintf(w, "medread dry run (re-analysis)\n\n")
		fmt.Fprintf(w, "Input:    %s\n", a.cfg.ReanalyzePath)
		fmt.Fprintf(w, "Query:    %s\n", ds.Query)
		fmt.Fprintf(w, "Rows:     %d (%d scored)\n", rep.Rows, rep.ScoredRows)
		fmt.Fprintf(w, "Workbook: %s\n", paths.Workbook)
		fmt.Fprintf(w, "Report:   %s\n", paths.Report)
		return nil
	}

	return a.finishRun(ctx, ds, paths)
}

// processOne runs the per-document pipeline for one search result.
// Classification happens for every record regardless of fetch outcome, so
// failed pages still appear in the classification distribution.
func (a *App) processOne(ctx context.Context, rank int, sr search.Result) dataset.Record {
	rec := dataset.Record{
		Rank:   rank,
		URL:    sr.URL,
		Domain: classify.Domain(sr.URL),
		Title:  sr.Title,
	}
	a.analyzeContent(ctx, &rec)

	cls := a.classifier.Classify(rec.URL, rec.Title)
	rec.SourceType = cls.Label
	rec.Confidence = cls.Confidence
	return rec
}

// analyzeContent fetches one URL and fills the record's terminal status,
// text measurements, and readability scores.
func (a *App) analyzeContent(ctx context.Context, rec *dataset.Record) {
	res := a.fetcher.Fetch(ctx, rec.URL)
	if res.FromCache {
		a.log.Debug().Str("url", rec.URL).Msg("served from cache")
	}
	if res.Status != dataset.StatusSuccess {
		rec.Status = res.Status
		if res.Reason != "" {
			rec.Warnings = append(rec.Warnings, res.Reason)
		}
		return
	}

	doc, err := extract.Prepare(res.Body)
	if err != nil {
		rec.Status = dataset.StatusExtractionFailed
		rec.Warnings = append(rec.Warnings, err.Error())
		return
	}
	if t := doc.Title(); t != "" {
		rec.Title = t
	}

	minWords := a.cfg.MinWords
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	content, err := doc.MainContent(minWords)
	if err != nil {
		rec.Status = dataset.StatusExtractionFailed
		rec.Warnings = append(rec.Warnings, err.Error())
		return
	}

	text := normalize.Clean(content.Text)
	verdict := a.checker.Check(text)
	rec.WordCount = verdict.WordCount
	rec.SentenceCount = verdict.SentenceCount
	rec.Warnings = append(rec.Warnings, verdict.Warnings...)
	if !verdict.OK {
		rec.Status = verdict.Status
		if verdict.Reason != "" {
			rec.Warnings = append(rec.Warnings, verdict.Reason)
		}
		return
	}

	rec.Status = dataset.StatusSuccess
	rec.ExtractedText = text

	scores, ok := readability.Score(text, minWords)
	if !ok {
		return
	}
	rec.GFI = scores.GFI
	rec.SMOG = scores.SMOG
	rec.FKG = scores.FKG
	rec.ARI = scores.ARI
	rec.MeanReadability = scores.Mean
	if spread, ok := readability.Spread(scores.GFI, scores.SMOG, scores.FKG, scores.ARI); ok && spread > scoreSpreadLimit {
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("readability formulas disagree by %.1f grade levels", spread))
	}
}

// finishRun carries a populated dataset through statistics, the optional
// narrative, and the artifact cluster. Workbook and report failures are
// fatal; the manifest sidecar and narrative are best-effort.
func (a *App) finishRun(ctx context.Context, ds *dataset.Dataset, paths artifacts) error {
	an := stats.Analyze(ds, a.cfg.Alpha)
	for metric, msg := range an.Failures {
		a.log.Warn().Str("metric", metric).Str("reason", msg).Msg("comparison skipped")
	}

	var summary string
	if a.summarizer != nil {
		text, err := a.summarizer.Summarize(ctx, ds, an)
		if err != nil {
			a.log.Warn().Err(err).Msg("narrative summary failed; continuing without it")
		} else {
			summary = text
		}
	}

	if dir := filepath.Dir(paths.Workbook); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := export.Workbook(paths.Workbook, ds, an, summary); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	if err := export.CSV(paths.CSV, ds); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	if err := report.Summary(paths.Report, ds, an, summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := writeManifest(paths.Manifest, buildManifest(ds, an, paths)); err != nil {
		a.log.Warn().Err(err).Msg("manifest sidecar not written")
	}

	var significant []string
	for _, metric := range dataset.MetricColumns {
		if comp, ok := an.Comparisons[metric]; ok && comp.Significant {
			significant = append(significant, metric)
		}
	}
	a.log.Info().
		Int("documents", ds.Len()).
		Int("successful", ds.CountStatus(dataset.StatusSuccess)).
		Int("institutional", ds.CountSource(classify.Institutional)).
		Int("private", ds.CountSource(classify.Private)).
		Strs("significant", significant).
		Str("workbook", paths.Workbook).
		Str("report", paths.Report).
		Msg("run complete")
	return nil
}

// printPlan writes the would-be work of a run without fetching anything.
func (a *App) printPlan(query string, merged []search.Result, paths artifacts) error {
	w := a.stdout()
	fmt.Fprintf(w, "medread dry run\n\n")
	fmt.Fprintf(w, "Query:    %s\n", query)
	fmt.Fprintf(w, "Provider: %s\n", a.provider.Name())
	fmt.Fprintf(w, "URLs:     %d\n", len(merged))
	fmt.Fprintf(w, "Workbook: %s\n", paths.Workbook)
	fmt.Fprintf(w, "Report:   %s\n\n", paths.Report)
	for i, r := range merged {
		fmt.Fprintf(w, "%3d. %s\n", i+1, r.URL)
	}
	return nil
}

func (a *App) stdout() io.Writer {
	if a.Stdout != nil {
		return a.Stdout
	}
	return os.Stdout
}
