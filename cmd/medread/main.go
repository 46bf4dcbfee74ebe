package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthtextlab/medread/internal/app"
)

func main() {
	// Logging setup: console writer to stderr, library code gets the logger
	// injected rather than reaching for a global.
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	var (
		cfg         app.Config
		configPath  string
		envFile     string
		showVersion bool
	)

	flag.StringVar(&cfg.Query, "query", "", "Search query, e.g. 'knee replacement recovery'")
	flag.StringVar(&cfg.ReanalyzePath, "reanalyze", "", "Re-run statistics on a previously exported (possibly edited) workbook")
	flag.IntVar(&cfg.NumResults, "n", 0, "Number of search results to analyze (default 100)")
	flag.StringVar(&cfg.OutPath, "out", "", "Workbook output path; CSV, PDF and manifest are written alongside")
	flag.StringVar(&cfg.OutDir, "out.dir", "", "Output directory for derived file names (default .)")
	flag.StringVar(&configPath, "config", "", "Path to YAML or JSON config file")
	flag.StringVar(&envFile, "env", ".env", "Path to dotenv file loaded before reading the environment")
	flag.StringVar(&cfg.SerpAPIKey, "search.key", "", "SerpAPI key (or SERPAPI_KEY); without one, the curated site fallback is used")
	flag.StringVar(&cfg.SearchFile, "search.file", "", "Path to JSON file for the offline file-based search provider")
	flag.IntVar(&cfg.PerDomainCap, "search.perDomain", 0, "Maximum results kept per domain (0 disables the cap)")
	flag.StringVar(&cfg.UserAgent, "fetch.ua", "", "Custom User-Agent for outgoing requests")
	flag.DurationVar(&cfg.Timeout, "fetch.timeout", 0, "Per-request timeout (default 30s)")
	flag.IntVar(&cfg.MaxRetries, "fetch.retries", 0, "Attempts per URL including the first (default 3)")
	flag.DurationVar(&cfg.RequestDelay, "fetch.delay", 0, "Minimum delay between requests (default 1s)")
	flag.BoolVar(&cfg.RespectRobots, "respect-robots", false, "Honor robots.txt; disallowed URLs are recorded, not fetched")
	flag.StringVar(&cfg.CacheDir, "cache.dir", "", "On-disk HTTP cache directory (empty disables caching)")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age before cache entries are purged (e.g. 24h); 0 disables")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
	flag.IntVar(&cfg.MinWords, "validate.minWords", 0, "Minimum words for usable page text (default 50)")
	flag.IntVar(&cfg.MaxWords, "validate.maxWords", 0, "Maximum words before a page is rejected as a dump (default 50000)")
	flag.BoolVar(&cfg.LanguageCheck, "validate.language", false, "Warn when page text does not look like English")
	flag.StringVar(&cfg.EvidencePath, "evidence", "", "YAML file overriding the classifier evidence tables")
	flag.IntVar(&cfg.ConfidenceThreshold, "classify.threshold", 0, "Evidence score at which a source counts as institutional (default 3)")
	flag.Float64Var(&cfg.Alpha, "stats.alpha", 0, "Significance level for hypothesis tests (default 0.05)")
	flag.BoolVar(&cfg.NarrativeEnabled, "narrative", false, "Draft a plain-language findings summary via an OpenAI-compatible endpoint")
	flag.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL (or OPENAI_BASE_URL)")
	flag.StringVar(&cfg.LLMModel, "llm.model", "", "Model name for the narrative summary")
	flag.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the narrative endpoint (or OPENAI_API_KEY)")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Search and plan without fetching or writing artifacts")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Debug logging")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "Warnings and errors only")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(versionString())
		return
	}

	// Precedence: flags > config file > environment. The file overlay only
	// fills fields still at their flag default; env fills what remains.
	if err := app.LoadEnvFiles(envFile); err != nil {
		logger.Error().Err(err).Str("path", envFile).Msg("dotenv load failed")
		os.Exit(2)
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			logger.Error().Err(err).Str("path", configPath).Msg("config file load failed")
			os.Exit(2)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)
	applyDefaults(&cfg)

	if err := app.ValidateConfig(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: medread -query <topic> | medread -reanalyze <workbook.xlsx>")
		os.Exit(2)
	}

	logger = logger.Level(logLevel(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config, logger zerolog.Logger) error {
	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}

// applyDefaults fills fields no flag, file, or env value set. Flags register
// zero defaults so the overlays can tell "unset" from "explicit".
func applyDefaults(cfg *app.Config) {
	if cfg.NumResults == 0 {
		cfg.NumResults = app.DefaultNumResults
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = app.DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = app.DefaultMaxRetries
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = app.DefaultRequestDelay
	}
	if cfg.MinWords == 0 {
		cfg.MinWords = app.DefaultMinWords
	}
	if cfg.MaxWords == 0 {
		cfg.MaxWords = app.DefaultMaxWords
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = app.DefaultThreshold
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = app.DefaultAlpha
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = app.DefaultUserAgent
	}
}

func logLevel(cfg app.Config) zerolog.Level {
	switch {
	case cfg.Verbose:
		return zerolog.DebugLevel
	case cfg.Quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func versionString() string {
	s := "medread " + app.BuildVersion
	if app.BuildCommit != "" {
		s += " (" + app.BuildCommit + ")"
	}
	if app.BuildDate != "" {
		s += " built " + app.BuildDate
	}
	return s
}
