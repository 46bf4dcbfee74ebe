package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.SerpAPIKey == "" {
		// Support both MEDREAD_SERPAPI_KEY and the provider's conventional
		// SERPAPI_KEY; prefer the namespaced one if set.
		v := os.Getenv("MEDREAD_SERPAPI_KEY")
		if v == "" {
			v = os.Getenv("SERPAPI_KEY")
		}
		cfg.SerpAPIKey = v
	}

	if cfg.LLMBaseURL == "" {
		v := os.Getenv("MEDREAD_LLM_BASE_URL")
		if v == "" {
			v = os.Getenv("OPENAI_BASE_URL")
		}
		cfg.LLMBaseURL = v
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("MEDREAD_LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		v := os.Getenv("MEDREAD_LLM_API_KEY")
		if v == "" {
			v = os.Getenv("OPENAI_API_KEY")
		}
		cfg.LLMAPIKey = v
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("MEDREAD_CACHE_DIR")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = os.Getenv("MEDREAD_OUT_DIR")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv("MEDREAD_USER_AGENT")
	}
	if cfg.EvidencePath == "" {
		cfg.EvidencePath = os.Getenv("MEDREAD_EVIDENCE")
	}

	setInt := func(dst *int, envKey string) {
		if *dst != 0 {
			return
		}
		if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				*dst = n
			}
		}
	}
	setInt(&cfg.NumResults, "MEDREAD_NUM_RESULTS")
	setInt(&cfg.PerDomainCap, "MEDREAD_PER_DOMAIN")
	setInt(&cfg.MinWords, "MEDREAD_MIN_WORDS")
	setInt(&cfg.MaxWords, "MEDREAD_MAX_WORDS")
	setInt(&cfg.ConfidenceThreshold, "MEDREAD_CONFIDENCE_THRESHOLD")
	setInt(&cfg.MaxRetries, "MEDREAD_MAX_RETRIES")

	setDuration := func(dst *time.Duration, envKey string) {
		if *dst != 0 {
			return
		}
		if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDuration(&cfg.Timeout, "MEDREAD_TIMEOUT")
	setDuration(&cfg.RequestDelay, "MEDREAD_REQUEST_DELAY")
	setDuration(&cfg.CacheMaxAge, "MEDREAD_CACHE_MAX_AGE")

	if cfg.Alpha == 0 {
		if s := strings.TrimSpace(os.Getenv("MEDREAD_ALPHA")); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f < 1 {
				cfg.Alpha = f
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			if s == "1" || s == "true" || s == "yes" || s == "on" {
				*dst = true
			}
		}
	}
	setBool(&cfg.RespectRobots, "MEDREAD_RESPECT_ROBOTS")
	setBool(&cfg.LanguageCheck, "MEDREAD_LANGUAGE_CHECK")
	setBool(&cfg.NarrativeEnabled, "MEDREAD_NARRATIVE")
	setBool(&cfg.CacheClear, "MEDREAD_CACHE_CLEAR")
	setBool(&cfg.DryRun, "MEDREAD_DRY_RUN")
	setBool(&cfg.Verbose, "MEDREAD_VERBOSE")
	setBool(&cfg.Quiet, "MEDREAD_QUIET")
}
