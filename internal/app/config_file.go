package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
	Query string `yaml:"query" json:"query"`

	Search struct {
		APIKey    string `yaml:"apiKey" json:"apiKey"`
		File      string `yaml:"file" json:"file"`
		Results   int    `yaml:"results" json:"results"`
		PerDomain int    `yaml:"perDomain" json:"perDomain"`
	} `yaml:"search" json:"search"`

	Fetch struct {
		UserAgent     string        `yaml:"userAgent" json:"userAgent"`
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		MaxRetries    int           `yaml:"maxRetries" json:"maxRetries"`
		RequestDelay  time.Duration `yaml:"requestDelay" json:"requestDelay"`
		RespectRobots bool          `yaml:"respectRobots" json:"respectRobots"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Validate struct {
		MinWords      int  `yaml:"minWords" json:"minWords"`
		MaxWords      int  `yaml:"maxWords" json:"maxWords"`
		LanguageCheck bool `yaml:"languageCheck" json:"languageCheck"`
	} `yaml:"validate" json:"validate"`

	Classify struct {
		Evidence  string `yaml:"evidence" json:"evidence"`
		Threshold int    `yaml:"threshold" json:"threshold"`
	} `yaml:"classify" json:"classify"`

	Stats struct {
		Alpha float64 `yaml:"alpha" json:"alpha"`
	} `yaml:"stats" json:"stats"`

	Narrative struct {
		Enable  bool   `yaml:"enable" json:"enable"`
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"narrative" json:"narrative"`

	Output struct {
		Dir  string `yaml:"dir" json:"dir"`
		Path string `yaml:"path" json:"path"`
	} `yaml:"output" json:"output"`

	Verbose bool `yaml:"verbose" json:"verbose"`
	Quiet   bool `yaml:"quiet" json:"quiet"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default. Flags should already
// have been parsed; this function lets file config supply defaults while
// preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}

	if cfg.Query == "" && fc.Query != "" {
		cfg.Query = fc.Query
	}

	if cfg.SerpAPIKey == "" && fc.Search.APIKey != "" {
		cfg.SerpAPIKey = fc.Search.APIKey
	}
	if cfg.SearchFile == "" && fc.Search.File != "" {
		cfg.SearchFile = fc.Search.File
	}
	if (cfg.NumResults == 0 || cfg.NumResults == DefaultNumResults) && fc.Search.Results > 0 {
		cfg.NumResults = fc.Search.Results
	}
	if cfg.PerDomainCap == 0 && fc.Search.PerDomain > 0 {
		cfg.PerDomainCap = fc.Search.PerDomain
	}

	if (cfg.UserAgent == "" || cfg.UserAgent == DefaultUserAgent) && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if (cfg.Timeout == 0 || cfg.Timeout == DefaultTimeout) && fc.Fetch.Timeout > 0 {
		cfg.Timeout = fc.Fetch.Timeout
	}
	if (cfg.MaxRetries == 0 || cfg.MaxRetries == DefaultMaxRetries) && fc.Fetch.MaxRetries > 0 {
		cfg.MaxRetries = fc.Fetch.MaxRetries
	}
	if (cfg.RequestDelay == 0 || cfg.RequestDelay == DefaultRequestDelay) && fc.Fetch.RequestDelay > 0 {
		cfg.RequestDelay = fc.Fetch.RequestDelay
	}
	if !cfg.RespectRobots && fc.Fetch.RespectRobots {
		cfg.RespectRobots = true
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}

	if (cfg.MinWords == 0 || cfg.MinWords == DefaultMinWords) && fc.Validate.MinWords > 0 {
		cfg.MinWords = fc.Validate.MinWords
	}
	if (cfg.MaxWords == 0 || cfg.MaxWords == DefaultMaxWords) && fc.Validate.MaxWords > 0 {
		cfg.MaxWords = fc.Validate.MaxWords
	}
	if !cfg.LanguageCheck && fc.Validate.LanguageCheck {
		cfg.LanguageCheck = true
	}

	if cfg.EvidencePath == "" && fc.Classify.Evidence != "" {
		cfg.EvidencePath = fc.Classify.Evidence
	}
	if (cfg.ConfidenceThreshold == 0 || cfg.ConfidenceThreshold == DefaultThreshold) && fc.Classify.Threshold > 0 {
		cfg.ConfidenceThreshold = fc.Classify.Threshold
	}

	if (cfg.Alpha == 0 || cfg.Alpha == DefaultAlpha) && fc.Stats.Alpha > 0 && fc.Stats.Alpha < 1 {
		cfg.Alpha = fc.Stats.Alpha
	}

	if !cfg.NarrativeEnabled && fc.Narrative.Enable {
		cfg.NarrativeEnabled = true
	}
	if cfg.LLMBaseURL == "" && fc.Narrative.BaseURL != "" {
		cfg.LLMBaseURL = fc.Narrative.BaseURL
	}
	if cfg.LLMModel == "" && fc.Narrative.Model != "" {
		cfg.LLMModel = fc.Narrative.Model
	}
	if cfg.LLMAPIKey == "" && fc.Narrative.APIKey != "" {
		cfg.LLMAPIKey = fc.Narrative.APIKey
	}

	if cfg.OutDir == "" && fc.Output.Dir != "" {
		cfg.OutDir = fc.Output.Dir
	}
	if cfg.OutPath == "" && fc.Output.Path != "" {
		cfg.OutPath = fc.Output.Path
	}

	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if !cfg.Quiet && fc.Quiet {
		cfg.Quiet = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	query := trim(cfg.Query)
	reanalyze := trim(cfg.ReanalyzePath)
	if query == "" && reanalyze == "" {
		return errors.New("config: a search query or a workbook to re-analyze is required")
	}
	if query != "" && reanalyze != "" {
		return errors.New("config: query and reanalyze are mutually exclusive")
	}
	if cfg.NumResults < 0 {
		return errors.New("config: negative result count is not allowed")
	}
	if cfg.PerDomainCap < 0 || cfg.MaxRetries < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Timeout < 0 || cfg.RequestDelay < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if cfg.Alpha < 0 || cfg.Alpha >= 1 {
		return errors.New("config: significance level must be in (0,1)")
	}
	if cfg.MinWords > 0 && cfg.MaxWords > 0 && cfg.MaxWords <= cfg.MinWords {
		return errors.New("config: max words must exceed min words")
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 6 {
		return errors.New("config: confidence threshold must be in 0..6")
	}
	if cfg.NarrativeEnabled && trim(cfg.LLMModel) == "" {
		return errors.New("config: narrative.model is required (or set MEDREAD_LLM_MODEL)")
	}
	if cfg.Verbose && cfg.Quiet {
		return errors.New("config: verbose and quiet are mutually exclusive")
	}
	return nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
