package app

import "time"

// Config holds runtime configuration for one run.
type Config struct {
	// Mode: exactly one of Query (full pipeline) or ReanalyzePath
	// (re-analysis of an exported workbook) is set.
	Query         string
	ReanalyzePath string

	// Search
	SerpAPIKey   string
	SearchFile   string
	NumResults   int
	PerDomainCap int

	// Fetching
	UserAgent     string
	Timeout       time.Duration
	MaxRetries    int
	RequestDelay  time.Duration
	RespectRobots bool

	// Cache
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	// Validation
	MinWords      int
	MaxWords      int
	LanguageCheck bool

	// Classification
	EvidencePath        string
	ConfidenceThreshold int

	// Statistics
	Alpha float64

	// Narrative
	NarrativeEnabled bool
	LLMBaseURL       string
	LLMModel         string
	LLMAPIKey        string

	// Output
	OutDir  string
	OutPath string

	// Behavior
	DryRun  bool
	Verbose bool
	Quiet   bool
}

// Flag defaults, shared with the file overlay so "left at default" can be
// told apart from "explicitly set".
const (
	DefaultNumResults   = 100
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRequestDelay = time.Second
	DefaultMinWords     = 50
	DefaultMaxWords     = 50000
	DefaultThreshold    = 3
	DefaultAlpha        = 0.05
	DefaultUserAgent    = "medread/1.0 (+https://github.com/healthtextlab/medread)"
)
