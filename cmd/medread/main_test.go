package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/healthtextlab/medread/internal/app"
)

// Smoke test: a dry run against the offline file provider plans without
// touching the network or writing artifacts.
func TestRunDryRunWithFileProvider(t *testing.T) {
	dir := t.TempDir()
	resultsPath := filepath.Join(dir, "results.json")
	results := `[
		{"title": "Knee replacement recovery timeline", "url": "https://example.org/knee", "snippet": "recovery after surgery"},
		{"title": "Knee replacement exercises", "url": "https://example.com/exercises", "snippet": "knee replacement rehab"}
	]`
	if err := os.WriteFile(resultsPath, []byte(results), 0o644); err != nil {
		t.Fatalf("write results: %v", err)
	}

	cfg := app.Config{
		Query:      "knee replacement",
		SearchFile: resultsPath,
		OutDir:     dir,
		DryRun:     true,
	}
	applyDefaults(&cfg)

	if err := run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	// Dry runs must not leave artifacts behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".xlsx") || strings.HasSuffix(e.Name(), ".pdf") {
			t.Fatalf("dry run wrote artifact %s", e.Name())
		}
	}
}

func TestRunReanalyzeMissingWorkbook(t *testing.T) {
	cfg := app.Config{ReanalyzePath: filepath.Join(t.TempDir(), "absent.xlsx")}
	applyDefaults(&cfg)
	if err := run(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for a missing workbook")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg app.Config
	applyDefaults(&cfg)
	if cfg.NumResults != app.DefaultNumResults {
		t.Errorf("NumResults=%d, want %d", cfg.NumResults, app.DefaultNumResults)
	}
	if cfg.Timeout != app.DefaultTimeout {
		t.Errorf("Timeout=%v, want %v", cfg.Timeout, app.DefaultTimeout)
	}
	if cfg.Alpha != app.DefaultAlpha {
		t.Errorf("Alpha=%v, want %v", cfg.Alpha, app.DefaultAlpha)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent left empty")
	}

	explicit := app.Config{NumResults: 10, Alpha: 0.01}
	applyDefaults(&explicit)
	if explicit.NumResults != 10 || explicit.Alpha != 0.01 {
		t.Errorf("explicit values overridden: %+v", explicit)
	}
}

func TestLogLevel(t *testing.T) {
	if got := logLevel(app.Config{Verbose: true}); got != zerolog.DebugLevel {
		t.Errorf("verbose level = %v", got)
	}
	if got := logLevel(app.Config{Quiet: true}); got != zerolog.WarnLevel {
		t.Errorf("quiet level = %v", got)
	}
	if got := logLevel(app.Config{}); got != zerolog.InfoLevel {
		t.Errorf("default level = %v", got)
	}
}

func TestVersionString(t *testing.T) {
	if !strings.HasPrefix(versionString(), "medread ") {
		t.Errorf("versionString() = %q", versionString())
	}
}
