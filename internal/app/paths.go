package app

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// artifacts groups the sibling output files of one run. Everything lives
// next to the workbook so a run leaves one self-contained cluster of files.
type artifacts struct {
	Workbook string
	CSV      string
	Report   string
	Manifest string
}

// deriveArtifacts returns the output file paths for a run. An explicit
// OutPath wins; otherwise the workbook name is the slugified query plus a
// timestamp under OutDir. Re-analysis runs get a "reanalysis_" prefix so
// they never overwrite the workbook they read.
func deriveArtifacts(cfg Config, query string, now time.Time) artifacts {
	workbook := strings.TrimSpace(cfg.OutPath)
	if workbook == "" {
		name := slugify(query)
		if strings.TrimSpace(cfg.ReanalyzePath) != "" {
			name = "reanalysis_" + name
		}
		name += "_" + now.Format("20060102_150405") + ".xlsx"
		dir := strings.TrimSpace(cfg.OutDir)
		if dir == "" {
			dir = "."
		}
		workbook = filepath.Join(dir, name)
	} else if !strings.EqualFold(filepath.Ext(workbook), ".xlsx") {
		workbook += ".xlsx"
	}

	stem := strings.TrimSuffix(workbook, filepath.Ext(workbook))
	return artifacts{
		Workbook: workbook,
		CSV:      stem + ".csv",
		Report:   stem + ".pdf",
		Manifest: workbook + ".manifest.json",
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify flattens a query into a filesystem-safe file stem.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "analysis"
	}
	return s
}
