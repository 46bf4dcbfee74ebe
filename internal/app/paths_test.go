package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDeriveArtifacts(t *testing.T) {
	now := time.Date(2025, 8, 25, 14, 30, 5, 0, time.UTC)
	p := deriveArtifacts(Config{OutDir: "out"}, "Knee Replacement Recovery", now)

	want := filepath.Join("out", "knee_replacement_recovery_20250825_143005.xlsx")
	if p.Workbook != want {
		t.Fatalf("Workbook=%q, want %q", p.Workbook, want)
	}
	stem := strings.TrimSuffix(want, ".xlsx")
	if p.CSV != stem+".csv" {
		t.Errorf("CSV=%q", p.CSV)
	}
	if p.Report != stem+".pdf" {
		t.Errorf("Report=%q", p.Report)
	}
	if p.Manifest != want+".manifest.json" {
		t.Errorf("Manifest=%q", p.Manifest)
	}
}

func TestDeriveArtifactsReanalysisPrefix(t *testing.T) {
	now := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)
	p := deriveArtifacts(Config{ReanalyzePath: "edited.xlsx"}, "knee pain", now)
	base := filepath.Base(p.Workbook)
	if !strings.HasPrefix(base, "reanalysis_knee_pain_") {
		t.Fatalf("workbook %q lacks reanalysis prefix", base)
	}
}

func TestDeriveArtifactsExplicitOut(t *testing.T) {
	now := time.Now()

	p := deriveArtifacts(Config{OutPath: "results"}, "q", now)
	if p.Workbook != "results.xlsx" {
		t.Fatalf("Workbook=%q, want extension appended", p.Workbook)
	}

	explicit := filepath.Join("dir", "r.xlsx")
	p = deriveArtifacts(Config{OutPath: explicit}, "q", now)
	if p.Workbook != explicit {
		t.Fatalf("Workbook=%q, want %q untouched", p.Workbook, explicit)
	}
	if p.CSV != filepath.Join("dir", "r.csv") {
		t.Fatalf("CSV=%q", p.CSV)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Knee Replacement", "knee_replacement"},
		{"  COVID-19 vaccine!  ", "covid_19_vaccine"},
		{"déjà vu", "d_j_vu"},
		{"", "analysis"},
		{"///", "analysis"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
