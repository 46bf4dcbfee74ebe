package classify

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Tables holds the three evidence tiers. The lists are data, not behavior:
// curating them changes what counts as institutional without touching the
// scoring algorithm.
type Tables struct {
	Domains  []string `yaml:"domains"`
	Patterns []string `yaml:"url_patterns"`
	Keywords []string `yaml:"title_keywords"`
}

// DefaultTables returns the curated evidence lists: government and academic
// suffixes plus the major health institutions, the URL path segments those
// institutions use, and the names and acronyms they publish under.
func DefaultTables() Tables {
	return Tables{
		Domains: []string{
			".gov", ".gov.uk", ".gov.au", ".gov.ca",
			".edu", ".ac.uk", ".ac.au", ".edu.au",
			".nhs.uk", ".nhs.net",
			"who.int", "cdc.gov", "nih.gov",
			"mayoclinic.org", "clevelandclinic.org",
			"hopkinsmedicine.org", "webmd.com",
			"healthline.com", "medlineplus.gov",
		},
		Patterns: []string{
			"/government/", "/health/official/",
			"/public-health/", "/medical-center/",
			"university", "college", "hospital",
		},
		Keywords: []string{
			"National Institutes", "Centers for Disease",
			"National Health Service", "Mayo Clinic",
			"Cleveland Clinic", "Johns Hopkins",
			"CDC", "NIH", "NHS", "WHO",
		},
	}
}

// LoadTables reads evidence tables from a YAML file. Missing sections fall
// back to the defaults so a file can override just one tier.
func LoadTables(path string) (Tables, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read evidence tables: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Tables{}, fmt.Errorf("parse evidence tables: %w", err)
	}
	def := DefaultTables()
	if len(t.Domains) == 0 {
		t.Domains = def.Domains
	}
	if len(t.Patterns) == 0 {
		t.Patterns = def.Patterns
	}
	if len(t.Keywords) == 0 {
		t.Keywords = def.Keywords
	}
	return t, nil
}
