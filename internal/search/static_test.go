package search

import (
	"context"
	"strings"
	"testing"
)

func TestStaticConstructsKnownSources(t *testing.T) {
	s := &Static{}
	got, err := s.Search(context.Background(), "high blood pressure", 0)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != len(staticTemplates) {
		t.Fatalf("got %d results, want %d", len(got), len(staticTemplates))
	}
	first := got[0]
	if first.URL != "https://www.mayoclinic.org/diseases-conditions/high-blood-pressure" {
		t.Fatalf("first url = %q", first.URL)
	}
	if first.Title != "high blood pressure - www.mayoclinic.org" {
		t.Fatalf("first title = %q", first.Title)
	}
	if first.Source != "static" {
		t.Fatalf("source = %q", first.Source)
	}
	for _, r := range got {
		if strings.Contains(r.URL, " ") {
			t.Fatalf("url with unhyphenated term: %q", r.URL)
		}
	}
}

func TestStaticHonorsLimit(t *testing.T) {
	s := &Static{}
	got, err := s.Search(context.Background(), "diabetes", 3)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
}
