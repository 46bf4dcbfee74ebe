package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// staticTemplates are condition-page URL patterns on reliable medical
// sites; {term} is replaced by the hyphenated query.
var staticTemplates = []string{
	"https://www.mayoclinic.org/diseases-conditions/{term}",
	"https://www.cdc.gov/{term}",
	"https://www.nih.gov/health-information/{term}",
	"https://medlineplus.gov/{term}.html",
	"https://www.nhs.uk/conditions/{term}/",
	"https://www.healthline.com/health/{term}",
	"https://www.webmd.com/{term}",
	"https://www.clevelandclinic.org/health/{term}",
	"https://my.clevelandclinic.org/health/diseases/{term}",
	"https://www.hopkinsmedicine.org/health/conditions-and-diseases/{term}",
}

// Static constructs candidate URLs from known medical sources instead of
// querying an engine. It backs up the live provider when no API key is
// configured or a search comes back empty.
type Static struct{}

func (s *Static) Name() string { return "static" }

func (s *Static) Search(_ context.Context, query string, limit int) ([]Result, error) {
	term := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(query)), " ", "-")
	out := make([]Result, 0, len(staticTemplates))
	for _, template := range staticTemplates {
		raw := strings.ReplaceAll(template, "{term}", term)
		host := raw
		if u, err := url.Parse(raw); err == nil {
			host = u.Host
		}
		out = append(out, Result{
			Title:   fmt.Sprintf("%s - %s", query, host),
			URL:     raw,
			Snippet: fmt.Sprintf("Information about %s", query),
			Source:  s.Name(),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
