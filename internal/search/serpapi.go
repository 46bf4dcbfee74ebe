package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	serpapiEndpoint  = "https://serpapi.com/search"
	serpapiPerPage   = 10
	serpapiMaxPages  = 10
	serpapiPageDelay = time.Second
)

// SerpAPI implements Provider against the SerpAPI Google endpoint. Results
// are fetched ten per page up to ten pages; a page that returns zero
// organic results ends the walk early. Page failures after the first
// successful page are not fatal, the results collected so far are returned.
type SerpAPI struct {
	APIKey     string
	BaseURL    string // defaults to the public endpoint; tests override
	HTTPClient *http.Client
	UserAgent  string
	PageDelay  time.Duration // pause between pages, 0 means the default
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("missing serpapi api key")
	}
	if limit <= 0 {
		limit = serpapiPerPage
	}

	var out []Result
	for page := 0; len(out) < limit && page < serpapiMaxPages; page++ {
		items, present, err := s.fetchPage(ctx, query, page)
		if err != nil {
			if len(out) == 0 {
				return nil, err
			}
			break
		}
		// A present-but-empty page means the engine ran out of results. A
		// missing organic_results block is treated as a fluke and the next
		// page is still tried.
		if present && len(items) == 0 {
			break
		}
		out = append(out, items...)

		if page+1 < serpapiMaxPages && len(out) < limit {
			if err := sleepCtx(ctx, s.pageDelay()); err != nil {
				break
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SerpAPI) pageDelay() time.Duration {
	if s.PageDelay > 0 {
		return s.PageDelay
	}
	return serpapiPageDelay
}

func (s *SerpAPI) fetchPage(ctx context.Context, query string, page int) (items []Result, present bool, err error) {
	base := s.BaseURL
	if base == "" {
		base = serpapiEndpoint
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, false, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("engine", "google")
	q.Set("num", strconv.Itoa(serpapiPerPage))
	q.Set("start", strconv.Itoa(page*serpapiPerPage))
	q.Set("api_key", s.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("serpapi status: %d", resp.StatusCode)
	}

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, false, err
	}
	if sr.Error != "" {
		return nil, false, fmt.Errorf("serpapi error: %s", sr.Error)
	}
	if sr.OrganicResults == nil {
		return nil, false, nil
	}

	items = make([]Result, 0, len(*sr.OrganicResults))
	for _, r := range *sr.OrganicResults {
		if r.Link == "" {
			continue
		}
		items = append(items, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     strings.TrimSpace(r.Link),
			Snippet: strings.TrimSpace(r.Snippet),
			Source:  s.Name(),
		})
	}
	return items, true, nil
}

// sleepCtx pauses between pages without outliving the context.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type serpResponse struct {
	Error          string      `json:"error"`
	OrganicResults *[]serpItem `json:"organic_results"`
}

type serpItem struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
