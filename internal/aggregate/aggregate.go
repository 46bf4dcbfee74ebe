// Package aggregate turns raw provider hits into the ordered URL list the
// pipeline walks. Order in equals rank out: the first surviving result is
// rank 1.
package aggregate

import (
	"net/url"
	"strings"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/search"
)

// Options tune the merge. The zero value keeps every deduplicated result.
type Options struct {
	// PerDomainCap limits how many results one registrable host may
	// contribute, so a single site cannot dominate the sample. 0 means
	// unlimited.
	PerDomainCap int
}

// MergeAndNormalize merges results from multiple providers, canonicalizes
// URLs, trims obvious tracking parameters, and de-duplicates exact URLs.
// Input order is preserved, which makes the output index the search rank.
func MergeAndNormalize(groups [][]search.Result, opts Options) []search.Result {
	seen := map[string]struct{}{}
	perDomain := map[string]int{}
	out := make([]search.Result, 0, 64)
	for _, g := range groups {
		for _, r := range g {
			if r.URL == "" {
				continue
			}
			u, err := url.Parse(r.URL)
			if err != nil {
				continue
			}
			normalizeURL(u)
			key := u.String()
			if _, ok := seen[key]; ok {
				continue
			}
			if opts.PerDomainCap > 0 {
				domain := classify.Domain(key)
				if perDomain[domain] >= opts.PerDomainCap {
					continue
				}
				perDomain[domain]++
			}
			seen[key] = struct{}{}
			r.URL = key
			out = append(out, r)
		}
	}
	return out
}

func normalizeURL(u *url.URL) {
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	q := u.Query()
	// Remove common tracking params
	for _, p := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
}
