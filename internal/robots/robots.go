// Package robots gates page fetches on robots.txt. Rules are downloaded per
// host, parsed once, and held in a TTL memory cache; bodies can additionally
// land in the shared on-disk HTTP cache so offline reruns keep the same
// verdicts.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"

	"github.com/healthtextlab/medread/internal/cache"
)

// DefaultTTL bounds how long parsed rules stay in memory before a refetch.
const DefaultTTL = 30 * time.Minute

const maxRobotsBody = 512 * 1024

// Manager answers "may I fetch this URL" for one run. The zero value plus a
// UserAgent is usable; all fields are optional configuration.
type Manager struct {
	HTTPClient *http.Client
	UserAgent  string
	// Disk, when set, persists robots bodies alongside fetched pages so a
	// cached run needs no network at all.
	Disk *cache.HTTPCache
	// TTL is the memory cache lifetime for parsed rules. Zero means
	// DefaultTTL.
	TTL time.Duration

	once sync.Once
	mem  *gocache.Cache
}

// Allowed reports whether rawURL may be fetched under the host's robots
// rules. Transport failures fail open: the caller gets true plus the error
// so it can log the degraded check.
func (m *Manager) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return false, fmt.Errorf("robots: unsupported scheme %q", u.Scheme)
	}
	data, err := m.rules(ctx, u)
	if err != nil {
		return true, err
	}
	return data.FindGroup(m.UserAgent).Test(pathWithQuery(u)), nil
}

// CrawlDelay returns the Crawl-delay directive for the host's matching agent
// group, or zero when none applies or the rules are unavailable.
func (m *Manager) CrawlDelay(ctx context.Context, rawURL string) time.Duration {
	u, err := url.Parse(rawURL)
	if err != nil || !isHTTPScheme(u) {
		return 0
	}
	data, err := m.rules(ctx, u)
	if err != nil {
		return 0
	}
	return data.FindGroup(m.UserAgent).CrawlDelay
}

// rules resolves the parsed robots data for the URL's origin, consulting the
// memory cache, then the disk cache, then the network.
func (m *Manager) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	m.once.Do(func() {
		ttl := m.TTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		m.mem = gocache.New(ttl, ttl)
	})

	origin := strings.ToLower(u.Scheme + "://" + u.Host)
	if v, ok := m.mem.Get(origin); ok {
		return v.(*robotstxt.RobotsData), nil
	}

	robotsURL := origin + "/robots.txt"
	status, body, err := m.download(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return nil, fmt.Errorf("robots: parse %s: %w", robotsURL, err)
	}
	m.mem.Set(origin, data, gocache.DefaultExpiration)
	return data, nil
}

func (m *Manager) download(ctx context.Context, robotsURL string) (int, []byte, error) {
	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if m.Disk != nil && m.Disk.Fresh(ctx, robotsURL, ttl) {
		meta, err := m.Disk.LoadMeta(ctx, robotsURL)
		if err == nil {
			body, err := m.Disk.LoadBody(ctx, robotsURL)
			if err == nil {
				return meta.StatusCode, body, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("robots: new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("robots: fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return 0, nil, fmt.Errorf("robots: read %s: %w", robotsURL, err)
	}
	if m.Disk != nil {
		_ = m.Disk.Save(ctx, robotsURL, cache.Entry{
			ContentType: resp.Header.Get("Content-Type"),
			StatusCode:  resp.StatusCode,
		}, body)
	}
	return resp.StatusCode, body, nil
}

func pathWithQuery(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

func isHTTPScheme(u *url.URL) bool {
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}
