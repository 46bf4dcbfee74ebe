// Package cache is the on-disk store for fetched HTTP responses. Bodies and
// metadata live in separate files keyed by the URL hash, so repeated runs on
// the same query can skip the network entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry captures enough response metadata to support conditional
// revalidation and freshness checks without touching the body file.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	StatusCode   int       `json:"status_code"`
	SavedAt      time.Time `json:"saved_at"`
}

// HTTPCache stores responses on disk as <key>.meta.json and <key>.body where
// key is sha256(url). Writes are atomic via rename. No eviction policy runs
// automatically; see PurgeByAge.
type HTTPCache struct {
	Dir string
}

func (c *HTTPCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *HTTPCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *HTTPCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *HTTPCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns entry metadata if present.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.metaPath(c.key(url)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var e Entry
	if err := json.NewDecoder(f).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadBody returns the cached body if present.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(c.key(url)))
}

// Fresh reports whether a cached entry exists and was saved within maxAge.
// maxAge <= 0 means cached entries never go stale.
func (c *HTTPCache) Fresh(ctx context.Context, url string, maxAge time.Duration) bool {
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		return false
	}
	if maxAge <= 0 {
		return true
	}
	return time.Now().UTC().Sub(meta.SavedAt) <= maxAge
}

// Save stores a new cache entry to disk. URL and SavedAt on the entry are
// filled in here.
func (c *HTTPCache) Save(_ context.Context, url string, e Entry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)
	// Body first, meta last: a crash between the two leaves no meta and the
	// entry reads as absent.
	if err := os.WriteFile(c.bodyPath(key), body, 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	e.URL = url
	e.SavedAt = time.Now().UTC()
	return c.writeMeta(key, &e)
}

// Refresh bumps SavedAt on an existing entry after a 304 revalidation.
func (c *HTTPCache) Refresh(ctx context.Context, url string) error {
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		return err
	}
	meta.SavedAt = time.Now().UTC()
	return c.writeMeta(c.key(url), meta)
}

func (c *HTTPCache) writeMeta(key string, e *Entry) error {
	tmp := c.metaPath(key) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create meta: %w", err)
	}
	if err := json.NewEncoder(f).Encode(e); err != nil {
		f.Close()
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.metaPath(key))
}
