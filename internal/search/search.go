// Package search turns a query into ranked candidate URLs. Providers share
// one minimal interface so the pipeline can swap the live engine for a
// static list or a local file without callers caring which they got.
package search

import (
	"context"
)

// Result represents a single search hit from any provider.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Source  string // provider name for observability
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}
