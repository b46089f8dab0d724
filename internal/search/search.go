package search

import (
	"context"
	"fmt"
)

// Result represents a single search hit from any backend.
type Result struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet" yaml:"snippet"`
	Source  string `json:"source" yaml:"source"`
	// Query is the originating query, tagged by the pipeline when a single
	// run fans out over multiple queries. Empty for single-query searches.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`
}

// Provider is the interface every search backend implements. Search returns
// up to limit results for the query, bounded by the deadline on ctx.
// Backends are symmetric in contract; none is privileged.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// BackendError reports the failure of a single backend during a fan-out.
// It is logged by the orchestrator and never propagated as a fatal error:
// one failing backend must not abort the others.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("search backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
