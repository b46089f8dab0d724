package search

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parasfis/deep-research-new/internal/aggregate"
	"github.com/parasfis/deep-research-new/internal/metrics"
)

// Orchestrator fans a query out to every configured backend concurrently and
// merges the answers into one deduplicated result set. Backend failures are
// absorbed: a failing backend contributes an empty group, and a run where
// every backend fails yields an empty slice, not an error.
type Orchestrator struct {
	Providers []Provider
	// PerBackendTimeout bounds each backend call independently, so a slow
	// backend never holds up the others past its own deadline. Zero means
	// the caller's ctx deadline alone applies.
	PerBackendTimeout time.Duration
}

// Search dispatches query to all backends with limit results each, waits for
// every call to finish or time out, then concatenates, deduplicates by
// canonical URL (first-seen-wins in arrival order) and truncates to limit.
// Arrival order between backends is unspecified; callers must not rely on
// which duplicate survives.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) []Result {
	if len(o.Providers) == 0 {
		return []Result{}
	}

	type backendGroup struct {
		name    string
		results []Result
	}

	ch := make(chan backendGroup, len(o.Providers))
	var wg sync.WaitGroup
	for _, p := range o.Providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			callCtx := ctx
			if o.PerBackendTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, o.PerBackendTimeout)
				defer cancel()
			}
			start := time.Now()
			results, err := p.Search(callCtx, query, limit)
			metrics.RecordSearch(p.Name(), len(results), time.Since(start), err)
			if err != nil {
				be := &BackendError{Backend: p.Name(), Err: err}
				log.Warn().Err(be).Str("query", query).Msg("search backend failed")
				ch <- backendGroup{name: p.Name()}
				return
			}
			ch <- backendGroup{name: p.Name(), results: results}
		}(p)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	seen := aggregate.NewSet()
	merged := make([]Result, 0, limit)
	for g := range ch {
		for _, r := range g.results {
			if !seen.Add(r.URL) {
				continue
			}
			merged = append(merged, r)
		}
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
