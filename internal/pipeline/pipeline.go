// Package pipeline drives free-text queries through search fan-out,
// cross-query deduplication, bounded content fetching, and assembly of the
// combined research bundle.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/parasfis/deep-research-new/internal/aggregate"
	"github.com/parasfis/deep-research-new/internal/fetch"
	"github.com/parasfis/deep-research-new/internal/search"
	"github.com/parasfis/deep-research-new/internal/selection"
	"github.com/parasfis/deep-research-new/internal/track"
)

// ContentSource merges a URL's search hit with its fetched content.
type ContentSource struct {
	URL         string
	Title       string
	Query       string
	Snippet     string
	Content     string
	Domain      string
	FetchedAt   time.Time
	ContentType string
	Length      int
}

// Bundle is the combined result of one research run.
//
// Every key in ContentSources has a corresponding entry in SearchResults;
// URLs whose fetch failed stay in SearchResults but are absent from
// ContentSources. Selected lists the fetch set in discovery order for
// presentation purposes.
type Bundle struct {
	SearchResults  []search.Result
	Selected       []string
	ContentSources map[string]ContentSource
}

// PipelineError reports that a phase could not produce any usable output at
// all, e.g. zero backends configured. It is the only error class that
// surfaces from Run and drives a task to its Error state.
type PipelineError struct {
	Phase  string
	Reason string
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s phase: %s", e.Phase, e.Reason)
}

// Progress checkpoints reported while a run is in its Researching phase.
// Values are phase-weighted estimates, not measurements.
const (
	progressSearchStart = 10
	progressSearchDone  = 40
	progressSelected    = 50
	progressFetchDone   = 85
)

// Pipeline coordinates one research run end to end.
type Pipeline struct {
	Search *search.Orchestrator
	Fetch  *fetch.Orchestrator
	// MaxResultsPerQuery bounds each query's merged search results.
	MaxResultsPerQuery int
	// MaxContentSources bounds the fetch set and ContentSources size.
	MaxContentSources int
	// Selection tunes the pre-fetch cut. MaxTotal is always overridden
	// with MaxContentSources.
	Selection selection.Options
	// Tracker, when set, receives phase-boundary progress updates for
	// TaskID passed to Run. Optional.
	Tracker *track.Tracker
}

// Run executes the full research pipeline for the ordered query list and
// returns the assembled bundle. A single query's total failure contributes
// zero results without aborting the others; Run fails only when a phase has
// nothing at all to work with.
func (p *Pipeline) Run(ctx context.Context, taskID string, queries []string) (*Bundle, error) {
	if len(queries) == 0 {
		return nil, &PipelineError{Phase: "search", Reason: "no queries to research"}
	}
	if p.Search == nil || len(p.Search.Providers) == 0 {
		return nil, &PipelineError{Phase: "search", Reason: "no search backends configured"}
	}
	maxSources := p.MaxContentSources
	if maxSources <= 0 {
		maxSources = 10
	}

	// Search phase: one concurrent orchestrator call per query. Results
	// are collected per query slot and flattened in query order, so the
	// cross-query merge is deterministic for a fixed per-query outcome.
	p.advance(taskID, progressSearchStart)
	groups := make([][]search.Result, len(queries))
	g, searchCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			results := p.Search.Search(searchCtx, q, p.MaxResultsPerQuery)
			for j := range results {
				results[j].Query = q
			}
			groups[i] = results
			log.Info().Str("query", q).Int("results", len(results)).Msg("query search done")
			return nil
		})
	}
	_ = g.Wait() // per-query failures already absorbed by the orchestrator

	pooled := 0
	for _, grp := range groups {
		pooled += len(grp)
	}
	merged := mergeGroups(groups, pooled)
	p.advance(taskID, progressSearchDone)

	// Selection: first maxSources unique URLs in discovery order, after
	// any configured filters.
	opts := p.Selection
	opts.MaxTotal = maxSources
	selected := selection.Select(merged, opts)
	urls := make([]string, len(selected))
	byURL := make(map[string]search.Result, len(selected))
	for i, r := range selected {
		urls[i] = r.URL
		byURL[r.URL] = r
	}
	log.Info().Int("pooled", pooled).Int("unique", len(merged)).Int("selected", len(urls)).Msg("selected fetch set")
	p.advance(taskID, progressSelected)

	// Fetch phase.
	records := p.Fetch.FetchAll(ctx, urls)
	p.advance(taskID, progressFetchDone)

	// Assembly: merge each fetched URL's search fields with its content
	// record, in selection order.
	bundle := &Bundle{
		SearchResults:  merged,
		Selected:       urls,
		ContentSources: make(map[string]ContentSource, len(records)),
	}
	for _, u := range urls {
		rec, ok := records[u]
		if !ok {
			continue
		}
		hit := byURL[u]
		bundle.ContentSources[u] = ContentSource{
			URL:         u,
			Title:       pickNonEmpty(rec.Title, hit.Title),
			Query:       hit.Query,
			Snippet:     hit.Snippet,
			Content:     rec.Text,
			Domain:      rec.Domain,
			FetchedAt:   rec.FetchedAt,
			ContentType: rec.ContentType,
			Length:      rec.Length,
		}
	}
	return bundle, nil
}

func (p *Pipeline) advance(taskID string, progress int) {
	if p.Tracker == nil || taskID == "" {
		return
	}
	if err := p.Tracker.Advance(taskID, track.StatusResearching, progress); err != nil {
		log.Warn().Err(err).Str("task", taskID).Msg("progress update rejected")
	}
}

// mergeGroups flattens per-query groups in query order and dedups across
// them by canonical URL, first-seen-wins, keeping the first occurrence's
// query tag.
func mergeGroups(groups [][]search.Result, capacity int) []search.Result {
	seen := aggregate.NewSet()
	merged := make([]search.Result, 0, capacity)
	for _, grp := range groups {
		for _, r := range grp {
			if !seen.Add(r.URL) {
				continue
			}
			merged = append(merged, r)
		}
	}
	return merged
}

func pickNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
