package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	name    string
	results []Result
	err     error
	delay   time.Duration
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, _ string, _ int) ([]Result, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func TestOrchestrator_DedupsAcrossBackends(t *testing.T) {
	a := &fakeProvider{name: "a", results: []Result{
		{Title: "A", URL: "https://x.com/1", Source: "a"},
	}}
	b := &fakeProvider{name: "b", results: []Result{
		{Title: "B", URL: "https://x.com/1", Source: "b"},
		{Title: "B2", URL: "https://x.com/2", Source: "b"},
	}}
	o := &Orchestrator{Providers: []Provider{a, b}}

	got := o.Search(context.Background(), "q", 10)
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 results, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, r := range got {
		if seen[r.URL] {
			t.Fatalf("duplicate URL in result set: %s", r.URL)
		}
		seen[r.URL] = true
	}
	if !seen["https://x.com/1"] || !seen["https://x.com/2"] {
		t.Fatalf("unexpected URL set: %v", seen)
	}
}

func TestOrchestrator_AllBackendsFailing(t *testing.T) {
	o := &Orchestrator{Providers: []Provider{
		&fakeProvider{name: "a", err: errors.New("rate limited")},
		&fakeProvider{name: "b", err: errors.New("connection refused")},
	}}
	got := o.Search(context.Background(), "q", 10)
	if got == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected zero results, got %d", len(got))
	}
}

func TestOrchestrator_OneFailureDoesNotAbortOthers(t *testing.T) {
	o := &Orchestrator{Providers: []Provider{
		&fakeProvider{name: "a", err: errors.New("boom")},
		&fakeProvider{name: "b", results: []Result{{Title: "B", URL: "https://x.com/ok"}}},
	}}
	got := o.Search(context.Background(), "q", 10)
	if len(got) != 1 || got[0].URL != "https://x.com/ok" {
		t.Fatalf("expected the healthy backend's result, got %+v", got)
	}
}

func TestOrchestrator_TruncatesAfterDedup(t *testing.T) {
	results := make([]Result, 0, 8)
	for _, u := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		results = append(results, Result{Title: u, URL: "https://x.com/" + u})
	}
	o := &Orchestrator{Providers: []Provider{&fakeProvider{name: "a", results: results}}}
	got := o.Search(context.Background(), "q", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results after truncation, got %d", len(got))
	}
}

func TestOrchestrator_SlowBackendBoundedByOwnTimeout(t *testing.T) {
	fast := &fakeProvider{name: "fast", results: []Result{{Title: "F", URL: "https://x.com/fast"}}}
	slow := &fakeProvider{name: "slow", delay: 2 * time.Second, results: []Result{{Title: "S", URL: "https://x.com/slow"}}}
	o := &Orchestrator{
		Providers:         []Provider{fast, slow},
		PerBackendTimeout: 50 * time.Millisecond,
	}

	start := time.Now()
	got := o.Search(context.Background(), "q", 10)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("orchestrator blocked past the per-backend timeout: %v", elapsed)
	}
	if len(got) != 1 || got[0].URL != "https://x.com/fast" {
		t.Fatalf("expected only the fast backend's result, got %+v", got)
	}
}

func TestOrchestrator_NoProviders(t *testing.T) {
	o := &Orchestrator{}
	if got := o.Search(context.Background(), "q", 10); len(got) != 0 {
		t.Fatalf("expected empty result with no providers, got %d", len(got))
	}
}
