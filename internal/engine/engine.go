// Package engine runs complete research tasks: plan queries, drive the
// search/fetch pipeline, analyze sources, and report progress through the
// task tracker.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/parasfis/deep-research-new/internal/analyze"
	"github.com/parasfis/deep-research-new/internal/config"
	"github.com/parasfis/deep-research-new/internal/extract"
	"github.com/parasfis/deep-research-new/internal/fetch"
	"github.com/parasfis/deep-research-new/internal/pipeline"
	"github.com/parasfis/deep-research-new/internal/planner"
	"github.com/parasfis/deep-research-new/internal/search"
	"github.com/parasfis/deep-research-new/internal/selection"
	"github.com/parasfis/deep-research-new/internal/track"
)

// Result is the outcome of one completed research task.
type Result struct {
	TaskID   string
	Topic    string
	Queries  []string
	Bundle   *pipeline.Bundle
	Analyses []analyze.Analysis
}

// Engine wires the planner, pipeline, analyzer, and tracker for a given
// configuration.
type Engine struct {
	cfg      config.Config
	tracker  *track.Tracker
	planner  planner.Planner
	pipe     *pipeline.Pipeline
	analyzer *analyze.Analyzer
}

// New builds an Engine from configuration. The tracker is injected so
// callers can poll task state independently of the engine's lifetime.
func New(cfg config.Config, tracker *track.Tracker) *Engine {
	httpClient := &http.Client{Timeout: cfg.SearchTimeout}

	searchOrch := &search.Orchestrator{
		Providers:         buildProviders(cfg, httpClient),
		PerBackendTimeout: cfg.SearchTimeout,
	}

	fetchClient := &fetch.Client{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: cfg.FetchTimeout,
		RedirectMaxHops:   5,
	}
	if cfg.RespectRobots {
		fetchClient.Robots = &fetch.RobotsGate{
			HTTPClient: &http.Client{Timeout: cfg.FetchTimeout},
			UserAgent:  cfg.UserAgent,
		}
	}
	fetchOrch := &fetch.Orchestrator{
		Client:     fetchClient,
		Extractor:  buildExtractor(cfg),
		MaxWorkers: cfg.MaxFetchWorkers,
	}

	pipe := &pipeline.Pipeline{
		Search:             searchOrch,
		Fetch:              fetchOrch,
		MaxResultsPerQuery: cfg.MaxResultsPerQuery,
		MaxContentSources:  cfg.MaxContentSources,
		Selection: selection.Options{
			PerDomain:       cfg.PerDomainCap,
			MinSnippetChars: cfg.MinSnippetChars,
			LanguageHint:    cfg.LanguageHint,
		},
		Tracker: tracker,
	}

	e := &Engine{
		cfg:     cfg,
		tracker: tracker,
		pipe:    pipe,
		planner: &planner.Facade{},
	}
	if cfg.LLMModel != "" {
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		client := openai.NewClientWithConfig(transportCfg)
		e.planner = &planner.Facade{
			LLM: &planner.LLMPlanner{Client: client, Model: cfg.LLMModel},
		}
		e.analyzer = &analyze.Analyzer{
			Client:     client,
			Model:      cfg.LLMModel,
			MaxWorkers: cfg.MaxFetchWorkers,
		}
	}
	return e
}

// Tracker returns the injected task registry.
func (e *Engine) Tracker() *track.Tracker { return e.tracker }

// Execute runs a full research task synchronously and drives the tracker
// through Initializing, Planning, Researching, and a terminal state. The
// returned Result carries the task id even on failure.
func (e *Engine) Execute(ctx context.Context, topic, extra string) (*Result, error) {
	taskID := e.tracker.Create(topic)
	res, err := e.execute(ctx, taskID, topic, extra)
	if err != nil {
		if failErr := e.tracker.Fail(taskID, err.Error()); failErr != nil {
			log.Warn().Err(failErr).Str("task", taskID).Msg("could not record task failure")
		}
		return &Result{TaskID: taskID, Topic: topic}, err
	}
	if err := e.tracker.Complete(taskID); err != nil {
		log.Warn().Err(err).Str("task", taskID).Msg("could not record task completion")
	}
	return res, nil
}

// Start launches Execute on its own goroutine and returns the task id
// immediately, for callers that poll the tracker instead of waiting.
func (e *Engine) Start(ctx context.Context, topic, extra string) string {
	taskID := e.tracker.Create(topic)
	go func() {
		if _, err := e.execute(ctx, taskID, topic, extra); err != nil {
			if failErr := e.tracker.Fail(taskID, err.Error()); failErr != nil {
				log.Warn().Err(failErr).Str("task", taskID).Msg("could not record task failure")
			}
			return
		}
		if err := e.tracker.Complete(taskID); err != nil {
			log.Warn().Err(err).Str("task", taskID).Msg("could not record task completion")
		}
	}()
	return taskID
}

// Status returns the current snapshot for a task id.
func (e *Engine) Status(taskID string) (track.Snapshot, error) {
	return e.tracker.Get(taskID)
}

// SearchOnce runs a single query through the search orchestrator without a
// task or fetch phase, for one-off lookups.
func (e *Engine) SearchOnce(ctx context.Context, query string, limit int) []search.Result {
	return e.pipe.Search.Search(ctx, query, limit)
}

// BackendNames lists the configured providers in dispatch order.
func (e *Engine) BackendNames() []string {
	names := make([]string, 0, len(e.pipe.Search.Providers))
	for _, p := range e.pipe.Search.Providers {
		names = append(names, p.Name())
	}
	return names
}

func (e *Engine) execute(ctx context.Context, taskID, topic, extra string) (*Result, error) {
	start := time.Now()
	if err := e.tracker.Advance(taskID, track.StatusPlanning, 5); err != nil {
		return nil, err
	}
	queries, err := e.planner.Plan(ctx, topic, extra)
	if err != nil {
		return nil, fmt.Errorf("planning queries: %w", err)
	}
	log.Info().Str("topic", topic).Strs("queries", queries).Msg("research plan ready")

	bundle, err := e.pipe.Run(ctx, taskID, queries)
	if err != nil {
		return nil, err
	}

	var analyses []analyze.Analysis
	if e.analyzer != nil {
		_ = e.tracker.Advance(taskID, track.StatusResearching, 90)
		analyses = e.analyzer.AnalyzeAll(ctx, orderedSources(bundle), topic)
		_ = e.tracker.Advance(taskID, track.StatusResearching, 95)
	}

	log.Info().
		Str("task", taskID).
		Int("sources", len(bundle.ContentSources)).
		Dur("elapsed", time.Since(start)).
		Msg("research complete")
	return &Result{
		TaskID:   taskID,
		Topic:    topic,
		Queries:  queries,
		Bundle:   bundle,
		Analyses: analyses,
	}, nil
}

// orderedSources lists the bundle's content sources in selection order.
func orderedSources(b *pipeline.Bundle) []pipeline.ContentSource {
	out := make([]pipeline.ContentSource, 0, len(b.ContentSources))
	for _, u := range b.Selected {
		if src, ok := b.ContentSources[u]; ok {
			out = append(out, src)
		}
	}
	return out
}

// buildProviders maps configured backend names to provider instances.
// Unknown or unconfigured backends are logged and skipped so a bad entry
// never disables the rest.
func buildProviders(cfg config.Config, hc *http.Client) []search.Provider {
	providers := make([]search.Provider, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		switch name {
		case "searxng":
			if cfg.SearxURL == "" {
				log.Warn().Msg("searxng backend enabled but searx_url is empty; skipping")
				continue
			}
			providers = append(providers, &search.SearxNG{
				BaseURL:    cfg.SearxURL,
				APIKey:     cfg.SearxKey,
				HTTPClient: hc,
				UserAgent:  cfg.UserAgent,
			})
		case "tavily":
			if cfg.TavilyKey == "" {
				log.Warn().Msg("tavily backend enabled but tavily_key is empty; skipping")
				continue
			}
			providers = append(providers, &search.Tavily{APIKey: cfg.TavilyKey, HTTPClient: hc})
		case "google":
			if cfg.SerpAPIKey == "" {
				log.Warn().Msg("google backend enabled but serpapi_key is empty; skipping")
				continue
			}
			providers = append(providers, &search.SerpAPI{APIKey: cfg.SerpAPIKey, HTTPClient: hc})
		case "duckduckgo":
			providers = append(providers, &search.DuckDuckGo{HTTPClient: hc, UserAgent: cfg.UserAgent})
		case "file":
			if cfg.SearchFile == "" {
				log.Warn().Msg("file backend enabled but search_file is empty; skipping")
				continue
			}
			providers = append(providers, &search.FileProvider{Path: cfg.SearchFile})
		default:
			log.Warn().Str("backend", name).Msg("unknown search backend; skipping")
		}
	}
	return providers
}

func buildExtractor(cfg config.Config) extract.Extractor {
	switch cfg.Extractor {
	case "readability":
		return extract.ReadabilityExtractor{}
	default:
		return extract.HeuristicExtractor{}
	}
}
