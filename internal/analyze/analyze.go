// Package analyze scores fetched sources for relevance against the research
// topic via an OpenAI-compatible model. The core treats its output as
// opaque; a failed or unavailable analyzer only means unscored sources.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/parasfis/deep-research-new/internal/pipeline"
)

// Analysis is the model's judgement of one source.
type Analysis struct {
	URL            string   `json:"url"`
	RelevanceScore float64  `json:"relevance_score"`
	KeyFacts       []string `json:"key_facts"`
}

// ChatClient is the slice of the OpenAI-compatible client the analyzer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const systemMessage = "You are a research analyst. Respond with strict JSON only, no narration. The JSON schema is {\"relevance_score\": number in [0,1], \"key_facts\": string[]}. Score how relevant the provided page content is to the topic and list the key facts it contributes."

// perSourceChars caps how much content is sent per source.
const perSourceChars = 12_000

// Analyzer scores sources in bounded parallel and keeps those above the
// relevance threshold, sorted by score descending.
type Analyzer struct {
	Client ChatClient
	Model  string
	// MaxWorkers bounds concurrent model calls. Zero or negative means 4.
	MaxWorkers int
	// MinRelevance drops sources scoring below it. Zero means 0.3.
	MinRelevance float64
}

// AnalyzeAll scores every source with content. A single source's analysis
// failure is logged and skipped; it never aborts the others.
func (a *Analyzer) AnalyzeAll(ctx context.Context, sources []pipeline.ContentSource, topic string) []Analysis {
	if a.Client == nil || a.Model == "" {
		return nil
	}
	workers := a.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	threshold := a.MinRelevance
	if threshold == 0 {
		threshold = 0.3
	}

	results := make([]*Analysis, len(sources))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		if strings.TrimSpace(src.Content) == "" {
			continue
		}
		g.Go(func() error {
			an, err := a.analyzeOne(gCtx, src, topic)
			if err != nil {
				log.Warn().Err(err).Str("url", src.URL).Msg("source analysis failed; skipping")
				return nil
			}
			results[i] = &an
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]Analysis, 0, len(sources))
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.RelevanceScore < threshold {
			log.Info().Str("url", r.URL).Float64("relevance", r.RelevanceScore).Msg("skipping low-relevance source")
			continue
		}
		kept = append(kept, *r)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	return kept
}

func (a *Analyzer) analyzeOne(ctx context.Context, src pipeline.ContentSource, topic string) (Analysis, error) {
	content := src.Content
	if len(content) > perSourceChars {
		content = content[:perSourceChars]
	}
	user := "Topic: " + topic + "\n\nPage content:\n" + content
	resp, err := a.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, errors.New("no choices")
	}
	var parsed struct {
		RelevanceScore float64  `json:"relevance_score"`
		KeyFacts       []string `json:"key_facts"`
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Analysis{}, fmt.Errorf("parse analysis json: %w", err)
	}
	if parsed.RelevanceScore < 0 {
		parsed.RelevanceScore = 0
	}
	if parsed.RelevanceScore > 1 {
		parsed.RelevanceScore = 1
	}
	return Analysis{
		URL:            src.URL,
		RelevanceScore: parsed.RelevanceScore,
		KeyFacts:       parsed.KeyFacts,
	}, nil
}
