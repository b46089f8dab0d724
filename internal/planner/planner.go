// Package planner turns a research topic into the concrete search queries
// the pipeline will fan out. An LLM plans when one is configured; a
// deterministic fallback keeps research running without it.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Planner produces search queries for a topic with optional caller context.
type Planner interface {
	Plan(ctx context.Context, topic, extra string) ([]string, error)
}

// ChatClient is the slice of the OpenAI-compatible client the planner needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const systemMessage = "You are a research planning assistant. Respond with strict JSON only, no narration. The JSON schema is {\"search_queries\": string[3..6]}. Queries must be diverse, concise web search queries covering the topic from different angles."

// LLMPlanner calls an OpenAI-compatible endpoint and enforces a JSON-only
// contract. Parse failures are returned so callers can fall back.
type LLMPlanner struct {
	Client ChatClient
	Model  string
}

func (p *LLMPlanner) Plan(ctx context.Context, topic, extra string) ([]string, error) {
	if p.Client == nil || p.Model == "" {
		return nil, errors.New("planner not configured")
	}
	user := "Topic: " + strings.TrimSpace(topic)
	if strings.TrimSpace(extra) != "" {
		user += "\nContext: " + strings.TrimSpace(extra)
	}
	resp, err := p.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("planner call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}
	var plan struct {
		SearchQueries []string `json:"search_queries"`
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("parse planner json: %w", err)
	}
	queries := sanitizeQueries(plan.SearchQueries)
	if len(queries) == 0 {
		return nil, errors.New("empty planner output")
	}
	return queries, nil
}

// FallbackPlanner produces deterministic queries when the LLM planner is
// unavailable or returns invalid output. The topic itself always comes
// first.
type FallbackPlanner struct{}

func (FallbackPlanner) Plan(_ context.Context, topic, _ string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("empty topic")
	}
	suffixes := []string{"", "overview", "latest developments", "criticism"}
	queries := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		q := topic
		if s != "" {
			q = topic + " " + s
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// Facade tries the LLM planner first and falls back deterministically, so
// planning never fails for a non-empty topic.
type Facade struct {
	LLM      *LLMPlanner
	Fallback FallbackPlanner
}

func (f *Facade) Plan(ctx context.Context, topic, extra string) ([]string, error) {
	if f.LLM != nil && f.LLM.Client != nil && f.LLM.Model != "" {
		if queries, err := f.LLM.Plan(ctx, topic, extra); err == nil {
			return queries, nil
		} else {
			log.Warn().Err(err).Msg("planner failed, using fallback")
		}
	}
	return f.Fallback.Plan(ctx, topic, extra)
}

func sanitizeQueries(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, q := range in {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}
