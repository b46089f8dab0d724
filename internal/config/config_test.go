package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, []string{"duckduckgo"}, cfg.Backends)
	require.Equal(t, 30*time.Second, cfg.SearchTimeout)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout)
	require.Equal(t, 5, cfg.MaxResultsPerQuery)
	require.Equal(t, 10, cfg.MaxContentSources)
	require.Equal(t, 4, cfg.MaxFetchWorkers)
	require.True(t, cfg.RespectRobots)
	require.Equal(t, "heuristic", cfg.Extractor)
	require.NotEmpty(t, cfg.UserAgent)
	require.Equal(t, "reports", cfg.ReportDir)
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deepresearch.yaml")
	body := `backends:
  - searxng
  - tavily
searx_url: https://searx.internal
tavily_key: tk
search_timeout: 5s
max_content_sources: 3
respect_robots: false
extractor: readability
llm_model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"searxng", "tavily"}, cfg.Backends)
	require.Equal(t, "https://searx.internal", cfg.SearxURL)
	require.Equal(t, "tk", cfg.TavilyKey)
	require.Equal(t, 5*time.Second, cfg.SearchTimeout)
	require.Equal(t, 3, cfg.MaxContentSources)
	require.False(t, cfg.RespectRobots)
	require.Equal(t, "readability", cfg.Extractor)
	require.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	// Untouched keys keep their defaults.
	require.Equal(t, 4, cfg.MaxFetchWorkers)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
