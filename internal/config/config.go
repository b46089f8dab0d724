// Package config loads runtime configuration from file, environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the research engine consumes.
type Config struct {
	// Backends lists enabled search backends in priority order. Known
	// names: searxng, tavily, google, duckduckgo, file.
	Backends []string `mapstructure:"backends"`

	SearxURL   string `mapstructure:"searx_url"`
	SearxKey   string `mapstructure:"searx_key"`
	TavilyKey  string `mapstructure:"tavily_key"`
	SerpAPIKey string `mapstructure:"serpapi_key"`
	SearchFile string `mapstructure:"search_file"`

	// SearchTimeout bounds each backend call independently.
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	// FetchTimeout bounds each content fetch.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	MaxResultsPerQuery int `mapstructure:"max_results_per_query"`
	MaxContentSources  int `mapstructure:"max_content_sources"`
	MaxFetchWorkers    int `mapstructure:"max_fetch_workers"`

	PerDomainCap    int    `mapstructure:"per_domain_cap"`
	MinSnippetChars int    `mapstructure:"min_snippet_chars"`
	LanguageHint    string `mapstructure:"language_hint"`

	UserAgent     string `mapstructure:"user_agent"`
	RespectRobots bool   `mapstructure:"respect_robots"`
	// Extractor selects the content extraction strategy: "heuristic" or
	// "readability".
	Extractor string `mapstructure:"extractor"`

	LLMBaseURL string `mapstructure:"llm_base_url"`
	LLMModel   string `mapstructure:"llm_model"`
	LLMAPIKey  string `mapstructure:"llm_api_key"`

	ReportDir   string `mapstructure:"report_dir"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from the optional cfgFile, DEEPRESEARCH_*
// environment variables, and built-in defaults, in that order of precedence.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("backends", []string{"duckduckgo"})
	v.SetDefault("search_timeout", 30*time.Second)
	v.SetDefault("fetch_timeout", 15*time.Second)
	v.SetDefault("max_results_per_query", 5)
	v.SetDefault("max_content_sources", 10)
	v.SetDefault("max_fetch_workers", 4)
	v.SetDefault("per_domain_cap", 0)
	v.SetDefault("min_snippet_chars", 0)
	v.SetDefault("user_agent", "deepresearch/1.0")
	v.SetDefault("respect_robots", true)
	v.SetDefault("extractor", "heuristic")
	v.SetDefault("report_dir", "reports")

	v.SetEnvPrefix("DEEPRESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("deepresearch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/deepresearch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
