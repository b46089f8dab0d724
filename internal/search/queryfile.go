package search

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// QueryFile is the on-disk form of a search run. A run can be saved and
// reloaded later without re-querying the backends.
type QueryFile struct {
	Query   string       `yaml:"query"`
	Limit   int          `yaml:"limit"`
	Results []Result     `yaml:"results"`
	Summary QuerySummary `yaml:"summary"`
}

// QuerySummary holds result statistics and a timestamp for the saved run.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Backends  []string  `yaml:"backends,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a query and its merged results to a YAML file.
func WriteQueryFile(path string, query string, limit int, backends []string, results []Result) error {
	qf := QueryFile{
		Query:   query,
		Limit:   limit,
		Results: results,
		Summary: QuerySummary{
			Total:     len(results),
			Backends:  backends,
			Timestamp: time.Now(),
		},
	}
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
