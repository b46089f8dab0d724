package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parasfis/deep-research-new/internal/engine"
	"github.com/parasfis/deep-research-new/internal/search"
	"github.com/parasfis/deep-research-new/internal/track"
)

var (
	searchLimit int
	searchOut   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-off query across all configured backends",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng := engine.New(cfg, track.NewTracker())
		results := eng.SearchOnce(cmd.Context(), query, searchLimit)
		for i, r := range results {
			fmt.Printf("%2d. [%s] %s\n    %s\n", i+1, r.Source, r.Title, r.URL)
		}
		if len(results) == 0 {
			fmt.Println("no results")
		}
		if searchOut != "" {
			if err := search.WriteQueryFile(searchOut, query, searchLimit, eng.BackendNames(), results); err != nil {
				return fmt.Errorf("saving query file: %w", err)
			}
			fmt.Printf("Saved %d results to %s\n", len(results), searchOut)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum merged results")
	searchCmd.Flags().StringVar(&searchOut, "out", "", "save results to a YAML query file")
	rootCmd.AddCommand(searchCmd)
}
