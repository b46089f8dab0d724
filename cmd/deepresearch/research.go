package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parasfis/deep-research-new/internal/engine"
	"github.com/parasfis/deep-research-new/internal/metrics"
	"github.com/parasfis/deep-research-new/internal/report"
	"github.com/parasfis/deep-research-new/internal/track"
)

var (
	researchContext string
	researchPDF     bool
	researchJSON    string
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Run a full research task on a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.MetricsAddr != "" {
			srv := metrics.Start(cfg.MetricsAddr)
			defer func() { _ = srv.Stop() }()
		}

		tracker := track.NewTracker()
		eng := engine.New(cfg, tracker)

		res, err := eng.Execute(cmd.Context(), topic, researchContext)
		if err != nil {
			if snap, serr := tracker.Get(res.TaskID); serr == nil {
				fmt.Fprintf(os.Stderr, "task %s: %s (%s)\n", snap.TaskID, snap.Status, snap.Error)
			}
			return err
		}

		snap, _ := tracker.Get(res.TaskID)
		fmt.Printf("Task %s %s in %.1fs: %d search results, %d content sources\n",
			snap.TaskID, snap.Status, snap.DurationSeconds,
			len(res.Bundle.SearchResults), len(res.Bundle.ContentSources))
		for i, u := range res.Bundle.Selected {
			marker := " "
			if _, ok := res.Bundle.ContentSources[u]; ok {
				marker = "+"
			}
			fmt.Printf("%2d %s %s\n", i+1, marker, u)
		}

		if researchJSON != "" {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			if err := os.WriteFile(researchJSON, data, 0o644); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
		}
		if researchPDF {
			if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
				return fmt.Errorf("creating report dir: %w", err)
			}
			name := fmt.Sprintf("research-%s.pdf", time.Now().Format("20060102-150405"))
			out := filepath.Join(cfg.ReportDir, name)
			if err := report.WritePDF(topic, res.Bundle, res.Analyses, out); err != nil {
				return fmt.Errorf("writing pdf report: %w", err)
			}
			fmt.Printf("Report written to %s\n", out)
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchContext, "context", "", "additional context for query planning")
	researchCmd.Flags().BoolVar(&researchPDF, "pdf", false, "write a PDF report")
	researchCmd.Flags().StringVar(&researchJSON, "json", "", "write the full result to a JSON file")
	rootCmd.AddCommand(researchCmd)
}
