package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/oncoscout/internal/collect"
	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/normalize"
	"github.com/jonathan/oncoscout/internal/pipeline"
	"github.com/jonathan/oncoscout/internal/seen"
	"github.com/jonathan/oncoscout/internal/types"
)

var collectCommand = &cobra.Command{
	Use:   "collect",
	Short: "Run the collectors only and save the raw candidates",
	Long: `Queries the configured sources without classifying or drafting. Useful
for checking what a source returns before spending model calls on it.`,
	RunE: runCollectCmd,
}

var (
	collectConfigPath string
	collectOutputDir  string
	collectLookback   int
	collectSource     string
	collectUseBrowser bool
)

func init() {
	collectCommand.Flags().StringVar(&collectConfigPath, "config", "", "Path to config YAML")
	collectCommand.Flags().StringVar(&collectOutputDir, "output-dir", "", "Directory for the raw candidate file")
	collectCommand.Flags().IntVar(&collectLookback, "lookback", 0, "Lookback window in days for source queries")
	collectCommand.Flags().StringVar(&collectSource, "source", "", "Only run the named collector (FDA, PubMed, Newsroom, ClinicalTrials.gov)")
	collectCommand.Flags().BoolVar(&collectUseBrowser, "use-browser", false, "Render JS-heavy newsroom pages in a headless browser")

	rootCmd.AddCommand(collectCommand)
}

func runCollectCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(collectConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = collectOutputDir
	}
	if cmd.Flags().Changed("lookback") {
		cfg.LookbackDays = collectLookback
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner := pipeline.NewRunner(cfg, nil, pipeline.Options{UseBrowser: collectUseBrowser})
	collectors, err := filterCollectors(runner.Collectors, collectSource)
	if err != nil {
		return err
	}

	path, err := collectOnly(context.Background(), cfg, collectors)
	if err != nil {
		return err
	}
	fmt.Printf("Raw candidates written to %s\n", path)
	return nil
}

func filterCollectors(collectors []collect.Collector, source string) ([]collect.Collector, error) {
	if source == "" {
		return collectors, nil
	}

	names := make([]string, 0, len(collectors))
	for _, c := range collectors {
		if strings.EqualFold(c.Name(), source) {
			return []collect.Collector{c}, nil
		}
		names = append(names, c.Name())
	}
	return nil, fmt.Errorf("unknown source %q (available: %s)", source, strings.Join(names, ", "))
}

func collectOnly(ctx context.Context, cfg *config.Config, collectors []collect.Collector) (string, error) {
	all := make([]types.RawCandidate, 0)
	for _, c := range collectors {
		candidates, err := c.Collect(ctx)
		if err != nil {
			fmt.Printf("Warning: collector %s: %v\n", c.Name(), err)
		}
		fmt.Printf("  %s: %d candidates\n", c.Name(), len(candidates))
		all = append(all, candidates...)
	}

	surviving, err := dedupeCollected(cfg, all)
	if err != nil {
		return "", err
	}
	fmt.Printf("  %d collected, %d surviving after dedup\n", len(all), len(surviving))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	data, err := json.MarshalIndent(surviving, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal raw candidates: %w", err)
	}

	name := fmt.Sprintf("raw_candidates_%s.json", time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(cfg.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// dedupeCollected drops candidates already in the curated dataset or the
// seen store. The store is not marked; only a full run records discoveries.
func dedupeCollected(cfg *config.Config, all []types.RawCandidate) ([]types.RawCandidate, error) {
	canon, err := normalize.LoadCanonicalSet(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	store, err := seen.Load(cfg.SeenPath)
	if err != nil {
		return nil, err
	}
	return normalize.NewNormalizer(canon, store).Process(all), nil
}
