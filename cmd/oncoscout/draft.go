package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/draft"
	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/observability"
	"github.com/jonathan/oncoscout/internal/output"
	"github.com/jonathan/oncoscout/internal/types"
)

var draftCommand = &cobra.Command{
	Use:   "draft",
	Short: "Regenerate drafts from a saved candidates file",
	Long: `Reads the classified candidates of a previous run and regenerates the
draft records, without touching the sources or the seen store. Lets you
retry drafting (for example with --llm) after the collection already ran.`,
	RunE: runDraftCmd,
}

var (
	draftConfigPath string
	draftInputPath  string
	draftOutputDir  string
	draftUseLLM     bool
	draftAPIKey     string
)

func init() {
	draftCommand.Flags().StringVar(&draftConfigPath, "config", "", "Path to config YAML")
	draftCommand.Flags().StringVar(&draftInputPath, "input", "", "Path to a candidates_YYYY-MM-DD.json file from a previous run")
	draftCommand.Flags().StringVar(&draftOutputDir, "output-dir", "", "Directory for the regenerated drafts file")
	draftCommand.Flags().BoolVar(&draftUseLLM, "llm", false, "Fill drafts with the model instead of the deterministic mapping")
	draftCommand.Flags().StringVar(&draftAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	_ = draftCommand.MarkFlagRequired("input")

	rootCmd.AddCommand(draftCommand)
}

func runDraftCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(draftConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = draftOutputDir
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = draftAPIKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	candidates, err := loadCandidates(draftInputPath)
	if err != nil {
		return err
	}

	drafter := draft.New(cfg.DraftThreshold)
	if draftUseLLM {
		client, err := newLLMClient(ctx, cfg, false)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("--llm requires an API key")
		}
		defer func() { _ = client.Close() }()
		drafter = drafter.WithLLM(client, llm.ModelTier(cfg.LLM.Tier), cfg.LLMTimeout())
	}

	drafts := drafter.GenerateAll(ctx, candidates)
	printer := observability.NewPrinter(os.Stdout)
	for _, d := range drafts {
		printer.PrintDraft(d)
	}

	path, err := output.NewWriter(cfg.OutputDir).WriteDrafts(drafts)
	if err != nil {
		return err
	}
	fmt.Printf("%d drafts (of %d candidates) written to %s\n", len(drafts), len(candidates), path)
	return nil
}

func loadCandidates(path string) ([]types.EnrichedCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates file %s: %w", path, err)
	}

	var candidates []types.EnrichedCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse candidates file %s: %w", path, err)
	}
	return candidates, nil
}
