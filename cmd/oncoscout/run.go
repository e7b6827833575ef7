package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full discovery pipeline end-to-end",
	Long: `Collects from all sources concurrently, deduplicates against the dataset
and the seen store, classifies survivors, drafts high-confidence new tests,
writes the run artifacts, and sends the notification email.

Configuration comes from compiled-in defaults, overlaid by --config YAML,
the environment, and finally any changed flags.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runOutputDir      string
	runLookback       int
	runSkipEnrichment bool
	runSkipDrafts     bool
	runSkipEmail      bool
	runUseBrowser     bool
	runLLMDrafts      bool
	runModel          string
	runAPIKey         string
	runVerbose        bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config YAML (overlays compiled-in defaults)")
	runCommand.Flags().StringVar(&runOutputDir, "output-dir", "", "Directory for run artifacts")
	runCommand.Flags().IntVar(&runLookback, "lookback", 0, "Lookback window in days for source queries")
	runCommand.Flags().BoolVar(&runSkipEnrichment, "skip-enrichment", false, "Skip the classification stage")
	runCommand.Flags().BoolVar(&runSkipDrafts, "skip-drafts", false, "Skip draft generation")
	runCommand.Flags().BoolVar(&runSkipEmail, "skip-email", false, "Skip the notification email")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Render JS-heavy newsroom pages in a headless browser (requires Chrome)")
	runCommand.Flags().BoolVar(&runLLMDrafts, "llm-drafts", false, "Fill drafts with the model instead of the deterministic mapping")
	runCommand.Flags().StringVar(&runModel, "model", "", "Override the classification model name")
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed per-candidate information")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("lookback") {
		cfg.LookbackDays = runLookback
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = runModel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg, runSkipEnrichment && !runLLMDrafts)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	runner := pipeline.NewRunner(cfg, client, pipeline.Options{
		SkipEnrichment: runSkipEnrichment,
		SkipDrafts:     runSkipDrafts,
		SkipEmail:      runSkipEmail,
		UseBrowser:     runUseBrowser,
		LLMDrafts:      runLLMDrafts,
		Verbose:        runVerbose,
	})

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Printf("Run complete: %d collected, %d surviving, %d new tests, %d new indications, %d drafts\n",
		summary.Collected, summary.Surviving, summary.NewTests, summary.NewIndications, summary.Drafted)
	return nil
}

// newLLMClient builds the Gemini client unless the run has no use for a
// model. A missing key degrades to a warning: the pipeline still runs, with
// zero-value classifications.
func newLLMClient(ctx context.Context, cfg *config.Config, modelUnused bool) (llm.Client, error) {
	if modelUnused {
		return nil, nil
	}
	if cfg.APIKey == "" {
		fmt.Println("Warning: GEMINI_API_KEY not set; enrichment and LLM drafting disabled")
		return nil, nil
	}

	llmCfg := llm.DefaultConfig()
	if cfg.LLM.Model != "" {
		llmCfg = llmCfg.WithModel(llm.ModelTier(cfg.LLM.Tier), cfg.LLM.Model)
	}

	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return client, nil
}
