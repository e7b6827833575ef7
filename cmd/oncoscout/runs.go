package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/db"
	"github.com/jonathan/oncoscout/internal/output"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List archived discovery runs",
	Long: `Lists runs mirrored to the PostgreSQL archive, newest first. With
--show, prints the digest for one archived run's candidates. Requires
DATABASE_URL; file artifacts remain the authoritative record.`,
	RunE: runRunsCmd,
}

var (
	runsConfigPath string
	runsLimit      int
	runsShowID     string
)

func init() {
	runsCommand.Flags().StringVar(&runsConfigPath, "config", "", "Path to config YAML")
	runsCommand.Flags().IntVar(&runsLimit, "limit", 10, "Show at most this many runs")
	runsCommand.Flags().StringVar(&runsShowID, "show", "", "Render the digest for the archived run with this id")

	rootCmd.AddCommand(runsCommand)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(runsConfigPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set; the run archive is disabled")
	}

	archive, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer archive.Close()

	if runsShowID != "" {
		return showArchivedRun(ctx, archive, runsShowID, os.Stdout)
	}
	return listArchivedRuns(ctx, archive, runsLimit, os.Stdout)
}

func listArchivedRuns(ctx context.Context, archive *db.DB, limit int, out io.Writer) error {
	runs, err := archive.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	writeRunsList(out, runs)
	return nil
}

func writeRunsList(out io.Writer, runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived runs.")
		return
	}
	for _, run := range runs {
		completed := "running"
		if run.CompletedAt != nil {
			completed = run.CompletedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%s  %s  %-9s  collected=%d surviving=%d drafted=%d\n",
			run.ID, completed, run.Status, run.Collected, run.Surviving, run.Drafted)
	}
}

func showArchivedRun(ctx context.Context, archive *db.DB, rawID string, out io.Writer) error {
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", rawID, err)
	}

	candidates, err := archive.CandidatesForRun(ctx, runID)
	if err != nil {
		return err
	}

	output.SortCandidates(candidates)
	fmt.Fprint(out, output.RenderDigest(candidates, runID.String()))
	return nil
}
