// Package pipeline orchestrates a discovery run: concurrent collection,
// normalization, enrichment, seen-store persistence, drafting, and output.
// Data flows strictly forward; no stage calls back into an earlier one.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/oncoscout/internal/collect"
	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/db"
	"github.com/jonathan/oncoscout/internal/draft"
	"github.com/jonathan/oncoscout/internal/enrich"
	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/normalize"
	"github.com/jonathan/oncoscout/internal/notify"
	"github.com/jonathan/oncoscout/internal/observability"
	"github.com/jonathan/oncoscout/internal/output"
	"github.com/jonathan/oncoscout/internal/seen"
	"github.com/jonathan/oncoscout/internal/types"
)

// Options are the per-run switches on top of the immutable Config.
type Options struct {
	SkipEnrichment bool
	SkipDrafts     bool
	SkipEmail      bool
	UseBrowser     bool
	LLMDrafts      bool
	Verbose        bool
}

// Summary reports what a run did.
type Summary struct {
	RunDate        string `json:"run_date"`
	Collected      int    `json:"collected"`
	Surviving      int    `json:"surviving"`
	NewTests       int    `json:"new_tests"`
	NewIndications int    `json:"new_indications"`
	Other          int    `json:"other"`
	Drafted        int    `json:"drafted"`
	CandidatesPath string `json:"candidates_path"`
	DigestPath     string `json:"digest_path"`
	DraftsPath     string `json:"drafts_path,omitempty"`
}

// Runner wires the pipeline stages. The zero value is not usable; build it
// with NewRunner, then override the exported fields in tests as needed.
type Runner struct {
	Collectors []collect.Collector
	LLM        llm.Client
	Notifier   *notify.Notifier
	Writer     *output.Writer

	cfg  *config.Config
	opts Options
}

// NewRunner builds a Runner with the default collectors for the config.
// client may be nil; the enrichment and LLM-draft stages then degrade.
func NewRunner(cfg *config.Config, client llm.Client, opts Options) *Runner {
	return &Runner{
		Collectors: []collect.Collector{
			collect.NewFDACollector(cfg, nil),
			collect.NewPubMedCollector(cfg, nil),
			collect.NewNewsroomCollector(cfg, nil, opts.UseBrowser),
			collect.NewTrialsCollector(cfg, nil),
		},
		LLM:      client,
		Notifier: notify.New(cfg, nil),
		Writer:   output.NewWriter(cfg.OutputDir),
		cfg:      cfg,
		opts:     opts,
	}
}

// Run executes the full pipeline and returns its summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	printer := observability.NewPrinter(os.Stdout)
	archive, runID := r.openArchive(ctx)
	if archive != nil {
		defer archive.Close()
	}

	fmt.Printf("Step 1/6: Collecting from %d sources...\n", len(r.Collectors))
	raw := r.collectAll(ctx)
	fmt.Printf("  collected %d raw candidates\n", len(raw))

	fmt.Printf("Step 2/6: Deduplicating against dataset and seen store...\n")
	canon, err := normalize.LoadCanonicalSet(r.cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load canonical set: %w", err)
	}
	store, err := seen.Load(r.cfg.SeenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen store: %w", err)
	}
	normalizer := normalize.NewNormalizer(canon, store)
	surviving := normalizer.Process(raw)
	fmt.Printf("  %d candidates survive (%d canonical entries, %d previously seen ids)\n",
		len(surviving), canon.Size(), store.Len())

	enriched := r.enrichAll(ctx, normalizer, surviving)
	if r.opts.Verbose {
		for _, c := range enriched {
			printer.PrintCandidate(c)
		}
	}

	fmt.Printf("Step 4/6: Marking %d candidates as seen...\n", len(enriched))
	if err := normalizer.MarkSeen(enriched); err != nil {
		return nil, fmt.Errorf("failed to persist seen store: %w", err)
	}

	drafts, draftsRan := r.draftAll(ctx, enriched)

	summary, err := r.emit(ctx, enriched, drafts, draftsRan)
	if err != nil {
		return nil, err
	}
	summary.Collected = len(raw)
	summary.Surviving = len(surviving)

	r.completeArchive(ctx, archive, runID, summary, enriched, drafts)
	if r.opts.Verbose {
		printer.PrintRunSummary(summary.Collected, summary.Surviving, summary.NewTests,
			summary.NewIndications, summary.Other, summary.Drafted)
	}
	return summary, nil
}

// collectAll runs every collector concurrently, each writing its own slot.
// A failing collector logs a warning and contributes what it managed to
// gather before failing.
func (r *Runner) collectAll(ctx context.Context) []types.RawCandidate {
	results := make([][]types.RawCandidate, len(r.Collectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, collector := range r.Collectors {
		g.Go(func() error {
			candidates, err := collector.Collect(gctx)
			if err != nil {
				fmt.Printf("Warning: collector %s: %v\n", collector.Name(), err)
			}
			results[i] = candidates
			return nil
		})
	}
	// Collector errors never propagate, so Wait cannot fail.
	_ = g.Wait()

	var merged []types.RawCandidate
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged
}

// enrichAll is step 3. Skipping enrichment, or running without a model
// client, leaves zero-value classifications so every later stage still
// functions.
func (r *Runner) enrichAll(ctx context.Context, normalizer *normalize.Normalizer, surviving []types.RawCandidate) []types.EnrichedCandidate {
	if r.opts.SkipEnrichment || r.LLM == nil {
		if !r.opts.SkipEnrichment {
			fmt.Printf("Step 3/6: Skipping enrichment (no model client configured)\n")
		} else {
			fmt.Printf("Step 3/6: Skipping enrichment (disabled)\n")
		}
		enriched := make([]types.EnrichedCandidate, len(surviving))
		for i, c := range surviving {
			enriched[i] = types.EnrichedCandidate{RawCandidate: c}
		}
		return enriched
	}

	fmt.Printf("Step 3/6: Classifying %d candidates...\n", len(surviving))
	enricher := enrich.New(r.LLM, llm.ModelTier(r.cfg.LLM.Tier), r.cfg.LLMTimeout(), normalizer.KnownNames())
	return enricher.EnrichAll(ctx, surviving)
}

// draftAll is step 5. The boolean reports whether drafting ran at all,
// which controls whether a drafts artifact is written.
func (r *Runner) draftAll(ctx context.Context, enriched []types.EnrichedCandidate) ([]types.DraftSubmission, bool) {
	if r.opts.SkipDrafts {
		fmt.Printf("Step 5/6: Skipping drafts (disabled)\n")
		return nil, false
	}

	drafter := draft.New(r.cfg.DraftThreshold)
	if r.opts.LLMDrafts && r.LLM != nil {
		drafter = drafter.WithLLM(r.LLM, llm.ModelTier(r.cfg.LLM.Tier), r.cfg.LLMTimeout())
	}

	drafts := drafter.GenerateAll(ctx, enriched)
	fmt.Printf("Step 5/6: Generated %d draft submissions\n", len(drafts))
	return drafts, true
}

// emit is step 6: artifacts, digest, notification.
func (r *Runner) emit(ctx context.Context, enriched []types.EnrichedCandidate, drafts []types.DraftSubmission, draftsRan bool) (*Summary, error) {
	fmt.Printf("Step 6/6: Writing artifacts and sending notifications...\n")

	output.SortCandidates(enriched)
	partition := output.PartitionCandidates(enriched)

	summary := &Summary{
		RunDate:        r.Writer.RunDate(),
		NewTests:       len(partition.NewTests),
		NewIndications: len(partition.NewIndications),
		Other:          len(partition.Other),
		Drafted:        len(drafts),
	}

	candidatesPath, err := r.Writer.WriteCandidates(enriched)
	if err != nil {
		return nil, err
	}
	summary.CandidatesPath = candidatesPath

	digestPath, digest, err := r.Writer.WriteDigest(enriched)
	if err != nil {
		return nil, err
	}
	summary.DigestPath = digestPath
	fmt.Println(digest)

	if draftsRan {
		draftsPath, err := r.Writer.WriteDrafts(drafts)
		if err != nil {
			return nil, err
		}
		summary.DraftsPath = draftsPath
	}

	if r.opts.SkipEmail {
		fmt.Printf("Email notification skipped (disabled)\n")
	} else if err := r.Notifier.Notify(ctx, enriched); err != nil {
		// Delivery failure costs the notification, never the run.
		fmt.Printf("Warning: notification failed: %v\n", err)
	}

	return summary, nil
}

// openArchive connects to the optional Postgres archive. Any failure logs a
// warning and the run proceeds file-only, matching the artifacts-first
// contract.
func (r *Runner) openArchive(ctx context.Context) (*db.DB, uuid.UUID) {
	if r.cfg.DatabaseURL == "" {
		return nil, uuid.Nil
	}

	archive, err := db.Connect(ctx, r.cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("Warning: failed to connect to database: %v\n", err)
		fmt.Printf("Continuing without database persistence...\n")
		return nil, uuid.Nil
	}
	if err := archive.EnsureSchema(ctx); err != nil {
		fmt.Printf("Warning: %v\n", err)
		fmt.Printf("Continuing without database persistence...\n")
		archive.Close()
		return nil, uuid.Nil
	}

	runID, err := archive.CreateRun(ctx)
	if err != nil {
		fmt.Printf("Warning: %v\n", err)
		archive.Close()
		return nil, uuid.Nil
	}
	return archive, runID
}

func (r *Runner) completeArchive(ctx context.Context, archive *db.DB, runID uuid.UUID, summary *Summary, enriched []types.EnrichedCandidate, drafts []types.DraftSubmission) {
	if archive == nil {
		return
	}

	if err := archive.SaveCandidates(ctx, runID, enriched); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	if err := archive.SaveDrafts(ctx, runID, drafts); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	if err := archive.CompleteRun(ctx, runID, "completed",
		summary.Collected, summary.Surviving, summary.Drafted); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
}
