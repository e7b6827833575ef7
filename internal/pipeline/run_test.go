package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/oncoscout/internal/collect"
	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/notify"
	"github.com/jonathan/oncoscout/internal/output"
	"github.com/jonathan/oncoscout/internal/types"
)

// fakeCollector returns canned candidates, optionally with an error.
type fakeCollector struct {
	name       string
	candidates []types.RawCandidate
	err        error
}

func (f *fakeCollector) Name() string { return f.name }

func (f *fakeCollector) Collect(context.Context) ([]types.RawCandidate, error) {
	return f.candidates, f.err
}

// fakeLLM classifies every candidate with the same canned response.
type fakeLLM struct {
	response string
	calls    int
}

func (f *fakeLLM) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(context.Background(), prompt, tier)
}

func (f *fakeLLM) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	f.calls++
	return f.response, nil
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

func rawCandidate(source, title string) types.RawCandidate {
	url := "https://example.com/" + title
	return types.RawCandidate{
		ID:           collect.CandidateID(source, url, title),
		Source:       source,
		SourceURL:    url,
		DiscoveredAt: "2026-08-31T08:00:00Z",
		Title:        title,
	}
}

// newTestRunner builds a Runner over temp paths, fake collectors, and a
// fake model, with email disabled.
func newTestRunner(t *testing.T, opts Options, client llm.Client, collectors ...collect.Collector) (*Runner, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DatasetPath = filepath.Join(dir, "dataset.js")
	cfg.SeenPath = filepath.Join(dir, "seen.json")
	cfg.OutputDir = filepath.Join(dir, "output")
	cfg.Email.Enabled = false

	runner := NewRunner(cfg, client, opts)
	runner.Collectors = collectors
	runner.Notifier = notify.New(cfg, nil)
	runner.Writer = output.NewWriter(cfg.OutputDir)
	return runner, cfg
}

const newTestResponse = `{
  "is_new_test": true, "is_new_indication": false, "is_relevant": true,
  "test_name": "NewAssay X", "company": "Example Dx", "category": "MRD",
  "fda_status": "CLIA LDT", "confidence": 0.9
}`

func TestRun_EndToEnd(t *testing.T) {
	model := &fakeLLM{response: newTestResponse}
	runner, cfg := newTestRunner(t, Options{}, model,
		&fakeCollector{name: "A", candidates: []types.RawCandidate{rawCandidate("A", "NewAssay X validation")}},
		&fakeCollector{name: "B", candidates: []types.RawCandidate{rawCandidate("B", "Another finding")}},
	)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Collected)
	assert.Equal(t, 2, summary.Surviving)
	assert.Equal(t, 2, summary.NewTests)
	assert.Equal(t, 2, summary.Drafted)
	assert.Equal(t, 2, model.calls)

	// All three artifacts exist.
	for _, path := range []string{summary.CandidatesPath, summary.DigestPath, summary.DraftsPath} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	// Both candidates were marked seen.
	seenData, err := os.ReadFile(cfg.SeenPath)
	require.NoError(t, err)
	var seenRecords map[string]any
	require.NoError(t, json.Unmarshal(seenData, &seenRecords))
	assert.Len(t, seenRecords, 2)
}

func TestRun_FailingCollectorIsIsolated(t *testing.T) {
	runner, _ := newTestRunner(t, Options{SkipEnrichment: true, SkipDrafts: true, SkipEmail: true}, nil,
		&fakeCollector{name: "broken", err: errors.New("connection refused")},
		&fakeCollector{name: "working", candidates: []types.RawCandidate{rawCandidate("working", "Survivor")}},
	)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Collected)
	assert.Equal(t, 1, summary.Surviving)
}

func TestRun_PartialResultsFromFailingCollectorAreKept(t *testing.T) {
	partial := &fakeCollector{
		name:       "flaky",
		candidates: []types.RawCandidate{rawCandidate("flaky", "Got this before failing")},
		err:        errors.New("stream two timed out"),
	}
	runner, _ := newTestRunner(t, Options{SkipEnrichment: true, SkipDrafts: true, SkipEmail: true}, nil, partial)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Collected)
}

func TestRun_SecondRunSeesNothingNew(t *testing.T) {
	collector := &fakeCollector{name: "A", candidates: []types.RawCandidate{rawCandidate("A", "Same item")}}
	opts := Options{SkipEnrichment: true, SkipDrafts: true, SkipEmail: true}
	runner, cfg := newTestRunner(t, opts, nil, collector)

	first, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Surviving)

	// Same config and seen path: the id is now on record.
	second := NewRunner(cfg, nil, opts)
	second.Collectors = []collect.Collector{collector}
	summary, err := second.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Collected)
	assert.Zero(t, summary.Surviving)
}

func TestRun_CanonicalTitleDroppedBeforeEnrichment(t *testing.T) {
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "dataset.js")
	require.NoError(t, os.WriteFile(datasetPath,
		[]byte(`const tests = [{ name: "Signatera", vendor: "Natera" }];`), 0644))

	model := &fakeLLM{response: newTestResponse}
	runner, cfg := newTestRunner(t, Options{SkipDrafts: true, SkipEmail: true}, model,
		&fakeCollector{name: "A", candidates: []types.RawCandidate{rawCandidate("A", "Signatera")}},
	)
	cfg.DatasetPath = datasetPath

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Surviving)
	assert.Zero(t, model.calls, "a canonical title must never reach the classifier")
}

func TestRun_SkipEnrichmentLeavesZeroValueClassifications(t *testing.T) {
	runner, _ := newTestRunner(t, Options{SkipEnrichment: true, SkipDrafts: true, SkipEmail: true}, nil,
		&fakeCollector{name: "A", candidates: []types.RawCandidate{rawCandidate("A", "Unclassified item")}},
	)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(summary.CandidatesPath)
	require.NoError(t, err)
	var enriched []types.EnrichedCandidate
	require.NoError(t, json.Unmarshal(data, &enriched))
	require.Len(t, enriched, 1)
	assert.Zero(t, enriched[0].Classification.Confidence)
	assert.False(t, enriched[0].Classification.IsRelevant)

	// Zero-value classifications land in the "other" bucket.
	assert.Equal(t, 1, summary.Other)
	assert.Zero(t, summary.NewTests)
}

func TestRun_BucketCountsSumToTotal(t *testing.T) {
	model := &fakeLLM{response: newTestResponse}
	runner, _ := newTestRunner(t, Options{SkipDrafts: true, SkipEmail: true}, model,
		&fakeCollector{name: "A", candidates: []types.RawCandidate{
			rawCandidate("A", "first"),
			rawCandidate("A", "second"),
			rawCandidate("A", "third"),
		}},
	)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.Surviving, summary.NewTests+summary.NewIndications+summary.Other)
}
