package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/oncoscout/internal/types"
)

func classified(title string, newTest, newIndication, relevant bool, confidence float64) types.EnrichedCandidate {
	return types.EnrichedCandidate{
		RawCandidate: types.RawCandidate{
			ID:        "id-" + title,
			Source:    "PubMed",
			SourceURL: "https://example.com/" + title,
			Title:     title,
		},
		Classification: types.Classification{
			IsNewTest:       newTest,
			IsNewIndication: newIndication,
			IsRelevant:      relevant,
			Confidence:      confidence,
		},
	}
}

func TestSortCandidates_Order(t *testing.T) {
	candidates := []types.EnrichedCandidate{
		classified("irrelevant", false, false, false, 0.9),
		classified("indication", false, true, true, 0.8),
		classified("new test low", true, false, true, 0.5),
		classified("new test high", true, false, true, 0.95),
	}

	SortCandidates(candidates)

	got := make([]string, len(candidates))
	for i, c := range candidates {
		got[i] = c.Title
	}
	assert.Equal(t, []string{"new test high", "new test low", "indication", "irrelevant"}, got)
}

func TestSortCandidates_StableForTies(t *testing.T) {
	candidates := []types.EnrichedCandidate{
		classified("first", true, false, true, 0.8),
		classified("second", true, false, true, 0.8),
	}

	SortCandidates(candidates)

	assert.Equal(t, "first", candidates[0].Title)
	assert.Equal(t, "second", candidates[1].Title)
}

func TestPartitionCandidates_CountsSumToTotal(t *testing.T) {
	candidates := []types.EnrichedCandidate{
		classified("a", true, false, true, 0.9),
		classified("b", true, true, true, 0.9),  // new-test wins the tie
		classified("c", false, true, true, 0.8), // new indication
		classified("d", false, false, true, 0.7),
		classified("e", false, false, false, 0.2),
		classified("f", true, false, false, 0.9), // irrelevant despite flags
	}

	p := PartitionCandidates(candidates)

	assert.Len(t, p.NewTests, 2)
	assert.Len(t, p.NewIndications, 1)
	assert.Len(t, p.Other, 3)
	assert.Equal(t, len(candidates), p.Total())
}

func TestRenderDigest_SectionsAndCounts(t *testing.T) {
	candidates := []types.EnrichedCandidate{
		classified("NewAssay X", true, false, true, 0.9),
		classified("Known test, new use", false, true, true, 0.8),
		classified("Unrelated paper", false, false, false, 0.1),
	}
	candidates[0].Classification.TestName = "NewAssay X"
	candidates[0].Classification.Category = "MRD"
	candidates[0].Classification.Company = "Example Dx"

	digest := RenderDigest(candidates, "2026-08-31")

	assert.Contains(t, digest, "OncoScout discovery digest - 2026-08-31")
	assert.Contains(t, digest, "Candidates examined: 3")
	assert.Contains(t, digest, "NEW TESTS (1)")
	assert.Contains(t, digest, "NEW INDICATIONS (1)")
	assert.Contains(t, digest, "NOT RELEVANT / OTHER (1)")
	assert.Contains(t, digest, "MRD, confidence 0.90, Example Dx")
	assert.Contains(t, digest, "https://example.com/NewAssay X")
}

func TestRenderDigest_EmptyRun(t *testing.T) {
	digest := RenderDigest(nil, "2026-08-31")

	assert.Contains(t, digest, "Candidates examined: 0")
	assert.Contains(t, digest, "NEW TESTS (0)")
	assert.Contains(t, digest, "(none)")
}

func TestRenderDigest_FailedClassificationLandsInOther(t *testing.T) {
	failed := classified("Unclassifiable item", false, false, false, 0)
	failed.ClassificationError = "model unavailable"

	digest := RenderDigest([]types.EnrichedCandidate{failed}, "2026-08-31")

	assert.Contains(t, digest, "NOT RELEVANT / OTHER (1)")
	assert.Contains(t, digest, "classification failed")
}

func TestRunDate_UTC(t *testing.T) {
	w := NewWriter(t.TempDir())
	// 00:30 on Sep 1 in UTC+13 is still Aug 31 in UTC.
	east := time.FixedZone("UTC+13", 13*60*60)
	w.now = func() time.Time { return time.Date(2026, 9, 1, 0, 30, 0, 0, east) }

	assert.Equal(t, "2026-08-31", w.RunDate())
}

func TestWriter_Artifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	candidates := []types.EnrichedCandidate{classified("NewAssay X", true, false, true, 0.9)}
	drafts := []types.DraftSubmission{{Category: "MRD", CandidateID: "id-NewAssay X", Fields: map[string]any{"name": "NewAssay X"}}}

	candidatesPath, err := w.WriteCandidates(candidates)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, fmt.Sprintf("candidates_%s.json", w.RunDate())), candidatesPath)

	var roundTrip []types.EnrichedCandidate
	data, err := os.ReadFile(candidatesPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	require.Len(t, roundTrip, 1)
	assert.Equal(t, "NewAssay X", roundTrip[0].Title)

	draftsPath, err := w.WriteDrafts(drafts)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(draftsPath, ".json"))

	digestPath, digest, err := w.WriteDigest(candidates)
	require.NoError(t, err)
	written, err := os.ReadFile(digestPath)
	require.NoError(t, err)
	assert.Equal(t, digest, string(written))
	assert.Contains(t, digest, "NEW TESTS (1)")
}

func TestWriter_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	w := NewWriter(dir)

	_, err := w.WriteCandidates(nil)
	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
