package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/oncoscout/internal/types"
)

// newTestDB connects to the database named by TEST_DATABASE_URL, skipping
// when it is unset.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping archive integration test")
	}

	database, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, database.EnsureSchema(context.Background()))
	return database
}

func TestArchiveRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	runID, err := database.CreateRun(ctx)
	require.NoError(t, err)

	candidates := []types.EnrichedCandidate{
		{
			RawCandidate: types.RawCandidate{
				ID:        "itest001",
				Source:    "PubMed",
				SourceURL: "https://example.com/1",
				Title:     "Integration test assay",
			},
			Classification: types.Classification{IsRelevant: true, IsNewTest: true, Confidence: 0.9},
		},
	}
	require.NoError(t, database.SaveCandidates(ctx, runID, candidates))

	drafts := []types.DraftSubmission{
		{Category: "MRD", CandidateID: "itest001", Fields: map[string]any{"name": "Integration test assay"}},
	}
	require.NoError(t, database.SaveDrafts(ctx, runID, drafts))

	require.NoError(t, database.CompleteRun(ctx, runID, "completed", 1, 1, 1))

	// Saving the same candidate again upserts rather than failing.
	require.NoError(t, database.SaveCandidates(ctx, runID, candidates))

	stored, err := database.CandidatesForRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Integration test assay", stored[0].Title)
	assert.True(t, stored[0].Classification.IsNewTest)

	runs, err := database.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	found := false
	for _, run := range runs {
		if run.ID == runID {
			found = true
			assert.Equal(t, "completed", run.Status)
			assert.Equal(t, 1, run.Collected)
			assert.NotNil(t, run.CompletedAt)
		}
	}
	assert.True(t, found, "archived run should appear in recent runs")
}
