package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/oncoscout/internal/types"
)

// bucketLabel archives the digest bucket as a queryable column.
func bucketLabel(c types.EnrichedCandidate) string {
	switch types.BucketOf(c) {
	case types.BucketNewTest:
		return "new_test"
	case types.BucketNewIndication:
		return "new_indication"
	default:
		return "other"
	}
}

// SaveCandidates mirrors the classified run into the archive.
func (db *DB) SaveCandidates(ctx context.Context, runID uuid.UUID, candidates []types.EnrichedCandidate) error {
	for _, c := range candidates {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal candidate %s: %w", c.ID, err)
		}

		_, err = db.pool.Exec(ctx,
			`INSERT INTO run_candidates (run_id, candidate_id, bucket, payload)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (run_id, candidate_id) DO UPDATE SET bucket = $3, payload = $4`,
			runID, c.ID, bucketLabel(c), payload,
		)
		if err != nil {
			return fmt.Errorf("failed to save candidate %s: %w", c.ID, err)
		}
	}
	return nil
}

// SaveDrafts mirrors the run's draft submissions into the archive.
func (db *DB) SaveDrafts(ctx context.Context, runID uuid.UUID, drafts []types.DraftSubmission) error {
	for _, d := range drafts {
		payload, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal draft %s: %w", d.CandidateID, err)
		}

		_, err = db.pool.Exec(ctx,
			`INSERT INTO run_drafts (run_id, candidate_id, category, payload)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (run_id, candidate_id) DO UPDATE SET category = $3, payload = $4`,
			runID, d.CandidateID, d.Category, payload,
		)
		if err != nil {
			return fmt.Errorf("failed to save draft %s: %w", d.CandidateID, err)
		}
	}
	return nil
}

// CandidatesForRun reads back a run's archived candidates.
func (db *DB) CandidatesForRun(ctx context.Context, runID uuid.UUID) ([]types.EnrichedCandidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT payload FROM run_candidates WHERE run_id = $1 ORDER BY candidate_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.EnrichedCandidate
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var c types.EnrichedCandidate
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
