// Package output persists run artifacts and renders the plain-text digest.
// Files are the authoritative record of a run; the database archive, when
// enabled, only mirrors them.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonathan/oncoscout/internal/types"
)

// Writer writes dated artifacts into the output directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a Writer for the given directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// RunDate returns the date stamp used in artifact filenames, in UTC so a
// run crossing local midnight stamps every artifact with one date.
func (w *Writer) RunDate() string {
	return w.now().UTC().Format("2006-01-02")
}

// SortCandidates orders candidates descending by (is_new_test,
// is_new_indication, confidence). The sort is stable so same-ranked
// candidates keep their collection order.
func SortCandidates(candidates []types.EnrichedCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Classification, candidates[j].Classification
		if a.IsNewTest != b.IsNewTest {
			return a.IsNewTest
		}
		if a.IsNewIndication != b.IsNewIndication {
			return a.IsNewIndication
		}
		return a.Confidence > b.Confidence
	})
}

// Partition splits candidates into the three disjoint digest buckets. Every
// candidate lands in exactly one, so the bucket counts always sum to the
// input count.
type Partition struct {
	NewTests       []types.EnrichedCandidate
	NewIndications []types.EnrichedCandidate
	Other          []types.EnrichedCandidate
}

// PartitionCandidates buckets every candidate by its classification.
func PartitionCandidates(candidates []types.EnrichedCandidate) Partition {
	var p Partition
	for _, c := range candidates {
		switch types.BucketOf(c) {
		case types.BucketNewTest:
			p.NewTests = append(p.NewTests, c)
		case types.BucketNewIndication:
			p.NewIndications = append(p.NewIndications, c)
		default:
			p.Other = append(p.Other, c)
		}
	}
	return p
}

// Total returns the number of candidates across all buckets.
func (p Partition) Total() int {
	return len(p.NewTests) + len(p.NewIndications) + len(p.Other)
}

// WriteCandidates persists the sorted classified run as
// candidates_YYYY-MM-DD.json and returns the path.
func (w *Writer) WriteCandidates(candidates []types.EnrichedCandidate) (string, error) {
	name := fmt.Sprintf("candidates_%s.json", w.RunDate())
	return w.writeJSON(name, candidates)
}

// WriteDrafts persists draft submissions as drafts_YYYY-MM-DD.json.
func (w *Writer) WriteDrafts(drafts []types.DraftSubmission) (string, error) {
	name := fmt.Sprintf("drafts_%s.json", w.RunDate())
	return w.writeJSON(name, drafts)
}

// WriteDigest renders the digest and persists it as digest_YYYY-MM-DD.txt.
func (w *Writer) WriteDigest(candidates []types.EnrichedCandidate) (string, string, error) {
	digest := RenderDigest(candidates, w.RunDate())
	name := fmt.Sprintf("digest_%s.txt", w.RunDate())

	if err := w.ensureDir(); err != nil {
		return "", "", err
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(digest), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write digest: %w", err)
	}
	return path, digest, nil
}

func (w *Writer) writeJSON(name string, content any) (string, error) {
	if err := w.ensureDir(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

func (w *Writer) ensureDir() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}
	return nil
}
