package normalize

import (
	"strings"

	"github.com/jonathan/oncoscout/internal/seen"
	"github.com/jonathan/oncoscout/internal/types"
)

const (
	// minTitleLen is the shortest normalized title that participates in
	// containment matching. Below it, only exact matches count.
	minTitleLen = 3
	// minCanonicalLen is the shortest canonical entry used for containment
	// matching. Short entries like "mrd" would otherwise drop half the feed.
	minCanonicalLen = 5
)

// Normalizer filters raw candidates against the canonical dataset and the
// seen store. It holds both for the duration of one run.
type Normalizer struct {
	canon *CanonicalSet
	store *seen.Store
}

// NewNormalizer creates a Normalizer over a canonical set and a seen store.
func NewNormalizer(canon *CanonicalSet, store *seen.Store) *Normalizer {
	return &Normalizer{canon: canon, store: store}
}

// Process drops, in order: duplicate ids within the batch, ids already in
// the seen store, and titles matching a canonical entry. Surviving
// candidates keep their input order.
func (n *Normalizer) Process(candidates []types.RawCandidate) []types.RawCandidate {
	inBatch := make(map[string]struct{}, len(candidates))
	surviving := make([]types.RawCandidate, 0, len(candidates))

	for _, c := range candidates {
		if _, dup := inBatch[c.ID]; dup {
			continue
		}
		inBatch[c.ID] = struct{}{}

		if n.store.Has(c.ID) {
			continue
		}
		if n.MatchesCanonical(c.Title) {
			continue
		}

		surviving = append(surviving, c)
	}

	return surviving
}

// MatchesCanonical reports whether a title collides with the canonical set.
// An exact normalized match always collides. Containment in either direction
// counts only past the length guards; vendor names routinely prefix product
// names, so exact matching alone under-deduplicates.
func (n *Normalizer) MatchesCanonical(title string) bool {
	norm := NormalizeName(title)
	if norm == "" {
		return false
	}

	if _, ok := n.canon.normalized[norm]; ok {
		return true
	}

	if len(norm) <= minTitleLen {
		return false
	}
	for _, entry := range n.canon.entries {
		if len(entry) <= minCanonicalLen {
			continue
		}
		if strings.Contains(norm, entry) || strings.Contains(entry, norm) {
			return true
		}
	}

	return false
}

// MarkSeen merges every candidate into the seen store and persists it. It is
// called once per run, after enrichment, so a crash mid-pipeline never marks
// unexamined candidates as seen.
func (n *Normalizer) MarkSeen(candidates []types.EnrichedCandidate) error {
	for _, c := range candidates {
		n.store.Mark(c.RawCandidate)
	}
	return n.store.Save()
}

// KnownNames returns the canonical display names for classifier prompts.
func (n *Normalizer) KnownNames() []string {
	return n.canon.DisplayNames()
}
