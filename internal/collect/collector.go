// Package collect gathers raw detection candidates from external sources:
// FDA device clearances, PubMed, company newsrooms, and ClinicalTrials.gov.
// Each source is one Collector; a failing source yields what it has plus an
// error, and never affects its siblings.
package collect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/jonathan/oncoscout/internal/types"
)

// Collector is the capability every source adapter implements.
type Collector interface {
	// Name identifies the source in logs and summaries.
	Name() string
	// Collect queries the source and returns zero or more raw candidates.
	// Partial results alongside an error are valid; the caller keeps both.
	Collect(ctx context.Context) ([]types.RawCandidate, error)
}

// idLength is the number of hex characters kept from the content hash.
const idLength = 16

// CandidateID computes the deterministic candidate fingerprint. The same
// (source, sourceURL, title) triple always yields the same id, across runs
// and processes; raw_data never participates.
func CandidateID(source, sourceURL, title string) string {
	sum := sha256.Sum256([]byte(source + "|" + sourceURL + "|" + title))
	return hex.EncodeToString(sum[:])[:idLength]
}

// oncologyKeywords is the terminology filter shared by the registry-style
// collectors. A record must mention at least one of these to surface.
var oncologyKeywords = []string{
	"cancer",
	"tumor",
	"oncology",
	"liquid biopsy",
	"ctDNA",
	"circulating tumor",
}
