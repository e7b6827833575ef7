// Package normalize deduplicates raw detections against the curated dataset
// and the cross-run seen store.
package normalize

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// namePattern matches name- and vendor-bearing key/value pairs in the dataset
// snapshot. The snapshot is a JS module, not strict JSON, so both quoted and
// bare keys appear.
var namePattern = regexp.MustCompile(`(?:"name"|\bname|"vendor"|\bvendor)\s*:\s*"([^"]+)"`)

// markPattern strips decorative trademark marks during normalization.
var markPattern = regexp.MustCompile(`®|™|\(R\)|\(r\)|\(TM\)|\(tm\)`)

// spacePattern collapses whitespace runs.
var spacePattern = regexp.MustCompile(`\s+`)

// NormalizeName maps a test or vendor name onto its canonical comparison
// form: lowercase, hyphens and underscores as spaces, trademark marks
// removed, whitespace collapsed.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = markPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CanonicalSet holds the normalized names and vendors extracted from the
// dataset snapshot. It is rebuilt fresh each run and never written back.
type CanonicalSet struct {
	normalized map[string]struct{}
	entries    []string // normalized, for containment checks
	display    []string // original spelling, for classifier prompts
}

// LoadCanonicalSet scans the dataset snapshot for name and vendor values.
// Only those key/value occurrences are read; the dataset's full schema is
// deliberately not parsed. A missing snapshot yields an empty set so a fresh
// checkout still runs.
func LoadCanonicalSet(path string) (*CanonicalSet, error) {
	set := &CanonicalSet{normalized: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("failed to read dataset snapshot %s: %w", path, err)
	}

	for _, match := range namePattern.FindAllStringSubmatch(string(data), -1) {
		set.add(match[1])
	}

	sort.Strings(set.entries)
	sort.Strings(set.display)
	return set, nil
}

// NewCanonicalSet builds a set from explicit names, for tests and callers
// that already hold the dataset in memory.
func NewCanonicalSet(names []string) *CanonicalSet {
	set := &CanonicalSet{normalized: make(map[string]struct{})}
	for _, name := range names {
		set.add(name)
	}
	sort.Strings(set.entries)
	sort.Strings(set.display)
	return set
}

func (s *CanonicalSet) add(name string) {
	norm := NormalizeName(name)
	if norm == "" {
		return
	}
	if _, ok := s.normalized[norm]; ok {
		return
	}
	s.normalized[norm] = struct{}{}
	s.entries = append(s.entries, norm)
	s.display = append(s.display, strings.TrimSpace(name))
}

// Size returns the number of distinct canonical entries.
func (s *CanonicalSet) Size() int {
	return len(s.entries)
}

// DisplayNames returns the canonical names in their original spelling.
func (s *CanonicalSet) DisplayNames() []string {
	return s.display
}

// Contains reports whether the normalized form of name is exactly canonical.
func (s *CanonicalSet) Contains(name string) bool {
	_, ok := s.normalized[NormalizeName(name)]
	return ok
}
