// Package seen persists the ids of previously processed candidates so that
// no run ever re-surfaces a detection an earlier run already handled.
//
// The store is a single JSON file read once at run start and written once
// after enrichment. Within a run there is exactly one writer; saving merges
// newly marked entries into the loaded map, so prior ids are never dropped.
package seen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonathan/oncoscout/internal/types"
)

// Record holds the minimal metadata kept per seen candidate id.
type Record struct {
	Source       string `json:"source"`
	Title        string `json:"title"`
	Company      string `json:"company,omitempty"`
	DiscoveredAt string `json:"discovered_at"`
}

// Store is the in-memory view of the seen file for one run.
type Store struct {
	path    string
	records map[string]Record
	added   int
}

// Load reads the seen file at path. A missing file yields an empty store;
// any other read or parse failure is an error so a corrupt store is never
// silently overwritten.
func Load(path string) (*Store, error) {
	store := &Store{
		path:    path,
		records: make(map[string]Record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read seen store %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &store.records); err != nil {
		return nil, fmt.Errorf("failed to parse seen store %s: %w", path, err)
	}

	return store, nil
}

// Has reports whether an id was already seen by a previous run or marked in
// this one.
func (s *Store) Has(id string) bool {
	_, ok := s.records[id]
	return ok
}

// Len returns the number of known ids, including ones marked this run.
func (s *Store) Len() int {
	return len(s.records)
}

// Added returns how many ids this run has marked so far.
func (s *Store) Added() int {
	return s.added
}

// Mark records a candidate as seen. Re-marking a known id is a no-op so the
// added count stays meaningful.
func (s *Store) Mark(c types.RawCandidate) {
	if _, ok := s.records[c.ID]; ok {
		return
	}
	s.records[c.ID] = Record{
		Source:       c.Source,
		Title:        c.Title,
		Company:      c.Company,
		DiscoveredAt: c.DiscoveredAt,
	}
	s.added++
}

// Save writes the merged map back to disk, creating parent directories as
// needed.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create seen store directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write seen store %s: %w", s.path, err)
	}

	return nil
}

// Entry pairs an id with its record for listing.
type Entry struct {
	ID string
	Record
}

// Entries returns all records sorted newest first, for the CLI's inspection
// command.
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, len(s.records))
	for id, rec := range s.records {
		entries = append(entries, Entry{ID: id, Record: rec})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DiscoveredAt != entries[j].DiscoveredAt {
			return entries[i].DiscoveredAt > entries[j].DiscoveredAt
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}
