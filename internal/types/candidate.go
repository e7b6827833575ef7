// Package types provides type definitions for structured data used throughout the oncoscout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// RawCandidate represents a single detection produced by a source collector.
// It is immutable once created; the enrichment stage wraps it rather than
// mutating it.
type RawCandidate struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	SourceURL    string          `json:"source_url"`
	DiscoveredAt string          `json:"discovered_at"` // RFC 3339, time of collection
	Title        string          `json:"title"`
	Company      string          `json:"company"`
	Date         string          `json:"date,omitempty"` // event date reported by the source
	RawData      json.RawMessage `json:"raw_data,omitempty"`
}

// Classification represents the structured response from the classification model.
type Classification struct {
	IsNewTest            bool     `json:"is_new_test"`
	IsNewIndication      bool     `json:"is_new_indication"`
	IsRelevant           bool     `json:"is_relevant"`
	RelevanceReason      string   `json:"relevance_reason,omitempty"`
	TestName             string   `json:"test_name,omitempty"`
	Company              string   `json:"company,omitempty"`
	CancerTypes          []string `json:"cancer_types,omitempty"`
	SampleType           string   `json:"sample_type,omitempty"`
	Methodology          string   `json:"methodology,omitempty"`
	Category             string   `json:"category,omitempty"`
	FDAStatus            string   `json:"fda_status,omitempty"`
	ClearanceDate        string   `json:"clearance_date,omitempty"`
	KeyClaims            []string `json:"key_claims,omitempty"`
	Biomarkers           []string `json:"biomarkers,omitempty"`
	ExistingTestName     string   `json:"existing_test_name,omitempty"`
	NewIndicationDetails string   `json:"new_indication_details,omitempty"`
	Notes                string   `json:"notes,omitempty"`
	Confidence           float64  `json:"confidence"`
}

// EnrichedCandidate represents a RawCandidate after the classification stage.
// A failed classification leaves the zero-value Classification (confidence 0,
// all flags false) and records the error text.
type EnrichedCandidate struct {
	RawCandidate
	Classification      Classification `json:"classification"`
	ClassificationError string         `json:"classification_error,omitempty"`
}

// Bucket partitions enriched candidates for digests and notifications.
type Bucket int

const (
	// BucketNewTest holds relevant candidates flagged as genuinely new tests.
	BucketNewTest Bucket = iota
	// BucketNewIndication holds relevant candidates describing a known test in a new context.
	BucketNewIndication
	// BucketOther holds everything else: irrelevant, failed, or updates to known entries.
	BucketOther
)

// BucketOf assigns an enriched candidate to exactly one bucket. New-test
// takes precedence over new-indication so the three buckets are disjoint and
// cover every candidate.
func BucketOf(c EnrichedCandidate) Bucket {
	switch {
	case c.Classification.IsRelevant && c.Classification.IsNewTest:
		return BucketNewTest
	case c.Classification.IsRelevant && c.Classification.IsNewIndication:
		return BucketNewIndication
	default:
		return BucketOther
	}
}
