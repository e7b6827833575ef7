package types

// DraftStrategy identifies which drafting path produced a submission.
type DraftStrategy string

const (
	// StrategyMapped is the deterministic field-mapping path.
	StrategyMapped DraftStrategy = "mapped"
	// StrategyLLM is the model-assisted free-form fill path.
	StrategyLLM DraftStrategy = "llm"
)

// DraftSubmission represents a proposed dataset entry generated from a
// high-confidence new-test classification. It is a human-review artifact,
// never written into the dataset automatically.
type DraftSubmission struct {
	Category      string         `json:"category"`
	Fields        map[string]any `json:"fields"`
	MissingFields []string       `json:"missing_fields"`
	CandidateID   string         `json:"candidate_id"`
	Source        string         `json:"source"`
	SourceURL     string         `json:"source_url"`
	CreatedAt     string         `json:"created_at"`
	Strategy      DraftStrategy  `json:"strategy"`
}
