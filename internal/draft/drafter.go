package draft

import (
	"context"
	"time"

	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/types"
)

// Drafter generates submission records for eligible candidates. Without an
// LLM client it always uses the deterministic mapped strategy.
type Drafter struct {
	threshold float64
	client    llm.Client
	tier      llm.ModelTier
	timeout   time.Duration
	now       func() time.Time
}

// New creates a mapped-strategy Drafter with the given confidence gate.
func New(threshold float64) *Drafter {
	return &Drafter{threshold: threshold, now: time.Now}
}

// WithLLM enables the model-assisted fill strategy on the given tier; an
// empty tier falls back to standard. The mapped strategy remains the
// fallback when the model output is unusable.
func (d *Drafter) WithLLM(client llm.Client, tier llm.ModelTier, timeout time.Duration) *Drafter {
	if tier == "" {
		tier = llm.TierStandard
	}
	d.client = client
	d.tier = tier
	d.timeout = timeout
	return d
}

// Eligible reports whether a candidate clears the drafting gate: relevant,
// a genuinely new test rather than an update to a known one, and confident
// enough.
func (d *Drafter) Eligible(c types.EnrichedCandidate) bool {
	cls := c.Classification
	return cls.IsRelevant &&
		cls.IsNewTest &&
		!cls.IsNewIndication &&
		cls.Confidence >= d.threshold
}

// GenerateAll drafts every eligible candidate, in input order.
func (d *Drafter) GenerateAll(ctx context.Context, candidates []types.EnrichedCandidate) []types.DraftSubmission {
	drafts := make([]types.DraftSubmission, 0)
	for _, c := range candidates {
		if !d.Eligible(c) {
			continue
		}
		drafts = append(drafts, d.Generate(ctx, c))
	}
	return drafts
}

// Generate drafts one candidate the gate has already admitted.
func (d *Drafter) Generate(ctx context.Context, c types.EnrichedCandidate) types.DraftSubmission {
	category := draftCategory(c.Classification.Category)
	now := d.now()

	strategy := types.StrategyMapped
	var fields map[string]any

	if d.client != nil {
		if llmFields, err := d.fillWithModel(ctx, category, c, now); err == nil {
			fields = llmFields
			strategy = types.StrategyLLM
		}
	}
	if fields == nil {
		fields, _ = mapFields(category, c, now)
	}

	return types.DraftSubmission{
		Category:      category,
		Fields:        fields,
		MissingFields: MissingFields(category, fields),
		CandidateID:   c.ID,
		Source:        c.Source,
		SourceURL:     c.SourceURL,
		CreatedAt:     now.UTC().Format(time.RFC3339),
		Strategy:      strategy,
	}
}

// draftCategory resolves the classifier's category to a template. An
// unknown or empty category falls back to TDS, the broadest of the four;
// the reviewer re-categorizes from the provenance note if needed.
func draftCategory(category string) string {
	if types.ValidCategory(category) {
		return category
	}
	return types.CategoryTDS
}
