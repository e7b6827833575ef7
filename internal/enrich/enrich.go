// Package enrich classifies surviving candidates through the external
// generative-language capability. Each candidate gets exactly one call;
// a failed call is a low-information result, never a run failure.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/prompts"
	"github.com/jonathan/oncoscout/internal/types"
)

// maxExcerptLength bounds the raw payload slice embedded in the prompt.
const maxExcerptLength = 6000

// maxKnownNames bounds the canonical-name list in the prompt so a large
// dataset does not crowd out the candidate context.
const maxKnownNames = 300

// Enricher classifies candidates one at a time.
type Enricher struct {
	client     llm.Client
	tier       llm.ModelTier
	timeout    time.Duration
	knownNames []string
}

// New creates an Enricher. knownNames is the canonical display-name list
// that biases the classifier away from re-flagging known tests. An empty
// tier falls back to standard.
func New(client llm.Client, tier llm.ModelTier, timeout time.Duration, knownNames []string) *Enricher {
	if tier == "" {
		tier = llm.TierStandard
	}
	if len(knownNames) > maxKnownNames {
		knownNames = knownNames[:maxKnownNames]
	}
	return &Enricher{client: client, tier: tier, timeout: timeout, knownNames: knownNames}
}

// EnrichAll classifies every candidate sequentially. The result slice is
// index-aligned with the input; a classification failure leaves that entry
// with the zero-value Classification and the error text recorded.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []types.RawCandidate) []types.EnrichedCandidate {
	enriched := make([]types.EnrichedCandidate, len(candidates))
	for i, c := range candidates {
		enriched[i] = e.Enrich(ctx, c)
	}
	return enriched
}

// Enrich classifies one candidate. The per-call timeout isolates a slow
// model call to this candidate only.
func (e *Enricher) Enrich(ctx context.Context, candidate types.RawCandidate) types.EnrichedCandidate {
	result := types.EnrichedCandidate{RawCandidate: candidate}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	response, err := e.client.GenerateJSON(callCtx, e.buildPrompt(candidate), e.tier)
	if err != nil {
		result.ClassificationError = fmt.Sprintf("classification call failed: %v", err)
		return result
	}

	classification, err := ParseClassification(response)
	if err != nil {
		result.ClassificationError = fmt.Sprintf("classification parse failed: %v", err)
		return result
	}

	result.Classification = classification
	return result
}

// ParseClassification decodes a model response into a Classification,
// stripping code fences and clamping confidence into [0,1].
func ParseClassification(response string) (types.Classification, error) {
	var classification types.Classification
	cleaned := llm.CleanJSONBlock(response)
	if err := json.Unmarshal([]byte(cleaned), &classification); err != nil {
		return types.Classification{}, fmt.Errorf("failed to unmarshal classification: %w", err)
	}

	if classification.Confidence < 0 {
		classification.Confidence = 0
	}
	if classification.Confidence > 1 {
		classification.Confidence = 1
	}
	return classification, nil
}

func (e *Enricher) buildPrompt(candidate types.RawCandidate) string {
	template := prompts.MustGet("classification.json", "classify_candidate")
	return prompts.Format(template, map[string]string{
		"Source":     candidate.Source,
		"SourceURL":  candidate.SourceURL,
		"Title":      candidate.Title,
		"Company":    candidate.Company,
		"Date":       candidate.Date,
		"Excerpt":    Excerpt(candidate.RawData),
		"KnownTests": e.knownNamesList(),
		"Categories": categoryLines(),
	})
}

// Excerpt renders a size-bounded view of the raw payload for the prompt.
// The cut never splits a rune; the model transport rejects invalid UTF-8.
func Excerpt(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "(no raw content)"
	}
	return truncateRunes(text, maxExcerptLength)
}

// truncateRunes cuts text to at most limit bytes, backing off over any
// multi-byte rune straddling the boundary.
func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

func (e *Enricher) knownNamesList() string {
	if len(e.knownNames) == 0 {
		return "(none on record)"
	}
	return strings.Join(e.knownNames, ", ")
}

func categoryLines() string {
	var sb strings.Builder
	for _, c := range types.Categories {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", c.Code, c.Name, c.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}
