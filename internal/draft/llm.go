package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/oncoscout/internal/enrich"
	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/prompts"
	"github.com/jonathan/oncoscout/internal/types"
)

// fillWithModel runs the model-assisted strategy: the model fills the empty
// category template from the candidate context. Any failure -- call, parse,
// or schema validation -- is an error; the caller falls back to the mapped
// strategy so the gate's promise of a draft still holds.
func (d *Drafter) fillWithModel(ctx context.Context, category string, c types.EnrichedCandidate, now time.Time) (map[string]any, error) {
	prompt, err := buildFillPrompt(category, c)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	response, err := d.client.GenerateJSON(callCtx, prompt, d.tier)
	if err != nil {
		return nil, fmt.Errorf("draft fill call failed: %w", err)
	}

	var filled map[string]any
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(response)), &filled); err != nil {
		return nil, fmt.Errorf("failed to parse draft fill response: %w", err)
	}

	// Keep only template keys; models like to volunteer extra fields.
	fields, _ := NewTemplate(category)
	for key := range fields {
		if value, ok := filled[key]; ok {
			fields[key] = value
		}
	}
	fields["category"] = category

	notes, _ := fields["notes"].(string)
	fields["notes"] = withProvenance(notes, c, now)

	if err := Validate(category, fields); err != nil {
		return nil, fmt.Errorf("draft fill rejected by schema: %w", err)
	}
	return fields, nil
}

func buildFillPrompt(category string, c types.EnrichedCandidate) (string, error) {
	info, ok := types.CategoryByCode(category)
	if !ok {
		return "", fmt.Errorf("unknown category %q", category)
	}

	emptyTemplate, _ := NewTemplate(category)
	templateJSON, err := json.MarshalIndent(emptyTemplate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal template: %w", err)
	}
	classificationJSON, err := json.MarshalIndent(c.Classification, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal classification: %w", err)
	}

	template := prompts.MustGet("drafting.json", "fill_draft")
	return prompts.Format(template, map[string]string{
		"Source":              c.Source,
		"SourceURL":           c.SourceURL,
		"Title":               c.Title,
		"Company":             c.Company,
		"Excerpt":             enrich.Excerpt(c.RawData),
		"Classification":      string(classificationJSON),
		"Category":            info.Code,
		"CategoryName":        info.Name,
		"CategoryDescription": info.Description,
		"Template":            string(templateJSON),
	}), nil
}
