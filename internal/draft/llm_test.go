package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/oncoscout/internal/llm"
	"github.com/jonathan/oncoscout/internal/types"
)

// fakeClient implements llm.Client for drafting tests.
type fakeClient struct {
	response string
	err      error
	prompts  []string
	tiers    []llm.ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(context.Background(), prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.tiers = append(f.tiers, tier)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                  { return nil }

const filledMRD = `{
  "name": "NewAssay X",
  "vendor": "Example Dx",
  "category": "MRD",
  "approach": "Tumor-informed",
  "requiresTumorTissue": true,
  "sampleType": "blood",
  "cancerTypes": ["colorectal"],
  "methodology": "tumor-informed ctDNA",
  "sensitivity": 92.1,
  "specificity": 99.5,
  "lod": "0.01% VAF",
  "initialTat": "14 days",
  "followUpTat": "7 days",
  "fdaStatus": "CLIA LDT",
  "clearanceDate": null,
  "biomarkers": ["panel of 16 variants"],
  "citation": "https://pubmed.ncbi.nlm.nih.gov/42/",
  "notes": "Validated in stage II-III CRC.",
  "made_up_extra_field": "discarded"
}`

func TestGenerate_LLMStrategy(t *testing.T) {
	client := &fakeClient{response: filledMRD}
	drafter := New(0.75).WithLLM(client, llm.TierStandard, time.Minute)
	drafter.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	draft := drafter.Generate(context.Background(), enriched(newTestClassification()))

	assert.Equal(t, types.StrategyLLM, draft.Strategy)
	assert.Equal(t, 92.1, draft.Fields["sensitivity"])
	assert.Equal(t, "0.01% VAF", draft.Fields["lod"])
	assert.NotContains(t, draft.Fields, "made_up_extra_field")
	assert.Contains(t, draft.Fields["notes"], "Validated in stage II-III CRC.")
	assert.Contains(t, draft.Fields["notes"], "Needs verification.")
	assert.Empty(t, draft.MissingFields)

	// The prompt carries the empty template and the candidate context.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], `"initialTat": null`)
	assert.Contains(t, client.prompts[0], "NewAssay X clinical validation")
}

func TestGenerate_LLMFailureFallsBackToMapped(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"call error", &fakeClient{err: errors.New("model unavailable")}},
		{"unparseable output", &fakeClient{response: "sorry, cannot comply"}},
		{"schema violation", &fakeClient{response: `{"name": "X", "vendor": "Y", "category": "MRD", "requiresTumorTissue": "yes"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafter := New(0.75).WithLLM(tt.client, llm.TierStandard, time.Minute)
			draft := drafter.Generate(context.Background(), enriched(newTestClassification()))

			// The gate promised a draft; the mapped strategy delivers it.
			assert.Equal(t, types.StrategyMapped, draft.Strategy)
			assert.Equal(t, "NewAssay X", draft.Fields["name"])
		})
	}
}

func TestGenerate_BothStrategiesAgreeOnMissingFields(t *testing.T) {
	// The model fills exactly what the mapped strategy fills; both paths
	// must then report the same missing set.
	mappedDraft := New(0.75).Generate(context.Background(), enriched(newTestClassification()))

	fieldsJSON := `{
	  "name": "NewAssay X", "vendor": "Example Dx", "category": "MRD",
	  "approach": "Tumor-informed", "requiresTumorTissue": true,
	  "sampleType": "blood", "cancerTypes": ["colorectal"],
	  "methodology": "tumor-informed ctDNA", "fdaStatus": "CLIA LDT",
	  "citation": "https://pubmed.ncbi.nlm.nih.gov/42/"
	}`
	llmDrafter := New(0.75).WithLLM(&fakeClient{response: fieldsJSON}, llm.TierStandard, time.Minute)
	llmDraft := llmDrafter.Generate(context.Background(), enriched(newTestClassification()))

	require.Equal(t, types.StrategyLLM, llmDraft.Strategy)
	assert.Equal(t, mappedDraft.MissingFields, llmDraft.MissingFields)
}

func TestGenerate_UsesConfiguredTier(t *testing.T) {
	advanced := &fakeClient{err: errors.New("unavailable")}
	New(0.75).WithLLM(advanced, llm.TierAdvanced, time.Minute).
		Generate(context.Background(), enriched(newTestClassification()))

	defaulted := &fakeClient{err: errors.New("unavailable")}
	New(0.75).WithLLM(defaulted, "", time.Minute).
		Generate(context.Background(), enriched(newTestClassification()))

	require.Len(t, advanced.tiers, 1)
	assert.Equal(t, llm.TierAdvanced, advanced.tiers[0])
	require.Len(t, defaulted.tiers, 1)
	assert.Equal(t, llm.TierStandard, defaulted.tiers[0])
}

func TestValidate_RejectsWrongTypes(t *testing.T) {
	fields, _ := NewTemplate(types.CategoryMRD)
	fields["name"] = "X"
	fields["vendor"] = "Y"
	fields["requiresTumorTissue"] = "yes" // must be boolean or null

	err := Validate(types.CategoryMRD, fields)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, types.CategoryMRD, verr.Category)
	require.NotEmpty(t, verr.Errors)
	assert.Equal(t, "requiresTumorTissue", verr.Errors[0].Field)
}

func TestValidate_AcceptsEveryEmptyTemplate(t *testing.T) {
	for _, info := range types.Categories {
		fields, _ := NewTemplate(info.Code)
		fields["name"] = "A"
		fields["vendor"] = "B"
		assert.NoError(t, Validate(info.Code, fields), info.Code)
	}
}
