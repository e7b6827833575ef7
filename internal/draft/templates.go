// Package draft turns high-confidence new-test classifications into
// category-shaped submission records for human review. Two strategies
// coexist: a deterministic field mapping and a model-assisted fill; both
// report missing required fields identically.
package draft

import (
	"github.com/jonathan/oncoscout/internal/types"
)

// templateFields is the full field set per category, in review display
// order. Every draft carries every key; unpopulated ones stay null so
// review tooling always sees the complete shape.
var templateFields = map[string][]string{
	types.CategoryMRD: {
		"name", "vendor", "category", "approach", "requiresTumorTissue",
		"sampleType", "cancerTypes", "methodology", "sensitivity",
		"specificity", "lod", "initialTat", "followUpTat", "fdaStatus",
		"clearanceDate", "biomarkers", "citation", "notes",
	},
	types.CategoryECD: {
		"name", "vendor", "category", "sampleType", "cancerTypes",
		"methodology", "sensitivity", "specificity", "fdaStatus",
		"clearanceDate", "biomarkers", "citation", "notes",
	},
	types.CategoryTRM: {
		"name", "vendor", "category", "sampleType", "cancerTypes",
		"methodology", "sensitivity", "specificity", "tat", "fdaStatus",
		"clearanceDate", "biomarkers", "citation", "notes",
	},
	types.CategoryTDS: {
		"name", "vendor", "category", "sampleType", "cancerTypes",
		"methodology", "genesAnalyzed", "tat", "fdaStatus",
		"clearanceDate", "biomarkers", "citation", "notes",
	},
}

// requiredFields drives the missing_fields computation per category.
var requiredFields = map[string][]string{
	types.CategoryMRD: {"name", "vendor", "fdaStatus", "sensitivity", "specificity", "lod", "initialTat", "followUpTat"},
	types.CategoryECD: {"name", "vendor", "fdaStatus", "sensitivity", "specificity"},
	types.CategoryTRM: {"name", "vendor", "fdaStatus", "sensitivity", "specificity", "tat"},
	types.CategoryTDS: {"name", "vendor", "fdaStatus", "genesAnalyzed", "tat"},
}

// NewTemplate returns the empty field map for a category, every key present
// and null except the category code itself.
func NewTemplate(category string) (map[string]any, bool) {
	keys, ok := templateFields[category]
	if !ok {
		return nil, false
	}
	fields := make(map[string]any, len(keys))
	for _, key := range keys {
		fields[key] = nil
	}
	fields["category"] = category
	return fields, true
}

// TemplateFields returns the ordered field names for a category.
func TemplateFields(category string) []string {
	return templateFields[category]
}

// RequiredFields returns the required field names for a category.
func RequiredFields(category string) []string {
	return requiredFields[category]
}

// MissingFields returns exactly the required fields of the category whose
// populated value is null, an empty string, or an empty list, in the
// category's required-field order.
func MissingFields(category string, fields map[string]any) []string {
	missing := make([]string, 0)
	for _, key := range requiredFields[category] {
		if isEmpty(fields[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
