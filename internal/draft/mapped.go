package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/oncoscout/internal/types"
)

// fdaStatusMap translates the classifier's free-text regulatory status into
// the dataset's controlled vocabulary. First matching keyword wins, so the
// more specific entries come first.
var fdaStatusMap = []struct {
	keyword string
	status  string
}{
	{"510(k)", "FDA 510(k)"},
	{"pma", "FDA PMA"},
	{"fda approved", "FDA approved"},
	{"ce-ivd", "CE-IVD"},
	{"ce ivd", "CE-IVD"},
	{"research use only", "RUO"},
	{"ruo", "RUO"},
	{"clia", "CLIA LDT"},
	{"ldt", "CLIA LDT"},
}

// MapFDAStatus maps free-text regulatory language onto the controlled
// vocabulary, or nil when nothing matches.
func MapFDAStatus(text string) any {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}
	for _, entry := range fdaStatusMap {
		if strings.Contains(lower, entry.keyword) {
			return entry.status
		}
	}
	return nil
}

// mapFields is the deterministic drafting strategy: populate the category
// template from the classification alone, no model call.
func mapFields(category string, c types.EnrichedCandidate, now time.Time) (map[string]any, bool) {
	fields, ok := NewTemplate(category)
	if !ok {
		return nil, false
	}

	cls := c.Classification

	name := cls.TestName
	if name == "" {
		name = c.Title
	}
	fields["name"] = strOrNil(name)

	vendor := cls.Company
	if vendor == "" {
		vendor = c.Company
	}
	fields["vendor"] = strOrNil(vendor)

	fields["sampleType"] = strOrNil(cls.SampleType)
	fields["cancerTypes"] = listOrNil(cls.CancerTypes)
	fields["methodology"] = strOrNil(cls.Methodology)
	fields["biomarkers"] = listOrNil(cls.Biomarkers)
	fields["fdaStatus"] = MapFDAStatus(cls.FDAStatus)
	fields["clearanceDate"] = strOrNil(cls.ClearanceDate)
	fields["citation"] = strOrNil(c.SourceURL)
	fields["notes"] = withProvenance(cls.Notes, c, now)

	if category == types.CategoryMRD {
		approach, requiresTissue := mrdApproach(cls.Methodology)
		fields["approach"] = approach
		fields["requiresTumorTissue"] = requiresTissue
	}

	return fields, true
}

// mrdApproach derives the MRD approach descriptor from the methodology
// text. Tumor-informed assays need tumor tissue for panel design.
func mrdApproach(methodology string) (string, bool) {
	lower := strings.ToLower(methodology)
	if strings.Contains(lower, "tumor-informed") || strings.Contains(lower, "tumor informed") ||
		strings.Contains(lower, "bespoke") {
		return "Tumor-informed", true
	}
	return "Tumor-naïve", false
}

// withProvenance stamps the human-auditable discovery note into the notes
// field, preserving any classifier notes ahead of it.
func withProvenance(notes string, c types.EnrichedCandidate, now time.Time) string {
	provenance := fmt.Sprintf("%s: Auto-discovered from %s. Source: %s. Needs verification.",
		now.UTC().Format("2006-01-02"), c.Source, c.SourceURL)
	if strings.TrimSpace(notes) == "" {
		return provenance
	}
	return notes + " | " + provenance
}

func strOrNil(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func listOrNil(items []string) any {
	if len(items) == 0 {
		return nil
	}
	return items
}
