package output

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jonathan/oncoscout/internal/types"
)

// digestTemplate is the plain-text digest layout. Counts of the three
// sections always sum to the total.
const digestTemplate = `OncoScout discovery digest - {{.RunDate}}
{{.Rule}}
Candidates examined: {{.Total}}

NEW TESTS ({{len .NewTests}})
{{if .NewTests}}{{range .NewTests}}{{. | item}}{{end}}{{else}}  (none)
{{end}}
NEW INDICATIONS ({{len .NewIndications}})
{{if .NewIndications}}{{range .NewIndications}}{{. | item}}{{end}}{{else}}  (none)
{{end}}
NOT RELEVANT / OTHER ({{len .Other}})
{{if .Other}}{{range .Other}}{{. | item}}{{end}}{{else}}  (none)
{{end}}`

type digestData struct {
	RunDate string
	Rule    string
	Total   int
	Partition
}

// RenderDigest renders the three-bucket plain-text digest for a run.
func RenderDigest(candidates []types.EnrichedCandidate, runDate string) string {
	partition := PartitionCandidates(candidates)

	tmpl := template.Must(template.New("digest").
		Funcs(template.FuncMap{"item": digestItem}).
		Parse(digestTemplate))

	var sb strings.Builder
	// The template and data are fully under our control; Execute cannot fail.
	_ = tmpl.Execute(&sb, digestData{
		RunDate:   runDate,
		Rule:      strings.Repeat("=", 50),
		Total:     partition.Total(),
		Partition: partition,
	})
	return sb.String()
}

// digestItem renders one candidate as a two-line digest entry.
func digestItem(c types.EnrichedCandidate) string {
	cls := c.Classification

	headline := c.Title
	if cls.TestName != "" && cls.TestName != c.Title {
		headline = fmt.Sprintf("%s - %s", cls.TestName, c.Title)
	}

	var tags []string
	if cls.Category != "" {
		tags = append(tags, cls.Category)
	}
	tags = append(tags, fmt.Sprintf("confidence %.2f", cls.Confidence))
	if company := firstNonEmpty(cls.Company, c.Company); company != "" {
		tags = append(tags, company)
	}
	if cls.FDAStatus != "" {
		tags = append(tags, cls.FDAStatus)
	}
	if c.ClassificationError != "" {
		tags = append(tags, "classification failed")
	}

	return fmt.Sprintf("  - %s [%s]\n    %s | %s\n", headline, strings.Join(tags, ", "), c.Source, c.SourceURL)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
