package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jonathan/oncoscout/internal/types"
)

// bodyTemplate is the HTML email layout. html/template escapes every
// model-derived string on the way in.
const bodyTemplate = `<h2>OncoScout discovery report</h2>
{{if .NewTests}}<h3>New tests ({{len .NewTests}})</h3>
<ul>
{{range .NewTests}}{{template "item" .}}{{end}}</ul>
{{end}}{{if .NewIndications}}<h3>New indications ({{len .NewIndications}})</h3>
<ul>
{{range .NewIndications}}{{template "item" .}}{{end}}</ul>
{{end}}<p>Drafts and the full digest are in the run output directory. Every entry needs human verification before it reaches the dataset.</p>
{{define "item"}}<li>
<strong>{{.Name}}</strong>{{if .Vendor}} - {{.Vendor}}{{end}}
{{if .Category}}[{{.Category}}]{{end}} <em>{{.Band}} confidence ({{.Confidence}})</em><br>
{{if .CancerTypes}}Cancer types: {{.CancerTypes}}<br>{{end}}{{if .FDAStatus}}Regulatory: {{.FDAStatus}}<br>{{end}}<a href="{{.SourceURL}}">{{.Source}}</a>
</li>
{{end}}`

type bodyItem struct {
	Name        string
	Vendor      string
	Category    string
	Band        string
	Confidence  string
	CancerTypes string
	FDAStatus   string
	Source      string
	SourceURL   string
}

type bodyData struct {
	NewTests       []bodyItem
	NewIndications []bodyItem
}

func (n *Notifier) renderBody(newTests, newIndications []types.EnrichedCandidate) (string, error) {
	tmpl, err := template.New("body").Parse(bodyTemplate)
	if err != nil {
		return "", err
	}

	data := bodyData{
		NewTests:       n.bodyItems(newTests),
		NewIndications: n.bodyItems(newIndications),
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (n *Notifier) bodyItems(candidates []types.EnrichedCandidate) []bodyItem {
	items := make([]bodyItem, 0, len(candidates))
	for _, c := range candidates {
		cls := c.Classification

		name := cls.TestName
		if name == "" {
			name = c.Title
		}
		vendor := cls.Company
		if vendor == "" {
			vendor = c.Company
		}
		band := "Medium"
		if cls.Confidence >= n.cfg.HighConfidence {
			band = "High"
		}

		items = append(items, bodyItem{
			Name:        name,
			Vendor:      vendor,
			Category:    cls.Category,
			Band:        band,
			Confidence:  fmt.Sprintf("%.2f", cls.Confidence),
			CancerTypes: strings.Join(cls.CancerTypes, ", "),
			FDAStatus:   cls.FDAStatus,
			Source:      c.Source,
			SourceURL:   c.SourceURL,
		})
	}
	return items
}
