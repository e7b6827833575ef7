// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/oncoscout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidate outputs one classified candidate with its decision flags.
func (p *Printer) PrintCandidate(c types.EnrichedCandidate) {
	var sb strings.Builder
	cls := c.Classification

	sb.WriteString(fmt.Sprintf("Source:   %s\n", c.Source))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", firstNonEmpty(cls.Company, c.Company, "(unknown)")))
	sb.WriteString(fmt.Sprintf("URL:      %s\n", c.SourceURL))
	sb.WriteString("\n")

	if c.ClassificationError != "" {
		sb.WriteString("Classification FAILED:\n")
		sb.WriteString("  " + c.ClassificationError + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("New test: %-5v  New indication: %-5v  Relevant: %v\n",
			cls.IsNewTest, cls.IsNewIndication, cls.IsRelevant))
		sb.WriteString(fmt.Sprintf("Category: %s  Confidence: %.2f\n",
			firstNonEmpty(cls.Category, "-"), cls.Confidence))
		if len(cls.CancerTypes) > 0 {
			sb.WriteString(fmt.Sprintf("Cancers:  %s\n", truncateList(cls.CancerTypes)))
		}
		if cls.FDAStatus != "" {
			sb.WriteString(fmt.Sprintf("Status:   %s\n", cls.FDAStatus))
		}
		if cls.RelevanceReason != "" {
			sb.WriteString(fmt.Sprintf("Reason:   %s\n", cls.RelevanceReason))
		}
	}

	p.printBox(fmt.Sprintf("Candidate: %s", c.Title), sb.String())
}

// PrintDraft outputs a draft submission with its missing-field list.
func (p *Printer) PrintDraft(d types.DraftSubmission) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Category: %s  Strategy: %s\n", d.Category, d.Strategy))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", d.Source))
	if name, ok := d.Fields["name"].(string); ok {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	}
	if vendor, ok := d.Fields["vendor"].(string); ok {
		sb.WriteString(fmt.Sprintf("Vendor:   %s\n", vendor))
	}
	sb.WriteString("\n")
	if len(d.MissingFields) == 0 {
		sb.WriteString("All required fields populated\n")
	} else {
		sb.WriteString(fmt.Sprintf("Missing %d required fields:\n", len(d.MissingFields)))
		sb.WriteString("  " + truncateList(d.MissingFields) + "\n")
	}

	p.printBox(fmt.Sprintf("Draft: %s", d.CandidateID), sb.String())
}

// PrintRunSummary outputs the end-of-run counts.
func (p *Printer) PrintRunSummary(collected, surviving, newTests, newIndications, other, drafted int) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Collected:        %d\n", collected))
	sb.WriteString(fmt.Sprintf("Survived dedup:   %d\n", surviving))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("New tests:        %d\n", newTests))
	sb.WriteString(fmt.Sprintf("New indications:  %d\n", newIndications))
	sb.WriteString(fmt.Sprintf("Not relevant:     %d\n", other))
	sb.WriteString(fmt.Sprintf("Drafts generated: %d\n", drafted))

	p.printBox("Run Summary", sb.String())
}

// truncateList joins up to maxItemsToShow items, noting how many were cut.
func truncateList(items []string) string {
	if len(items) <= maxItemsToShow {
		return strings.Join(items, ", ")
	}
	shown := strings.Join(items[:maxItemsToShow], ", ")
	return fmt.Sprintf("%s (+%d more)", shown, len(items)-maxItemsToShow)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
