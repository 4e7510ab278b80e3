// Package observability provides logging setup and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/outreach-pipeline/internal/types"
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

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobQuery outputs a human-readable summary of a parsed query and its dorks.
func (p *Printer) PrintJobQuery(q *types.JobQuery) {
	if q == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:      %s\n", q.JobID))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", q.Role))
	sb.WriteString(fmt.Sprintf("Location: %s\n", q.Location))
	sb.WriteString(fmt.Sprintf("Limit:    %d\n", q.Limit))

	if len(q.GoogleDorks) > 0 {
		sb.WriteString("\nSearch terms:\n")
		count := min(len(q.GoogleDorks), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q.GoogleDorks[i]))
		}
		if len(q.GoogleDorks) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(q.GoogleDorks)-maxItemsToShow))
		}
	}

	p.printBox("PARSED JOB QUERY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVariationResult outputs the outcome of a variation generation pass.
func (p *Printer) PrintVariationResult(result types.VariationResult) {
	var sb strings.Builder
	if result.Success {
		sb.WriteString("Status:    success\n")
	} else {
		sb.WriteString("Status:    failed\n")
	}
	sb.WriteString(fmt.Sprintf("Processed: %d emails", result.Count))
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("\nError:     %s", result.Error))
	}

	p.printBox("EMAIL VARIATIONS", sb.String())
}

// PrintVariants outputs the three rewrites produced for one email.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintVariants(emailID string, variants types.VariantSet) {
	bodies := []string{variants.Body2, variants.Body3, variants.Body4}
	for i, body := range bodies {
		p.printBox(fmt.Sprintf("EMAIL %s - BODY %d", emailID, i+2), strings.TrimSpace(body))
	}
}
