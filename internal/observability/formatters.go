// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/job-radar/internal/canonical"
	"github.com/jonathan/job-radar/internal/types"
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

// PrintRunSummary outputs a human-readable summary of a completed run.
func (p *Printer) PrintRunSummary(artifact *types.RunArtifact) {
	if artifact == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", artifact.RunID))
	if artifact.BaselineRunID != "" {
		sb.WriteString(fmt.Sprintf("Baseline: %s\n", artifact.BaselineRunID))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Input records:   %d\n", artifact.Counts.InputRecords))
	sb.WriteString(fmt.Sprintf("Rejected:        %d\n", artifact.Counts.RejectedRecords))
	sb.WriteString(fmt.Sprintf("Canonical jobs:  %d\n", artifact.Counts.NormalizedJobs))
	sb.WriteString(fmt.Sprintf("Dupes dropped:   %d\n", artifact.Counts.DuplicatesDropped))
	sb.WriteString(fmt.Sprintf("Scored:          %d\n", artifact.Counts.ScoredJobs))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Diff: +%d new  ~%d changed  -%d removed  =%d unchanged",
		artifact.DiffCounts.New, artifact.DiffCounts.Changed,
		artifact.DiffCounts.Removed, artifact.DiffCounts.Unchanged))

	p.printBox("Run Summary", sb.String())
}

// PrintTopRanked outputs the leading ranked entries with their bands,
// ordered by final score descending with identity key as the tie-break.
func (p *Printer) PrintTopRanked(jobs []types.CanonicalJob, scores []types.ScoreResult) {
	if len(scores) == 0 {
		return
	}

	titles := make(map[string]string, len(jobs))
	for i := range jobs {
		titles[jobs[i].IdentityKey] = jobs[i].Title
	}

	// Scoring output arrives in canonical job order, not score order.
	ranked := make([]types.ScoreResult, len(scores))
	copy(ranked, scores)
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := types.Centipoints(ranked[i].FinalScore), types.Centipoints(ranked[j].FinalScore)
		if ci != cj {
			return ci > cj
		}
		return ranked[i].IdentityKey < ranked[j].IdentityKey
	})

	var sb strings.Builder
	shown := 0
	for i := range ranked {
		if shown >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(ranked)-shown))
			break
		}
		s := &ranked[i]
		sb.WriteString(fmt.Sprintf("%s  [%s]  %s\n",
			canonical.Decimal(types.Centipoints(s.FinalScore)).String(), s.Band, titles[s.IdentityKey]))
		shown++
	}

	p.printBox("Top Matches", strings.TrimRight(sb.String(), "\n"))
}
