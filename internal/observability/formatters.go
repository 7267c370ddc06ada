// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for CLI reports
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
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintResumeOutline outputs the section/item skeleton of a resume with
// markers for disabled sections and excluded items.
func (p *Printer) PrintResumeOutline(r *types.Resume) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", r.Title))
	sb.WriteString(fmt.Sprintf("Sections: %d\n", len(r.Sections)))

	for _, s := range r.Sorted().Sections {
		mark := "•"
		if !s.IsEnabled {
			mark = "○"
		}
		sb.WriteString(fmt.Sprintf("\n%s %s [%s]\n", mark, s.Title, s.SectionType))
		count := min(len(s.Items), maxItemsToShow)
		for i := 0; i < count; i++ {
			it := s.Items[i]
			label := it.Subtitle
			if label == "" {
				label = it.Content
			}
			prefix := "  -"
			if !it.IsIncluded {
				prefix = "  x"
			}
			sb.WriteString(fmt.Sprintf("%s %s\n", prefix, truncate(label, 45)))
		}
		if len(s.Items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.Items)-maxItemsToShow))
		}
	}

	p.printBox("RESUME OUTLINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs the keyword match result for one posting.
func (p *Printer) PrintAnalysis(posting *types.JobPosting, a *types.Analysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	if posting != nil {
		sb.WriteString(fmt.Sprintf("Posting:  %s\n", posting.Title))
		if posting.Company != "" {
			sb.WriteString(fmt.Sprintf("Company:  %s\n", posting.Company))
		}
	}
	sb.WriteString(fmt.Sprintf("Score:    %.1f%%\n", a.MatchScore))
	sb.WriteString("\n")

	if len(a.FoundKeywords) > 0 {
		sb.WriteString(fmt.Sprintf("Matched keywords (%d):\n", len(a.FoundKeywords)))
		count := min(len(a.FoundKeywords), maxItemsToShow*2)
		sb.WriteString("  " + strings.Join(a.FoundKeywords[:count], ", ") + "\n")
		if len(a.FoundKeywords) > count {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(a.FoundKeywords)-count))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No matching keywords\n\n")
	}

	if len(a.RecommendedSections) > 0 {
		sb.WriteString("Consider adding:\n")
		for _, st := range a.RecommendedSections {
			sb.WriteString(fmt.Sprintf("  • %s\n", st))
		}
	}

	p.printBox("KEYWORD MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs a ranked table of stored matches.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMatches(matches []types.Match, titles map[string]string) {
	if len(matches) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO MATCHES RECORDED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, m := range matches {
		title := titles[m.JobPostingID.String()]
		if title == "" {
			title = m.JobPostingID.String()
		}
		sb.WriteString(fmt.Sprintf("#%d  %5.1f%%  %s", i+1, m.MatchScore, title))
		if i < len(matches)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("JOB MATCHES", sb.String())
}
