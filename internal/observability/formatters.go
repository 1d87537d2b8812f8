// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
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
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintDocument outputs the owner and the number of entries in each list section.
func (p *Printer) PrintDocument(doc *types.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", doc.PersonalInfo.FullName))
	if doc.PersonalInfo.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", doc.PersonalInfo.Email))
	}
	if strings.TrimSpace(doc.Summary) != "" {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", doc.Summary))
	}
	sb.WriteString("\n")

	counts := []struct {
		key string
		n   int
	}{
		{types.SectionExperience, len(doc.Experience)},
		{types.SectionEducation, len(doc.Education)},
		{types.SectionProjects, len(doc.Projects)},
		{types.SectionSkills, len(doc.Skills)},
		{types.SectionCertifications, len(doc.Certifications)},
		{types.SectionStrengths, len(doc.Strengths)},
		{types.SectionAchievements, len(doc.Achievements)},
		{types.SectionReferences, len(doc.References)},
	}
	for _, c := range counts {
		marker := " "
		if !doc.VisibleSections.Shows(c.key) {
			marker = "-"
		}
		sb.WriteString(fmt.Sprintf("%s %-16s %d\n", marker, c.key, c.n))
	}
	if len(doc.Extra) > 0 {
		sb.WriteString(fmt.Sprintf("\nPreserved unknown keys: %d", len(doc.Extra)))
	}

	p.printBox("RESUME DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSheet outputs the sections that made it onto the rendered sheet.
func (p *Printer) PrintSheet(sheet *rendering.Sheet) {
	if sheet == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(sheet.Header.Name)
	if sheet.Header.Placeholder {
		sb.WriteString(" (placeholder)")
	}
	sb.WriteString("\n")
	for _, contact := range sheet.Header.Contacts {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", contact.Kind, contact.Value))
	}

	writeColumn := func(label string, sections []rendering.Section) {
		if len(sections) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", label))
		for _, sec := range sections {
			if sec.Text != "" {
				sb.WriteString(fmt.Sprintf("  • %s\n", sec.Title))
				continue
			}
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", sec.Title, len(sec.Entries)))
		}
	}
	writeColumn("Main", sheet.Main)
	writeColumn("Side", sheet.Side)

	p.printBox("RENDERED SHEET", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImprovement outputs the replacement text and any feedback.
func (p *Printer) PrintImprovement(field string, resp *types.ImproveResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	if field != "" {
		sb.WriteString(fmt.Sprintf("Field: %s\n\n", field))
	}
	sb.WriteString(resp.Text)

	if fb := resp.Feedback; fb != nil {
		writeList := func(label string, items []string) {
			if len(items) == 0 {
				return
			}
			sb.WriteString(fmt.Sprintf("\n\n%s:", label))
			count := min(len(items), maxItemsToShow)
			for i := 0; i < count; i++ {
				sb.WriteString(fmt.Sprintf("\n  • %s", items[i]))
			}
			if len(items) > maxItemsToShow {
				sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(items)-maxItemsToShow))
			}
		}
		writeList("Missing", fb.Missing)
		writeList("Improve", fb.Improve)
		if fb.Suggested != "" {
			sb.WriteString(fmt.Sprintf("\n\nSuggested:\n%s", fb.Suggested))
		}
	}

	p.printBox("AI IMPROVEMENT", sb.String())
}

// PrintResumeList outputs stored resumes, most recent first.
func (p *Printer) PrintResumeList(resumes []types.ResumeSummary) {
	if len(resumes) == 0 {
		p.printBox("STORED RESUMES", "No resumes stored yet")
		return
	}

	var sb strings.Builder
	for i, r := range resumes {
		sb.WriteString(fmt.Sprintf("%s  %s\n", r.ID.String()[:8], r.Title))
		sb.WriteString(fmt.Sprintf("          %s, updated %s", r.FullName, r.UpdatedAt.Format("2006-01-02 15:04")))
		if i < len(resumes)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("STORED RESUMES (%d)", len(resumes)), sb.String())
}
