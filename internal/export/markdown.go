package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/storyline/internal/store"
)

// MarkdownExporter exports stories in Markdown format
type MarkdownExporter struct{}

// Export exports a story to Markdown format
func (e *MarkdownExporter) Export(story *store.Story, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s: %s\n\n", story.ID, escapeMarkdown(story.Title))

	_, _ = fmt.Fprintf(w, "**Feature:** %s  \n", store.FeatureKey(story.Feature))
	_, _ = fmt.Fprintf(w, "**Status:** %s  \n", story.Status)
	if story.Priority != "" {
		_, _ = fmt.Fprintf(w, "**Priority:** %s  \n", story.Priority)
	}
	if story.Estimate > 0 {
		_, _ = fmt.Fprintf(w, "**Estimate:** %d  \n", story.Estimate)
	}
	if len(story.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "**Tags:** %s  \n", strings.Join(story.Tags, ", "))
	}
	if !story.UpdatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", story.UpdatedAt.Format("2006-01-02"))
	}

	_, _ = fmt.Fprintf(w, "\n---\n\n")
	_, _ = fmt.Fprintf(w, "## Story\n\n")
	_, _ = fmt.Fprintf(w, "As a **%s**, I want **%s**, so that **%s**.\n",
		escapeMarkdown(story.AsA), escapeMarkdown(story.IWant), escapeMarkdown(story.SoThat))

	writeSection(w, "Acceptance Criteria", story.AcceptanceCriteria, "- [ ] ")
	writeSection(w, "Edge Cases", story.EdgeCases, "- ")
	writeSection(w, "Open Questions", story.OpenQuestions, "- ")
	writeSection(w, "Dependencies", story.Dependencies, "- ")

	return nil
}

func writeSection(w io.Writer, heading string, items []string, bullet string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n## %s\n\n", heading)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%s%s\n", bullet, escapeMarkdown(item))
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
