package store

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

var errNoFrontMatter = errors.New("document has no front matter")

// encodeDocument renders front matter followed by a markdown body.
func encodeDocument(frontMatter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(frontMatter); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	buf.WriteString(frontMatterDelim + "\n\n")
	buf.WriteString(strings.TrimRight(body, "\n"))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// decodeFrontMatter unmarshals the YAML between the leading delimiters into v.
func decodeFrontMatter(data []byte, v any) error {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return errNoFrontMatter
	}
	rest := text[len(frontMatterDelim)+1:]

	end := strings.Index(rest, "\n"+frontMatterDelim)
	var yamlText string
	switch {
	case strings.HasPrefix(rest, frontMatterDelim):
		yamlText = ""
	case end >= 0:
		yamlText = rest[:end+1]
	default:
		return errors.New("front matter is not terminated")
	}

	if err := yaml.Unmarshal([]byte(yamlText), v); err != nil {
		return fmt.Errorf("failed to decode front matter: %w", err)
	}
	return nil
}

func renderStoryBody(s *Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	fmt.Fprintf(&b, "**As a** %s,  \n**I want** %s,  \n**so that** %s.\n", s.AsA, s.IWant, s.SoThat)

	writeList(&b, "Acceptance Criteria", s.AcceptanceCriteria, "- [ ] ")
	writeList(&b, "Edge Cases", s.EdgeCases, "- ")
	writeList(&b, "Open Questions", s.OpenQuestions, "- ")
	writeList(&b, "Dependencies", s.Dependencies, "- ")
	return b.String()
}

func renderFeatureBody(f *Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", f.Title)
	if f.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", f.Description)
	}
	writeList(&b, "Success Criteria", f.SuccessCriteria, "- ")
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string, bullet string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, item := range items {
		b.WriteString(bullet + item + "\n")
	}
}
