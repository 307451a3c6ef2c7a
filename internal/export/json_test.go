package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/storyline/internal/store"
)

func TestJSONExporter_Export(t *testing.T) {
	full := createTestStory("US-3")
	full.Priority = "high"
	full.Tags = []string{"mvp"}
	full.EdgeCases = []string{"Expired card"}

	tests := []struct {
		name  string
		story *store.Story
	}{
		{name: "basic story", story: createTestStory("US-1")},
		{name: "backlog story", story: &store.Story{ID: "US-2", Feature: store.BacklogFeature}},
		{name: "story with all fields", story: full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.story, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			// Verify it's valid JSON that decodes back to the story
			var decoded store.Story
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
			}
			if decoded.ID != tt.story.ID {
				t.Errorf("ID = %v, want %v", decoded.ID, tt.story.ID)
			}
			if len(decoded.AcceptanceCriteria) != len(tt.story.AcceptanceCriteria) {
				t.Errorf("AcceptanceCriteria = %v, want %v", decoded.AcceptanceCriteria, tt.story.AcceptanceCriteria)
			}

			// Verify pretty-printing
			if !strings.Contains(buf.String(), "\n  \"id\"") {
				t.Errorf("Output should be indented, got:\n%s", buf.String())
			}
		})
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
