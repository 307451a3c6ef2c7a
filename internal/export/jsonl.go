package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/storyline/internal/store"
)

// JSONLExporter exports stories in JSONL format (one story per line)
type JSONLExporter struct{}

// Export writes the story as a single line
func (e *JSONLExporter) Export(story *store.Story, w io.Writer) error {
	obj := map[string]interface{}{
		"id":                 story.ID,
		"feature":            store.FeatureKey(story.Feature),
		"title":              story.Title,
		"status":             story.Status,
		"story":              fmt.Sprintf("As a %s, I want %s, so that %s.", story.AsA, story.IWant, story.SoThat),
		"acceptanceCriteria": story.AcceptanceCriteria,
	}

	// Optional fields only when set
	if story.Priority != "" {
		obj["priority"] = story.Priority
	}
	if len(story.Tags) > 0 {
		obj["tags"] = story.Tags
	}
	if !story.UpdatedAt.IsZero() {
		obj["updatedAt"] = story.UpdatedAt
	}

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		return fmt.Errorf("failed to encode story: %w", err)
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
