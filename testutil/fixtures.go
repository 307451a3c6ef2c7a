package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// WriteStoryDoc writes a story document directly to disk, bypassing the
// store, so tests can seed a store root. An empty feature files the story in
// the backlog.
func WriteStoryDoc(t *testing.T, root, feature, id string, fields map[string]interface{}) string {
	t.Helper()
	doc := map[string]interface{}{
		"id":     id,
		"title":  "Story " + id,
		"type":   "user-story",
		"status": "draft",
		"asA":    "shopper",
		"iWant":  "to do something",
		"soThat": "I get value",
		"acceptanceCriteria": []string{
			"Given a precondition, when I act, then something happens",
		},
	}
	for k, v := range fields {
		doc[k] = v
	}

	var path string
	if feature == "" || feature == "backlog" {
		doc["feature"] = "backlog"
		path = filepath.Join(root, "backlog", id+".md")
	} else {
		doc["feature"] = feature
		path = filepath.Join(root, "features", feature, "stories", id+".md")
	}
	writeDoc(t, path, doc, "# "+doc["title"].(string))
	return path
}

// WriteFeatureDoc writes a feature document directly to disk
func WriteFeatureDoc(t *testing.T, root, id string, fields map[string]interface{}) string {
	t.Helper()
	doc := map[string]interface{}{
		"id":     id,
		"title":  "Feature " + id,
		"status": "draft",
	}
	for k, v := range fields {
		doc[k] = v
	}
	path := filepath.Join(root, "features", id, "feature.md")
	writeDoc(t, path, doc, "# "+doc["title"].(string))
	return path
}

func writeDoc(t *testing.T, path string, frontMatter map[string]interface{}, body string) {
	t.Helper()
	data, err := yaml.Marshal(frontMatter)
	if err != nil {
		t.Fatalf("Failed to marshal front matter: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	content := "---\n" + string(data) + "---\n\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
}
