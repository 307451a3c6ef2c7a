// Package store persists stories and features as markdown documents with
// YAML front matter under a single root directory.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/iksnae/storyline/internal"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by deletes of records that do not exist.
var ErrNotFound = errors.New("record not found")

const (
	featuresDir     = "features"
	backlogDir      = "backlog"
	storiesDir      = "stories"
	featureDocument = "feature.md"
	docExt          = ".md"
)

// Store is the file-backed document store.
type Store struct {
	root  string
	index *Index
	now   func() time.Time
}

// Open creates the root directory if needed and builds the search index
// from the documents already on disk.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, &internal.StorageError{Path: root, Op: "mkdir", Err: err}
	}

	index, err := OpenIndex()
	if err != nil {
		return nil, &internal.StorageError{Path: root, Op: "index", Err: err}
	}

	s := &Store{
		root:  root,
		index: index,
		now:   func() time.Time { return time.Now().UTC() },
	}
	if err := s.Reindex(); err != nil {
		index.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the search index
func (s *Store) Close() error {
	return s.index.Close()
}

// Root returns the store directory
func (s *Store) Root() string {
	return s.root
}

// Reindex rebuilds the search index from disk
func (s *Store) Reindex() error {
	if err := s.index.Reset(); err != nil {
		return &internal.StorageError{Path: s.root, Op: "index", Err: err}
	}
	stories, err := s.ListStories("")
	if err != nil {
		return err
	}
	for _, story := range stories {
		if err := s.index.Upsert(story); err != nil {
			return &internal.StorageError{Path: s.root, Op: "index", Err: err}
		}
	}
	internal.LogDebug("Indexed %d stories under %s", len(stories), s.root)
	return nil
}

// StoryPath returns the document path for a story
func (s *Store) StoryPath(featureID, storyID string) string {
	featureID = FeatureKey(featureID)
	if featureID == BacklogFeature {
		return filepath.Join(s.root, backlogDir, storyID+docExt)
	}
	return filepath.Join(s.root, featuresDir, featureID, storiesDir, storyID+docExt)
}

// FeaturePath returns the document path for a feature
func (s *Store) FeaturePath(featureID string) string {
	return filepath.Join(s.root, featuresDir, featureID, featureDocument)
}

// CreateStory writes a new story, replacing any story with the same key.
func (s *Store) CreateStory(story *Story) (string, error) {
	if err := validateID("story", story.ID); err != nil {
		return "", err
	}
	story.Feature = FeatureKey(story.Feature)
	if err := validateID("feature", story.Feature); err != nil {
		return "", err
	}
	if story.Type == "" {
		story.Type = StoryType
	}
	if story.Status == "" {
		story.Status = StatusDraft
	}
	now := s.now()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.UpdatedAt = now
	return s.writeStory(story)
}

// UpdateStory persists an existing story as given.
func (s *Store) UpdateStory(story *Story) (string, error) {
	if err := validateStoryKey(story.Feature, story.ID); err != nil {
		return "", err
	}
	story.Feature = FeatureKey(story.Feature)
	return s.writeStory(story)
}

func (s *Store) writeStory(story *Story) (string, error) {
	path := s.StoryPath(story.Feature, story.ID)
	data, err := encodeDocument(story, renderStoryBody(story))
	if err != nil {
		return "", &internal.StorageError{Path: path, Op: "encode", Err: err}
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	if err := s.index.Upsert(story); err != nil {
		return "", &internal.StorageError{Path: path, Op: "index", Err: err}
	}
	internal.LogDebug("Wrote story %s/%s", story.Feature, story.ID)
	return path, nil
}

// GetStory loads a story. A missing story yields (nil, nil).
func (s *Store) GetStory(featureID, storyID string) (*Story, error) {
	if err := validateStoryKey(featureID, storyID); err != nil {
		return nil, err
	}
	path := s.StoryPath(featureID, storyID)
	var story Story
	found, err := readDocument(path, "story", &story)
	if err != nil || !found {
		return nil, err
	}
	story.Feature = FeatureKey(featureID)
	return &story, nil
}

// ListStories returns the stories of one feature, or of every feature and
// the backlog when featureID is empty. Results are sorted by feature then id.
func (s *Store) ListStories(featureID string) ([]*Story, error) {
	var features []string
	if strings.TrimSpace(featureID) != "" {
		featureID = FeatureKey(featureID)
		if err := validateID("feature", featureID); err != nil {
			return nil, err
		}
		features = []string{featureID}
	} else {
		ids, err := s.featureIDs()
		if err != nil {
			return nil, err
		}
		features = append(ids, BacklogFeature)
	}

	var stories []*Story
	for _, feature := range features {
		dir := filepath.Dir(s.StoryPath(feature, "x"))
		ids, err := documentIDs(dir)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			story, err := s.GetStory(feature, id)
			if err != nil {
				internal.LogWarn("Skipping unreadable story %s/%s: %v", feature, id, err)
				continue
			}
			if story != nil {
				stories = append(stories, story)
			}
		}
	}

	sort.SliceStable(stories, func(i, j int) bool {
		if stories[i].Feature != stories[j].Feature {
			return stories[i].Feature < stories[j].Feature
		}
		return stories[i].ID < stories[j].ID
	})
	return stories, nil
}

// SearchStories returns every story whose text fields contain query,
// ignoring case.
func (s *Store) SearchStories(query string) ([]*Story, error) {
	keys, err := s.index.Search(query)
	if err != nil {
		return nil, &internal.StorageError{Path: s.root, Op: "search", Err: err}
	}
	stories := make([]*Story, 0, len(keys))
	for _, k := range keys {
		story, err := s.GetStory(k.Feature, k.ID)
		if err != nil {
			return nil, err
		}
		if story != nil {
			stories = append(stories, story)
		}
	}
	return stories, nil
}

// DeleteStory removes a story document
func (s *Store) DeleteStory(featureID, storyID string) error {
	if err := validateStoryKey(featureID, storyID); err != nil {
		return err
	}
	path := s.StoryPath(featureID, storyID)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("story %s/%s: %w", FeatureKey(featureID), storyID, ErrNotFound)
		}
		return &internal.StorageError{Path: path, Op: "remove", Err: err}
	}
	if err := s.index.Remove(featureID, storyID); err != nil {
		return &internal.StorageError{Path: path, Op: "index", Err: err}
	}
	return nil
}

// CreateFeature writes a new feature, replacing any feature with the same id.
func (s *Store) CreateFeature(feature *Feature) (string, error) {
	if err := validateID("feature", feature.ID); err != nil {
		return "", err
	}
	if feature.ID == BacklogFeature {
		return "", fmt.Errorf("feature id %q is reserved", BacklogFeature)
	}
	if feature.Status == "" {
		feature.Status = FeatureStatusDraft
	}
	now := s.now()
	if feature.CreatedAt.IsZero() {
		feature.CreatedAt = now
	}
	feature.UpdatedAt = now

	path := s.FeaturePath(feature.ID)
	data, err := encodeDocument(feature, renderFeatureBody(feature))
	if err != nil {
		return "", &internal.StorageError{Path: path, Op: "encode", Err: err}
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	internal.LogDebug("Wrote feature %s", feature.ID)
	return path, nil
}

// GetFeature loads a feature. A missing feature yields (nil, nil).
func (s *Store) GetFeature(id string) (*Feature, error) {
	if err := validateID("feature", id); err != nil {
		return nil, err
	}
	var feature Feature
	found, err := readDocument(s.FeaturePath(id), "feature", &feature)
	if err != nil || !found {
		return nil, err
	}
	feature.ID = id
	return &feature, nil
}

// ListFeatures returns every feature sorted by id
func (s *Store) ListFeatures() ([]*Feature, error) {
	ids, err := s.featureIDs()
	if err != nil {
		return nil, err
	}
	features := make([]*Feature, 0, len(ids))
	for _, id := range ids {
		feature, err := s.GetFeature(id)
		if err != nil {
			internal.LogWarn("Skipping unreadable feature %s: %v", id, err)
			continue
		}
		if feature != nil {
			features = append(features, feature)
		}
	}
	return features, nil
}

// DeleteFeature removes a feature together with its stories
func (s *Store) DeleteFeature(id string) error {
	if err := validateID("feature", id); err != nil {
		return err
	}
	dir := filepath.Join(s.root, featuresDir, id)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("feature %s: %w", id, ErrNotFound)
	}
	if err := os.RemoveAll(dir); err != nil {
		return &internal.StorageError{Path: dir, Op: "remove", Err: err}
	}
	if err := s.index.RemoveFeature(id); err != nil {
		return &internal.StorageError{Path: dir, Op: "index", Err: err}
	}
	return nil
}

// FeatureSummaries lists features with their story counts. Counting runs
// concurrently, one directory scan per feature.
func (s *Store) FeatureSummaries(ctx context.Context) ([]FeatureSummary, error) {
	features, err := s.ListFeatures()
	if err != nil {
		return nil, err
	}

	summaries := make([]FeatureSummary, len(features))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, feature := range features {
		i, feature := i, feature
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids, err := documentIDs(filepath.Dir(s.StoryPath(feature.ID, "x")))
			if err != nil {
				return err
			}
			summaries[i] = FeatureSummary{Feature: feature, StoryCount: len(ids)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// StoryCount returns the number of indexed stories
func (s *Store) StoryCount() (int, error) {
	return s.index.Count()
}

func (s *Store) featureIDs() ([]string, error) {
	dir := filepath.Join(s.root, featuresDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &internal.StorageError{Path: dir, Op: "read", Err: err}
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// documentIDs lists the ids of the .md documents in dir
func documentIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &internal.StorageError{Path: dir, Op: "read", Err: err}
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != docExt || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, docExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func readDocument(path, source string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &internal.StorageError{Path: path, Op: "read", Err: err}
	}
	if err := decodeFrontMatter(data, v); err != nil {
		return false, &internal.ParseError{Source: source, Key: path, Err: err}
	}
	return true, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &internal.StorageError{Path: filepath.Dir(path), Op: "mkdir", Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &internal.StorageError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// validateStoryKey keeps both parts of a story key inside the store root.
func validateStoryKey(featureID, storyID string) error {
	if err := validateID("feature", FeatureKey(featureID)); err != nil {
		return err
	}
	return validateID("story", storyID)
}

func validateID(kind, id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%s id is required", kind)
	case id == "." || id == "..", strings.ContainsAny(id, `/\`):
		return fmt.Errorf("invalid %s id %q", kind, id)
	}
	return nil
}
