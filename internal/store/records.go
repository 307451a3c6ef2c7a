package store

import (
	"strings"
	"time"
)

// BacklogFeature is the pseudo feature holding stories not filed under a feature.
const BacklogFeature = "backlog"

// StoryType is the only record type stories are written with.
const StoryType = "user-story"

// Story statuses
const (
	StatusDraft      = "draft"
	StatusReady      = "ready"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Feature statuses
const (
	FeatureStatusDraft  = "draft"
	FeatureStatusActive = "active"
	FeatureStatusDone   = "done"
)

// Story is a user story record.
type Story struct {
	ID                 string    `yaml:"id" json:"id"`
	Title              string    `yaml:"title" json:"title"`
	Feature            string    `yaml:"feature" json:"feature"`
	Type               string    `yaml:"type" json:"type"`
	Status             string    `yaml:"status" json:"status"`
	Priority           string    `yaml:"priority,omitempty" json:"priority,omitempty"`
	AsA                string    `yaml:"asA" json:"asA"`
	IWant              string    `yaml:"iWant" json:"iWant"`
	SoThat             string    `yaml:"soThat" json:"soThat"`
	AcceptanceCriteria []string  `yaml:"acceptanceCriteria" json:"acceptanceCriteria"`
	Dependencies       []string  `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	EdgeCases          []string  `yaml:"edgeCases,omitempty" json:"edgeCases,omitempty"`
	OpenQuestions      []string  `yaml:"openQuestions,omitempty" json:"openQuestions,omitempty"`
	Tags               []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Estimate           int       `yaml:"estimate,omitempty" json:"estimate,omitempty"`
	CreatedAt          time.Time `yaml:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `yaml:"updatedAt" json:"updatedAt"`
}

// Feature groups related stories.
type Feature struct {
	ID              string    `yaml:"id" json:"id"`
	Title           string    `yaml:"title" json:"title"`
	Description     string    `yaml:"description,omitempty" json:"description,omitempty"`
	Status          string    `yaml:"status" json:"status"`
	Priority        string    `yaml:"priority,omitempty" json:"priority,omitempty"`
	SuccessCriteria []string  `yaml:"successCriteria,omitempty" json:"successCriteria,omitempty"`
	CreatedAt       time.Time `yaml:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `yaml:"updatedAt" json:"updatedAt"`
}

// FeatureSummary pairs a feature with the number of stories filed under it.
type FeatureSummary struct {
	Feature    *Feature `json:"feature"`
	StoryCount int      `json:"storyCount"`
}

// Haystack is the lower-cased text searched by SearchStories.
func (s *Story) Haystack() string {
	parts := []string{s.Title, s.AsA, s.IWant, s.SoThat}
	parts = append(parts, s.AcceptanceCriteria...)
	parts = append(parts, s.OpenQuestions...)
	parts = append(parts, s.EdgeCases...)
	parts = append(parts, s.Tags...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// FeatureKey maps an empty feature to the backlog.
func FeatureKey(feature string) string {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return BacklogFeature
	}
	return feature
}
