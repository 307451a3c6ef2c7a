package tools

// CreateStoryInput is the input of create_story.
type CreateStoryInput struct {
	ID                 string   `json:"id" validate:"required" jsonschema_description:"Story id, e.g. US-001"`
	Title              string   `json:"title" validate:"required" jsonschema_description:"Short story title"`
	Feature            string   `json:"feature,omitempty" jsonschema_description:"Feature id the story belongs to; omit for the backlog"`
	AsA                string   `json:"asA" validate:"required" jsonschema_description:"The user role"`
	IWant              string   `json:"iWant" validate:"required" jsonschema_description:"What the user wants to do"`
	SoThat             string   `json:"soThat" validate:"required" jsonschema_description:"The benefit to the user"`
	AcceptanceCriteria []string `json:"acceptanceCriteria" validate:"required" jsonschema_description:"Testable acceptance criteria"`
	Priority           string   `json:"priority,omitempty" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
	Dependencies       []string `json:"dependencies,omitempty" jsonschema_description:"Ids of stories this one depends on"`
	EdgeCases          []string `json:"edgeCases,omitempty"`
	OpenQuestions      []string `json:"openQuestions,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	Estimate           int      `json:"estimate,omitempty" validate:"omitempty,min=0" jsonschema_description:"Story points"`
}

// UpdateStoryInput is the input of update_story.
type UpdateStoryInput struct {
	ID      string         `json:"id" validate:"required" jsonschema_description:"Story id"`
	Feature string         `json:"feature" validate:"required" jsonschema_description:"Feature id, or backlog"`
	Updates map[string]any `json:"updates" validate:"required" jsonschema_description:"Fields to overwrite, keyed by story field name"`
}

// ListStoriesInput is the input of list_stories.
type ListStoriesInput struct {
	Feature string `json:"feature,omitempty" jsonschema_description:"Only list stories of this feature"`
	Status  string `json:"status,omitempty" jsonschema:"enum=draft,enum=ready,enum=in-progress,enum=done"`
}

// CreateFeatureInput is the input of create_feature.
type CreateFeatureInput struct {
	ID              string   `json:"id" validate:"required" jsonschema_description:"Feature id, e.g. checkout"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description,omitempty"`
	SuccessCriteria []string `json:"successCriteria,omitempty"`
	Priority        string   `json:"priority,omitempty" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
}

// ListFeaturesInput is the input of list_features.
type ListFeaturesInput struct{}

// SearchStoriesInput is the input of search_stories.
type SearchStoriesInput struct {
	Query string `json:"query" validate:"required" jsonschema_description:"Case-insensitive text to look for"`
}

// QuestionOption is one answer offered by ask_user_question.
type QuestionOption struct {
	Label       string `json:"label" validate:"required"`
	Value       string `json:"value" validate:"required"`
	Description string `json:"description,omitempty"`
}

// AskUserQuestionInput is the input of ask_user_question.
type AskUserQuestionInput struct {
	Question    string           `json:"question" validate:"required"`
	Options     []QuestionOption `json:"options" validate:"required,min=1,dive"`
	AllowCustom *bool            `json:"allowCustom,omitempty" jsonschema:"default=true" jsonschema_description:"Offer an Other option with a free-text answer"`
	MultiSelect bool             `json:"multiSelect,omitempty" jsonschema:"default=false"`
}

// PresentDraftInput is the input of present_draft.
type PresentDraftInput struct {
	Title              string   `json:"title" validate:"required"`
	AsA                string   `json:"asA" validate:"required"`
	IWant              string   `json:"iWant" validate:"required"`
	SoThat             string   `json:"soThat" validate:"required"`
	AcceptanceCriteria []string `json:"acceptanceCriteria" validate:"required"`
	Priority           string   `json:"priority,omitempty" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
	EdgeCases          []string `json:"edgeCases,omitempty"`
	OpenQuestions      []string `json:"openQuestions,omitempty"`
}

// AnalyzeStoryQualityInput is the input of analyze_story_quality.
type AnalyzeStoryQualityInput struct {
	StoryID   string `json:"storyId" validate:"required"`
	FeatureID string `json:"featureId" validate:"required" jsonschema_description:"Feature id, or backlog"`
}

// inputFor returns a zero input value for a kind, used for schema reflection.
func inputFor(k Kind) any {
	switch k {
	case CreateStory:
		return &CreateStoryInput{}
	case UpdateStory:
		return &UpdateStoryInput{}
	case ListStories:
		return &ListStoriesInput{}
	case CreateFeature:
		return &CreateFeatureInput{}
	case ListFeatures:
		return &ListFeaturesInput{}
	case SearchStories:
		return &SearchStoriesInput{}
	case AskUserQuestion:
		return &AskUserQuestionInput{}
	case PresentDraft:
		return &PresentDraftInput{}
	case AnalyzeStoryQuality:
		return &AnalyzeStoryQualityInput{}
	}
	return nil
}

// allowCustom applies the default of true.
func (in *AskUserQuestionInput) allowCustom() bool {
	return in.AllowCustom == nil || *in.AllowCustom
}
