package tools

import (
	"math"

	"github.com/iksnae/storyline/internal/store"
)

// investThreshold is the score below which a dimension gets a suggestion.
const investThreshold = 7

// InvestScores holds one score per INVEST dimension.
type InvestScores struct {
	Independent int `json:"independent"`
	Negotiable  int `json:"negotiable"`
	Valuable    int `json:"valuable"`
	Estimable   int `json:"estimable"`
	Small       int `json:"small"`
	Testable    int `json:"testable"`
}

// Values returns the scores in INVEST order
func (s InvestScores) Values() []int {
	return []int{s.Independent, s.Negotiable, s.Valuable, s.Estimable, s.Small, s.Testable}
}

// QualityReport is the outcome of AnalyzeINVEST.
type QualityReport struct {
	StoryID     string       `json:"storyId"`
	Feature     string       `json:"feature"`
	Scores      InvestScores `json:"scores"`
	Overall     int          `json:"overall"`
	Suggestions []string     `json:"suggestions"`
}

var investSuggestions = [6]string{
	"Reduce dependencies on other stories so this one can be delivered on its own.",
	"State the goal without prescribing the solution, and keep the criteria few enough to negotiate.",
	"Add a clear 'so that' benefit to show the value to the user.",
	"Add acceptance criteria and resolve open questions so the team can estimate it.",
	"Split the story; it has too many acceptance criteria to fit in one iteration.",
	"Add at least one testable acceptance criterion.",
}

// AnalyzeINVEST scores a story with structural proxies for each INVEST
// dimension. The result depends only on the story.
func AnalyzeINVEST(s *store.Story) QualityReport {
	ac := len(s.AcceptanceCriteria)

	scores := InvestScores{
		Independent: pick(len(s.Dependencies) == 0, 10, 5),
		Negotiable:  pick(s.IWant != "" && ac <= 7, 8, 5),
		Valuable:    pick(s.SoThat != "", 8, 3),
		Estimable:   pick(ac >= 1 && len(s.OpenQuestions) <= 2, 8, 5),
		Small:       pick(ac <= 7, 8, 4),
		Testable:    pick(ac >= 1, 8, 2),
	}

	values := scores.Values()
	sum := 0
	suggestions := []string{}
	for i, v := range values {
		sum += v
		if v < investThreshold {
			suggestions = append(suggestions, investSuggestions[i])
		}
	}

	return QualityReport{
		StoryID:     s.ID,
		Feature:     store.FeatureKey(s.Feature),
		Scores:      scores,
		Overall:     int(math.Round(float64(sum) / float64(len(values)))),
		Suggestions: suggestions,
	}
}

func pick(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
