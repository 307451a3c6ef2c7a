package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/ui"
	"github.com/spf13/cobra"
)

var showJSON bool

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <feature> <story-id>",
	Short: "Show a stored story",
	Long: `Display a single story in full.

Use 'backlog' as the feature for stories that are not filed under a feature.
Use 'storyline list' to see available story ids.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		story, err := lookupStory(st, args[0], args[1])
		if err != nil {
			return err
		}

		if showJSON {
			data, err := json.MarshalIndent(story, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal story: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderStory(story))
		return nil
	},
}

// lookupStory turns a missing story into an error
func lookupStory(st *store.Store, featureID, storyID string) (*store.Story, error) {
	story, err := st.GetStory(featureID, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, fmt.Errorf("story not found: %s/%s (use 'storyline list' to see available stories)", featureID, storyID)
	}
	return story, nil
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the story as JSON")
}
