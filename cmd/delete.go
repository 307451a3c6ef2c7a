package cmd

import (
	"errors"
	"fmt"

	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/ui"
	"github.com/spf13/cobra"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <feature> [story-id]",
	Short: "Delete a stored story, or a feature with all its stories",
	Long: `Delete a single story, or with only a feature id, the feature document
together with every story filed under it.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		featureID := args[0]
		kind, ref := "feature", featureID
		target := "feature " + featureID + " and all its stories"
		if len(args) == 2 {
			kind, ref = "story", featureID+"/"+args[1]
			target = "story " + ref
		}

		if !deleteYes {
			term := ui.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			ok, err := term.AskYesNo(cmd.Context(), fmt.Sprintf("Delete %s?", target), false)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if len(args) == 2 {
			err = st.DeleteStory(featureID, args[1])
		} else {
			err = st.DeleteFeature(featureID)
		}
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%s not found: %s", kind, ref)
			}
			return err
		}
		internal.LogInfo("Deleted %s", target)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}
