package cmd

import (
	"fmt"

	"github.com/iksnae/storyline/internal/ui"
	"github.com/spf13/cobra"
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List features with their story counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		summaries, err := st.FeatureSummaries(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list features: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderFeatures(summaries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}
