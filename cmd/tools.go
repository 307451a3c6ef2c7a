package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/storyline/internal/tools"
	"github.com/spf13/cobra"
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool declarations sent to the model",
	Long:  `Print the name, description and JSON input schema of every tool the assistant can call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := tools.Specs()
		if err != nil {
			return fmt.Errorf("failed to build tool schemas: %w", err)
		}
		data, err := json.MarshalIndent(specs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tool schemas: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
