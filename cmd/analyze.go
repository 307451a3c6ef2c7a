package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/storyline/internal/tools"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var investLabels = []string{"Independent", "Negotiable", "Valuable", "Estimable", "Small", "Testable"}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <feature> <story-id>",
	Short: "Score a story against the INVEST criteria",
	Long: `Score a stored story against the INVEST criteria (Independent, Negotiable,
Valuable, Estimable, Small, Testable) using structural checks only.

For a qualitative review by the assistant, use 'review <feature> <story>'
inside a chat session.`,
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

		report := tools.AnalyzeINVEST(story)
		if analyzeJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		displayReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func displayReport(out io.Writer, report tools.QualityReport) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("INVEST %s/%s", report.Feature, report.StoryID)))
	fmt.Fprintln(out)
	for i, v := range report.Scores.Values() {
		fmt.Fprintf(out, "  %-12s %s %s\n", investLabels[i], scoreStyle(v).Render(fmt.Sprintf("%2d", v)), strings.Repeat("▮", v))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-12s %s\n", "Overall", scoreStyle(report.Overall).Render(fmt.Sprintf("%2d/10", report.Overall)))

	if len(report.Suggestions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("Suggestions"))
		for _, s := range report.Suggestions {
			fmt.Fprintf(out, "  • %s\n", s)
		}
	}
}

func scoreStyle(v int) lipgloss.Style {
	switch {
	case v >= 8:
		return successStyle
	case v >= 5:
		return warningStyle
	default:
		return errorStyle
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the report as JSON")
}
