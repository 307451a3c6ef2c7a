package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/store"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that storyline is configured and can access the store",
	Long: `Check the health of storyline by verifying:
  • Configuration and API key resolution
  • Store directory access
  • Search index build
  • Feature and story counts

This command is useful for debugging setup issues, especially in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Storyline Health Check"))
		fmt.Fprintln(out)

		// Step 1: Resolve configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to resolve configuration:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration resolved"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Model: %s\n", cfg.Model)
			fmt.Fprintf(out, "   API base URL: %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "   Max rounds: %d\n", cfg.MaxRounds)
		}
		fmt.Fprintln(out)

		// Step 2: API key
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking API key..."))
		hasKey := cfg.APIKey != ""
		if hasKey {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ API key found (%s)", cfg.KeySource)))
			if healthcheckVerbose {
				fmt.Fprintf(out, "   Key: %s\n", internal.MaskKey(cfg.APIKey))
			}
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No API key configured"))
			fmt.Fprintln(out, "   Set ANTHROPIC_API_KEY or run 'storyline config set-key'")
		}
		fmt.Fprintln(out)

		// Step 3: Store directory
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking store directory..."))
		if err := checkWritable(cfg.StoreDir); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Store directory is not writable:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Store directory is writable"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Directory: %s\n", cfg.StoreDir)
		}
		fmt.Fprintln(out)

		// Step 4: Open the store and build the index
		fmt.Fprintln(out, infoStyle.Render("Step 4: Building search index..."))
		st, err := store.Open(cfg.StoreDir)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open store"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Error details:")
			fmt.Fprintln(out, err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer st.Close()
		storyCount, err := st.StoryCount()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to query search index:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Indexed %d stor%s", storyCount, plural(storyCount, "y", "ies"))))
		fmt.Fprintln(out)

		// Step 5: Features
		fmt.Fprintln(out, infoStyle.Render("Step 5: Loading features..."))
		summaries, err := st.FeatureSummaries(cmd.Context())
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load features:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d feature(s)", len(summaries))))
		if healthcheckVerbose {
			for i, s := range summaries {
				if i < 5 { // Show first 5
					fmt.Fprintf(out, "   [%d] %s (%d stories)\n", i+1, s.Feature.ID, s.StoryCount)
				}
			}
			if len(summaries) > 5 {
				fmt.Fprintf(out, "   ... and %d more\n", len(summaries)-5)
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)

		if hasKey {
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			fmt.Fprintln(out, successStyle.Render("   • Store: Available"))
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("   • Stories: %d, features: %d", storyCount, len(summaries))))
			return nil
		}
		fmt.Fprintln(out, warningStyle.Render("⚠️  Store available but no API key configured"))
		fmt.Fprintln(out, "   • Read commands (list, show, export) work")
		fmt.Fprintln(out, "   • Chat sessions need an API key")
		if internal.IsCIEnvironment() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Note: CI/CD environment detected.")
		}
		return nil
	},
}

// checkWritable creates dir if needed and writes and removes a probe file in it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
}
