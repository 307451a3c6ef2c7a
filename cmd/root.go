package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/storyline/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storeDir    string
	modelName   string
	contextFile string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "storyline",
	Short: "Draft and refine user stories with an AI assistant",
	Long: `An interactive assistant for writing product user stories.

Describe what you want to build and the assistant asks clarifying questions,
presents drafts for approval and saves stories and features as markdown files
with YAML front matter.

Features:
  • Conversational story drafting with multiple-choice clarifications
  • Features and backlog kept as plain markdown documents
  • INVEST quality checks
  • Export in multiple formats (Markdown, JSON, YAML, JSONL)

Quick Start:
  storyline config set-key               # Store your Anthropic API key
  storyline                              # Start a chat session
  storyline list                         # List stored stories
  storyline export --format md           # Export stories as Markdown

Running storyline without a command starts a chat session.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "Story store directory (default from settings or ./stories)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "Model id to chat with")
	rootCmd.PersistentFlags().StringVar(&contextFile, "context-file", "", "File with extra project context for the chat session")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
