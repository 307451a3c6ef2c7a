package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/ui"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change persisted settings",
	Long: `Show or change the settings stored in ~/.storyline/settings.yaml.

Environment variables (ANTHROPIC_API_KEY, STORYLINE_MODEL, STORYLINE_STORE)
and command line flags take precedence over these settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sm, err := settingsManager()
		if err != nil {
			return err
		}

		source := cfg.KeySource
		if source == "" {
			source = "none"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("⚙ Configuration"))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %-14s %s %s\n", "API key", internal.MaskKey(cfg.APIKey), dateStyle.Render("("+source+")"))
		fmt.Fprintf(out, "  %-14s %s\n", "Model", cfg.Model)
		fmt.Fprintf(out, "  %-14s %s\n", "API base URL", cfg.BaseURL)
		fmt.Fprintf(out, "  %-14s %s\n", "Store", cfg.StoreDir)
		fmt.Fprintf(out, "  %-14s %d\n", "Max rounds", cfg.MaxRounds)
		fmt.Fprintf(out, "  %-14s %d\n", "Max tokens", cfg.MaxTokens)
		fmt.Fprintf(out, "  %-14s %s\n", "Timeout", cfg.HTTPTimeout)
		fmt.Fprintf(out, "  %-14s %s\n", "Settings file", sm.GetSettingsPath())
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Store the Anthropic API key",
	Long:  `Store the Anthropic API key in the settings file. Without an argument the key is read from the terminal.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			term := ui.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			var err error
			key, err = term.AskText(cmd.Context(), "Anthropic API key:")
			if err != nil {
				return err
			}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return &internal.ConfigError{Key: "api_key", Err: fmt.Errorf("must not be empty")}
		}

		if err := updateSettings(func(s *internal.Settings) { s.APIKey = key }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "API key saved (%s)\n", internal.MaskKey(key))
		return nil
	},
}

var configSetModelCmd = &cobra.Command{
	Use:   "set-model <model>",
	Short: "Set the default model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := strings.TrimSpace(args[0])
		if model == "" {
			return &internal.ConfigError{Key: "model", Err: fmt.Errorf("must not be empty")}
		}
		if err := updateSettings(func(s *internal.Settings) { s.Model = model }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model set to %s\n", model)
		return nil
	},
}

var configSetStoreCmd = &cobra.Command{
	Use:   "set-store <dir>",
	Short: "Set the default story store directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := strings.TrimSpace(args[0])
		if dir == "" {
			return &internal.ConfigError{Key: "store_dir", Err: fmt.Errorf("must not be empty")}
		}
		if err := updateSettings(func(s *internal.Settings) { s.StoreDir = dir }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store set to %s\n", dir)
		return nil
	},
}

func updateSettings(fn func(*internal.Settings)) error {
	sm, err := settingsManager()
	if err != nil {
		return err
	}
	if err := sm.Update(fn); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	internal.LogDebug("Saved settings to %s", sm.GetSettingsPath())
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetKeyCmd, configSetModelCmd, configSetStoreCmd)
}
