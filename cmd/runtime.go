package cmd

import (
	"fmt"

	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/store"
)

// settingsManager returns the manager for ~/.storyline
func settingsManager() (*internal.SettingsManager, error) {
	dir, err := internal.DefaultSettingsDir()
	if err != nil {
		return nil, err
	}
	return internal.NewSettingsManager(dir), nil
}

// loadConfig resolves the configuration and applies the global flags on top.
func loadConfig() (*internal.Config, error) {
	sm, err := settingsManager()
	if err != nil {
		return nil, err
	}
	settings, err := sm.Load()
	if err != nil {
		internal.LogWarn("Failed to load settings: %v", err)
		settings = nil
	}

	cfg, err := internal.LoadConfig(settings)
	if err != nil {
		return nil, err
	}
	if storeDir != "" {
		cfg.StoreDir = storeDir
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	return cfg, nil
}

// openStore resolves the configuration and opens the story store.
func openStore() (*store.Store, *internal.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.StoreDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	internal.LogDebug("Opened store at %s", cfg.StoreDir)
	return st, cfg, nil
}
