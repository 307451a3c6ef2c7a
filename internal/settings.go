package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted per-user configuration
type Settings struct {
	APIKey    string    `yaml:"api_key,omitempty"`
	Model     string    `yaml:"model,omitempty"`
	StoreDir  string    `yaml:"store_dir,omitempty"`
	MaxRounds int       `yaml:"max_rounds,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// SettingsManager reads and writes the settings file
type SettingsManager struct {
	dir string
}

// NewSettingsManager creates a settings manager rooted at dir
func NewSettingsManager(dir string) *SettingsManager {
	return &SettingsManager{dir: dir}
}

// DefaultSettingsDir returns ~/.storyline
func DefaultSettingsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".storyline"), nil
}

// EnsureDir ensures the settings directory exists
func (sm *SettingsManager) EnsureDir() error {
	return os.MkdirAll(sm.dir, 0700)
}

// GetSettingsPath returns the path to settings.yaml
func (sm *SettingsManager) GetSettingsPath() string {
	return filepath.Join(sm.dir, "settings.yaml")
}

// Load reads the settings file. A missing file yields empty settings.
func (sm *SettingsManager) Load() (*Settings, error) {
	path := sm.GetSettingsPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, &StorageError{Path: path, Op: "read", Err: err}
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, &ParseError{Source: "settings", Key: path, Err: err}
	}
	return &settings, nil
}

// Save writes the settings file. The file holds a credential, so it is
// created user-readable only.
func (sm *SettingsManager) Save(settings *Settings) error {
	if err := sm.EnsureDir(); err != nil {
		return &StorageError{Path: sm.dir, Op: "mkdir", Err: err}
	}

	settings.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	path := sm.GetSettingsPath()
	if err := os.WriteFile(path, data, 0600); err != nil {
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Update loads the settings, applies fn and saves the result
func (sm *SettingsManager) Update(fn func(*Settings)) error {
	settings, err := sm.Load()
	if err != nil {
		return err
	}
	fn(settings)
	return sm.Save(settings)
}
