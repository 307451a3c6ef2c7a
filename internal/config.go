package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultStoreDir  = "stories"
	DefaultMaxRounds = 25
	DefaultMaxTokens = 4096
)

// Config is the resolved runtime configuration
type Config struct {
	APIKey      string        `env:"ANTHROPIC_API_KEY"`
	Model       string        `env:"STORYLINE_MODEL"`
	BaseURL     string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com"`
	StoreDir    string        `env:"STORYLINE_STORE"`
	MaxRounds   int           `env:"STORYLINE_MAX_ROUNDS"`
	MaxTokens   int           `env:"STORYLINE_MAX_TOKENS" envDefault:"4096"`
	HTTPTimeout time.Duration `env:"STORYLINE_HTTP_TIMEOUT" envDefault:"5m"`

	// KeySource records where APIKey came from: "env", "settings" or "".
	KeySource string `env:"-"`
}

// LoadConfig resolves configuration from .env, the process environment and
// the persisted settings, in that order of precedence.
func LoadConfig(settings *Settings) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		LogWarn("Failed to load .env: %v", err)
	}
	return loadConfig(settings, nil)
}

func loadConfig(settings *Settings, environ map[string]string) (*Config, error) {
	var cfg Config
	var err error
	if environ == nil {
		err = env.Parse(&cfg)
	} else {
		err = env.ParseWithOptions(&cfg, env.Options{Environment: environ})
	}
	if err != nil {
		return nil, &ConfigError{Key: "environment", Err: err}
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey != "" {
		cfg.KeySource = "env"
	}

	if settings != nil {
		if cfg.APIKey == "" && strings.TrimSpace(settings.APIKey) != "" {
			cfg.APIKey = strings.TrimSpace(settings.APIKey)
			cfg.KeySource = "settings"
		}
		if cfg.Model == "" {
			cfg.Model = settings.Model
		}
		if cfg.StoreDir == "" {
			cfg.StoreDir = settings.StoreDir
		}
		if cfg.MaxRounds == 0 {
			cfg.MaxRounds = settings.MaxRounds
		}
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = DefaultStoreDir
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	if cfg.MaxRounds < 0 {
		return nil, &ConfigError{Key: "max_rounds", Err: fmt.Errorf("must be positive, got %d", cfg.MaxRounds)}
	}
	return &cfg, nil
}

// MaskKey hides all but the edges of a credential for display
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// IsCIEnvironment reports whether the process runs under a CI system
func IsCIEnvironment() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
