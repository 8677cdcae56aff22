// Package config reads ambient configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-backed knobs. Command-line flags override
// these values in main.
type Config struct {
	// ModelsDir points at the synthesis model assets. Empty means the
	// "models" directory beside the executable.
	ModelsDir string `envconfig:"MODELS_DIR" default:""`

	// EngineBin overrides the pocket-tts binary location. Empty means
	// beside the executable, then $PATH.
	EngineBin string `envconfig:"ENGINE_BIN" default:""`

	// PollInterval is the clipboard poll cadence.
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"500ms"`

	// FrameInterval is the tray icon animation cadence while speaking.
	FrameInterval time.Duration `envconfig:"FRAME_INTERVAL" default:"120ms"`

	// NoUpdateCheck disables the background release check.
	NoUpdateCheck bool `envconfig:"NO_UPDATE_CHECK" default:"false"`
}

// Load reads configuration from the environment, first merging a .env
// file if one exists. Variables are prefixed POCKETTRAY_.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("pockettray", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.FrameInterval <= 0 {
		return nil, fmt.Errorf("frame interval must be positive, got %s", cfg.FrameInterval)
	}
	return &cfg, nil
}
