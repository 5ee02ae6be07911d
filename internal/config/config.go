// Package config handles runtime configuration. Settings come from an
// optional YAML file with environment overrides layered on top, and every
// value is normalized to a safe default before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserID namespaces records when no user is configured.
	DefaultUserID = "default-user"
	// DefaultMaxAnalysts bounds the interview panel size.
	DefaultMaxAnalysts = 2
	// DefaultMaxInterviewTurns bounds question/answer pairs per session.
	DefaultMaxInterviewTurns = 2
	// DefaultDataDir holds the record database and turn checkpoints.
	DefaultDataDir = ".seekwell"
)

// Config holds the runtime configuration for the agent.
type Config struct {
	// UserID namespaces all persisted records.
	UserID string `yaml:"user_id"`
	// MaxAnalysts is the exact number of interview personas generated per run.
	MaxAnalysts int `yaml:"max_analysts"`
	// MaxInterviewTurns is the hard upper bound of question/answer pairs in
	// one session.
	MaxInterviewTurns int `yaml:"max_interview_turns"`
	// Model optionally overrides the inference model id.
	Model string `yaml:"model"`
	// DataDir is where the store database and checkpoints live.
	DataDir string `yaml:"data_dir"`
}

// Load reads the YAML config at path (missing file is fine), applies
// environment overrides, and normalizes the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No project file; environment and defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("SEEKWELL_USER_ID")); v != "" {
		c.UserID = v
	}
	if v := strings.TrimSpace(os.Getenv("SEEKWELL_MAX_ANALYSTS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.MaxAnalysts = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("SEEKWELL_MAX_INTERVIEW_TURNS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.MaxInterviewTurns = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("SEEKWELL_MODEL")); v != "" {
		c.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("SEEKWELL_DATA_DIR")); v != "" {
		c.DataDir = v
	}
}

func (c *Config) normalize() {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
	if c.MaxAnalysts <= 0 {
		c.MaxAnalysts = DefaultMaxAnalysts
	}
	if c.MaxInterviewTurns <= 0 {
		c.MaxInterviewTurns = DefaultMaxInterviewTurns
	}
	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
}

// StorePath is the SQLite database location inside the data dir.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "records.db")
}

// CheckpointPath is the turn-state checkpoint location inside the data dir.
func (c Config) CheckpointPath() string {
	return filepath.Join(c.DataDir, "checkpoint.json")
}

// EnsureDataDir creates the data directory if it does not exist yet.
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure data dir: %w", err)
	}
	return nil
}
