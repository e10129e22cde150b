// Package file provides the TOML configuration store for marginalia.
// Configuration lives in ~/.marginalia/config.toml unless overridden.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Config holds user-level defaults for the CLI and TUI.
type Config struct {
	// Author is the name attached to new comments and replies.
	Author string `toml:"author"`

	// DefaultStrategy is the anchor strategy used when --strategy is
	// not given: offset, nodePath or contentSpan.
	DefaultStrategy string `toml:"default_strategy"`

	// DataDir is the directory holding the SQLite database.
	DataDir string `toml:"data_dir"`

	// Backend selects the comment storage backend: sqlite or memory.
	Backend string `toml:"backend"`
}

// defaults returns the configuration used when no file exists yet.
func defaults() Config {
	return Config{
		Author:          "anonymous",
		DefaultStrategy: "offset",
		Backend:         "sqlite",
	}
}

// ConfigStore is a file-based TOML configuration store.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates a config store rooted at configDir.
// If configDir is empty, defaults to ~/.marginalia.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".marginalia")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		config:   defaults(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Config returns the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update applies a change to the configuration and persists immediately.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.config)
	return s.save()
}

// Load reads configuration from the TOML file. A missing file keeps the
// defaults.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.config = defaults()
			return nil
		}
		return err
	}

	cfg := defaults()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.config = cfg
	return nil
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.config)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
