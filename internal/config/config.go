package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the data directory.
const FileName = "config.yaml"

// ErrUnknownKey is returned by Set and Value for keys the config does not have.
var ErrUnknownKey = errors.New("unknown config key")

// Config represents the murmur configuration
type Config struct {
	// Model server settings
	Provider string `yaml:"provider"`
	Host     string `yaml:"host"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`

	// Conversation settings
	SystemPrompt  string `yaml:"system_prompt"`
	HistoryWindow int    `yaml:"history_window"`
	HistoryLimit  int    `yaml:"history_limit"`

	// Web search settings
	SearchEndpoint string `yaml:"search_endpoint"`
	SearchResults  int    `yaml:"search_results"`

	// UI preferences
	Theme   string `yaml:"theme"`
	Persist bool   `yaml:"persist"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Provider:      "ollama",
		Host:          "http://localhost:11434",
		Model:         "granite3-moe",
		HistoryWindow: 5,
		HistoryLimit:  10,
		SearchResults: 5,
		Theme:         "loco",
		Persist:       true,
	}
}

// Manager handles configuration loading and saving. raw is what the file
// holds and is what Save writes; config is raw with $VAR references
// expanded, so secrets taken from the environment never reach disk.
type Manager struct {
	dataDir    string
	configPath string
	raw        *Config
	config     *Config
}

// NewManager creates a configuration manager rooted at dataDir.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		configPath: filepath.Join(dataDir, FileName),
		raw:        DefaultConfig(),
		config:     DefaultConfig(),
	}
}

// DefaultDataDir is where murmur keeps its files when --data-dir is unset.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "murmur")
	}
	return ".murmur"
}

// Path returns the config file location.
func (m *Manager) Path() string {
	return m.configPath
}

// DataDir returns the directory holding config, logs and transcripts.
func (m *Manager) DataDir() string {
	return m.dataDir
}

// Load reads the configuration from disk, creating defaults if needed.
// A .env file in the working directory is loaded into the environment
// first so config values can reference it.
func (m *Manager) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return m.Save()
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing keys keep their defaults.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}

	m.raw = config
	m.config = expanded(config)
	return nil
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := yaml.Marshal(m.raw)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// Set updates a configuration value and saves
func (m *Manager) Set(key, value string) error {
	c := *m.raw
	switch key {
	case "provider":
		c.Provider = value
	case "host":
		c.Host = value
	case "model":
		c.Model = value
	case "api_key":
		c.APIKey = value
	case "system_prompt":
		c.SystemPrompt = value
	case "history_window", "history_limit", "search_results":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
		}
		switch key {
		case "history_window":
			c.HistoryWindow = n
		case "history_limit":
			c.HistoryLimit = n
		default:
			c.SearchResults = n
		}
	case "search_endpoint":
		c.SearchEndpoint = value
	case "theme":
		c.Theme = value
	case "persist":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("persist must be true or false, got %q", value)
		}
		c.Persist = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	m.raw = &c
	m.config = expanded(&c)
	return m.Save()
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := []string{
		"provider", "host", "model", "api_key", "system_prompt",
		"history_window", "history_limit", "search_endpoint", "search_results",
		"theme", "persist",
	}
	sort.Strings(keys)
	return keys
}

// Value returns the string form of key. api_key is masked.
func (m *Manager) Value(key string) (string, error) {
	c := m.config
	switch key {
	case "provider":
		return c.Provider, nil
	case "host":
		return c.Host, nil
	case "model":
		return c.Model, nil
	case "api_key":
		if c.APIKey == "" {
			return "", nil
		}
		return "********", nil
	case "system_prompt":
		return c.SystemPrompt, nil
	case "history_window":
		return strconv.Itoa(c.HistoryWindow), nil
	case "history_limit":
		return strconv.Itoa(c.HistoryLimit), nil
	case "search_endpoint":
		return c.SearchEndpoint, nil
	case "search_results":
		return strconv.Itoa(c.SearchResults), nil
	case "theme":
		return c.Theme, nil
	case "persist":
		return strconv.FormatBool(c.Persist), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expanded returns a copy of raw with environment variables expanded.
func expanded(raw *Config) *Config {
	c := *raw
	c.Provider = expandString(c.Provider)
	c.Host = expandString(c.Host)
	c.Model = expandString(c.Model)
	c.APIKey = expandString(c.APIKey)
	c.SearchEndpoint = expandString(c.SearchEndpoint)
	c.Theme = expandString(c.Theme)
	return &c
}

// expandString expands $VAR and ${VAR}. Unset variables are left as written.
func expandString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}
