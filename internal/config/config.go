package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codefionn/rechenwerk/internal/engine"
	"github.com/codefionn/rechenwerk/internal/keypad"
)

// Config represents application configuration
type Config struct {
	MaxDisplayWidth int    `json:"max_display_width"` // byte budget for formatted results
	InputDigitLimit int    `json:"input_digit_limit"` // digits the entry line accepts
	StrictTokens    bool   `json:"strict_tokens"`     // fail on unrecognized characters instead of skipping
	CacheTTL        int    `json:"cache_ttl_seconds"`
	MaxCacheEntries int    `json:"max_cache_entries"`
	HistoryLimit    int    `json:"history_limit"` // rows returned by history queries
	DisableHistory  bool   `json:"disable_history"`
	LogLevel        string `json:"log_level"` // debug, info, warn, error, none
	Port            int    `json:"port"`      // HTTP API port for serve mode

	LogPath     string `json:"-"`
	HistoryPath string `json:"-"`
	PidPath     string `json:"-"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "linux":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "rechenwerk")
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "rechenwerk")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "rechenwerk")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "rechenwerk")
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, "rechenwerk")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "rechenwerk")
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, "rechenwerk")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", "rechenwerk")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "rechenwerk")
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()

	return &Config{
		MaxDisplayWidth: engine.DefaultDisplayWidth,
		InputDigitLimit: keypad.DefaultDigitLimit,
		StrictTokens:    false,
		CacheTTL:        300,
		MaxCacheEntries: 100,
		HistoryLimit:    50,
		DisableHistory:  false,
		LogLevel:        "info",
		Port:            8418,
		LogPath:         filepath.Join(stateDir, "rechenwerk.log"),
		HistoryPath:     filepath.Join(stateDir, "history.db"),
		PidPath:         filepath.Join(stateDir, "rechenwerk.pid"),
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return config, nil
		}
		return nil, err
	}

	// Unmarshal into default config (overrides only provided fields)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// Ensure critical fields have defaults if still empty
	stateDir := defaultStateDir()
	if config.MaxDisplayWidth < 1 {
		config.MaxDisplayWidth = engine.DefaultDisplayWidth
	}
	if config.InputDigitLimit < 1 {
		config.InputDigitLimit = keypad.DefaultDigitLimit
	}
	if config.HistoryLimit < 1 {
		config.HistoryLimit = 50
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Port < 1 {
		config.Port = 8418
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(stateDir, "rechenwerk.log")
	}
	if config.HistoryPath == "" {
		config.HistoryPath = filepath.Join(stateDir, "history.db")
	}
	if config.PidPath == "" {
		config.PidPath = filepath.Join(stateDir, "rechenwerk.pid")
	}

	return config, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// EngineConfig maps the configuration onto the expression engine's settings.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		MaxDisplayWidth: c.MaxDisplayWidth,
		StrictTokens:    c.StrictTokens,
	}
}
