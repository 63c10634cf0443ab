package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all devicepilot configuration.
type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini"`
	Device     DeviceConfig     `yaml:"device"`
	Automation AutomationConfig `yaml:"automation"`
	Chat       ChatConfig       `yaml:"chat"`
	Log        LogConfig        `yaml:"log"`
}

// GeminiConfig configures the remote completion endpoint used by both the
// intent classifier and the chat client.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// DeviceConfig selects the device to drive.
type DeviceConfig struct {
	ADBPath string `yaml:"adb_path"`
	Serial  string `yaml:"serial"`
}

// AutomationConfig tunes UI automation delays, in milliseconds.
type AutomationConfig struct {
	SettleMs     int               `yaml:"settle_ms"`
	LaunchMs     int               `yaml:"launch_ms"`
	TransitionMs int               `yaml:"transition_ms"`
	TypingMs     int               `yaml:"typing_ms"`
	CountryCode  string            `yaml:"country_code"`
	Aliases      map[string]string `yaml:"aliases"` // extra app name -> package
}

// ChatConfig configures chat persistence.
type ChatConfig struct {
	DBPath   string `yaml:"db_path"`
	Category string `yaml:"category"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-2.0-flash",
			Timeout: "30s",
		},
		Automation: AutomationConfig{
			SettleMs:     300,
			LaunchMs:     2000,
			TransitionMs: 1500,
			TypingMs:     500,
			CountryCode:  "91",
		},
		Chat: ChatConfig{
			DBPath:   filepath.Join(DefaultDir(), "chats.db"),
			Category: "general",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDir returns ~/.config/devicepilot.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".devicepilot"
	}
	return filepath.Join(dir, "devicepilot")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads configuration from path, then .env in the working directory,
// then the environment. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("DEVICEPILOT_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("DEVICEPILOT_SERIAL"); v != "" {
		c.Device.Serial = v
	} else if v := os.Getenv("ANDROID_SERIAL"); v != "" {
		c.Device.Serial = v
	}
	if v := os.Getenv("ADB_PATH"); v != "" {
		c.Device.ADBPath = v
	}
	if v := os.Getenv("DEVICEPILOT_DB"); v != "" {
		c.Chat.DBPath = v
	}
	if v := os.Getenv("DEVICEPILOT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// GeminiTimeout parses the configured timeout, defaulting to 30s.
func (c *Config) GeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	a := c.Automation
	if a.SettleMs < 0 || a.LaunchMs < 0 || a.TransitionMs < 0 || a.TypingMs < 0 {
		return fmt.Errorf("automation delays must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q (use debug, info, warn, or error)", c.Log.Level)
	}
	if c.Gemini.Timeout != "" {
		if _, err := time.ParseDuration(c.Gemini.Timeout); err != nil {
			return fmt.Errorf("invalid gemini timeout %q: %w", c.Gemini.Timeout, err)
		}
	}
	return nil
}
