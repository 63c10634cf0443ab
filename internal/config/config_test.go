package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DEVICEPILOT_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 300, cfg.Automation.SettleMs)
	assert.Equal(t, 2000, cfg.Automation.LaunchMs)
	assert.Equal(t, "91", cfg.Automation.CountryCode)
	assert.Equal(t, "general", cfg.Chat.Category)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DEVICEPILOT_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
gemini:
  model: gemini-1.5-pro
automation:
  settle_ms: 150
  aliases:
    signal: org.thoughtcrime.securesms
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 150, cfg.Automation.SettleMs)
	assert.Equal(t, 1500, cfg.Automation.TransitionMs, "unset keys keep defaults")
	assert.Equal(t, "org.thoughtcrime.securesms", cfg.Automation.Aliases["signal"])
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GEMINI_API_KEY sets api key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	})

	t.Run("DEVICEPILOT_SERIAL beats ANDROID_SERIAL", func(t *testing.T) {
		t.Setenv("DEVICEPILOT_SERIAL", "pilot")
		t.Setenv("ANDROID_SERIAL", "android")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "pilot", cfg.Device.Serial)
	})

	t.Run("ANDROID_SERIAL used as fallback", func(t *testing.T) {
		t.Setenv("DEVICEPILOT_SERIAL", "")
		t.Setenv("ANDROID_SERIAL", "android")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "android", cfg.Device.Serial)
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Automation.SettleMs = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Gemini.Timeout = "soon"
	assert.Error(t, cfg.Validate())
}

func TestGeminiTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout())

	cfg.Gemini.Timeout = "5s"
	assert.Equal(t, 5*time.Second, cfg.GeminiTimeout())

	cfg.Gemini.Timeout = ""
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout())
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DEVICEPILOT_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Device.Serial = "R58M123"
	require.NoError(t, cfg.Save(path))

	t.Setenv("DEVICEPILOT_SERIAL", "")
	t.Setenv("ANDROID_SERIAL", "")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "R58M123", loaded.Device.Serial)
}
