package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "ping", cfg.PingMessage)
	assert.Equal(t, "generated_images", cfg.GeneratedDir)
	assert.Equal(t, "python3", cfg.PythonBin)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Providers.GeminiEndpoint)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FASHBOT_PORT", "9090")
	t.Setenv("PING_MESSAGE", "pong")
	t.Setenv("GEMINI_API_KEY", "abc")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "pong", cfg.PingMessage)
	assert.Equal(t, "abc", cfg.Providers.GeminiAPIKey)
}

func TestEnvKey_VitePrefixFallback(t *testing.T) {
	t.Setenv("VITE_OPENAI_API_KEY", "from-vite")
	assert.Equal(t, "from-vite", envKey("OPENAI_API_KEY"))

	t.Setenv("OPENAI_API_KEY", "direct")
	assert.Equal(t, "direct", envKey("OPENAI_API_KEY"))
}

func TestLoad_UnsplashAppIDFallback(t *testing.T) {
	t.Setenv("UNSPLASH_APP_ID", "legacy-id")
	cfg := Load()
	assert.Equal(t, "legacy-id", cfg.Providers.UnsplashKey)

	t.Setenv("UNSPLASH_ACCESS_KEY", "primary")
	cfg = Load()
	assert.Equal(t, "primary", cfg.Providers.UnsplashKey)
}

func TestEnvInt_IgnoresGarbage(t *testing.T) {
	t.Setenv("FASHBOT_PORT", "not-a-number")
	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
}
